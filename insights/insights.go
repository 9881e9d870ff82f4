package insights

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/database"
)

// InsightsServer serves auction activity to internal dashboards. It reads
// straight from the gateway's database and never touches the marketplace
// backend.
type InsightsServer struct {
	server *http.Server
	url    string
	db     database.DatabaseInterface
	log    *logrus.Entry
}

func NewInsightsServer(URL string, DB *database.DatabaseInterface) *InsightsServer {
	return &InsightsServer{
		url: URL,
		db:  *DB,
		log: logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
			"package": "Insights API",
			"URL":     URL,
		})}
}

func (insights *InsightsServer) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/insights/bidevents", insights.handleBidEventsInsights).Methods(http.MethodPost)
	r.HandleFunc("/insights/submissions", insights.handleBidSubmissionsInsights).Methods(http.MethodPost)
	r.HandleFunc("/insights/registrations", insights.handleBidderRegistrationsInsights).Methods(http.MethodPost)

	return loggingMiddleware(r, *insights.log)
}

func (insights *InsightsServer) StartServer() (err error) {
	insights.log.Info("Insights Server")
	insights.server = &http.Server{
		Addr:    insights.url,
		Handler: insights.Routes(),
	}

	err = insights.server.ListenAndServe()
	return err
}

func (insights *InsightsServer) RespondError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := HTTPError{Code: code, Message: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		insights.log.WithField("response", resp).WithError(err).Error("Couldn't write error response")
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func (insights *InsightsServer) RespondOK(w http.ResponseWriter, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		insights.log.WithField("response", response).WithError(err).Error("Couldn't write OK response")
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func (insights *InsightsServer) handleBidEventsInsights(w http.ResponseWriter, req *http.Request) {

	insights.log.WithFields(logrus.Fields{
		"method": "Insights Bid Events",
	}).Info("Insights API")

	timeRange := new(TimeRange)
	if err := json.NewDecoder(req.Body).Decode(&timeRange); err != nil {
		insights.log.WithError(err).Warn("could not decode payload")
		insights.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bidEvents, err := insights.db.GetBidEventsInsights(req.Context(), timeRange.From, timeRange.To)
	if err != nil {
		insights.log.WithError(err).Warn("Failed Bid Events Insights")
		insights.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	insights.RespondOK(w, &bidEvents)

}

func (insights *InsightsServer) handleBidSubmissionsInsights(w http.ResponseWriter, req *http.Request) {
	insights.log.WithFields(logrus.Fields{
		"method": "Insights Bid Submissions",
	}).Info("Insights API")

	timeRange := new(TimeRange)
	if err := json.NewDecoder(req.Body).Decode(&timeRange); err != nil {
		insights.log.WithError(err).Warn("could not decode payload")
		insights.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	submissions, err := insights.db.GetBidSubmissionsInsights(req.Context(), timeRange.From, timeRange.To)
	if err != nil {
		insights.log.WithError(err).Warn("Failed Bid Submissions Insights")
		insights.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	insights.RespondOK(w, &submissions)
}

func (insights *InsightsServer) handleBidderRegistrationsInsights(w http.ResponseWriter, req *http.Request) {
	insights.log.WithFields(logrus.Fields{
		"method": "Insights Bidder Registrations",
	}).Info("Insights API")

	timeRange := new(TimeRange)
	if err := json.NewDecoder(req.Body).Decode(&timeRange); err != nil {
		insights.log.WithError(err).Warn("could not decode payload")
		insights.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	registrations, err := insights.db.GetBidderRegistrationsInsights(req.Context(), timeRange.From, timeRange.To)
	if err != nil {
		insights.log.WithError(err).Warn("Failed Bidder Registrations Insights")
		insights.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	insights.RespondOK(w, &registrations)

}
