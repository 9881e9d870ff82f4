package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/analytics"
	"github.com/gallerynet/paddle/bidcore"
	"github.com/gallerynet/paddle/bidflow"
	"github.com/gallerynet/paddle/database"
	"github.com/gallerynet/paddle/insights"
	"github.com/gallerynet/paddle/lots"
	"github.com/gallerynet/paddle/marketplace"
	"github.com/gallerynet/paddle/payments"
	"github.com/gallerynet/paddle/redisStore"
	"github.com/gallerynet/paddle/saleevents"
	relayUtils "github.com/gallerynet/paddle/utils"
)

// MsgSaleClosed is the preflight rejection for a sale the event stream has
// already reported closed. It matches the backend's own mutation message so
// the storefront renders one string either way.
var MsgSaleClosed = "Sale Closed to Bids."

func NewGatewayAPI(params *GatewayParams, log logrus.Entry) (gateway *Gateway, err error) {
	dataBase, err := database.NewDatabase(params.DbURL, params.DatabaseParams, params.DbDriver)
	if err != nil {
		log.WithError(err).Fatal("Failed Database")
		return nil, err
	}

	marketplaceClient := marketplace.NewMarketplaceClient(params.MarketplaceURL, params.MarketplaceAPIKey)

	tokenizer := payments.NewCardTokenizer(params.TokenizerURL, params.TokenizerAPIKey)

	tracker, err := analytics.NewMQTTTracker(params.TrackerParams)
	if err != nil {
		log.WithError(err).Fatal("Failed Tracker")
		return nil, err
	}

	saleEvents, err := saleevents.NewMultiSaleClient(params.SaleEventUrls)
	if err != nil {
		log.WithError(err).Fatal("Failed Sale Events Client")
		return nil, err
	}
	saleEvents.Start(context.Background())

	insightsServer := insights.NewInsightsServer(params.InsightsURL, dataBase)
	go insightsServer.StartServer()

	redisInterface, err := redisStore.NewRedisInterface(params.RedisURI)
	if err != nil {
		log.WithError(err).Fatal("Failed Redis Interface")
		return nil, err
	}

	lotBoard := lots.NewLotBoard(*redisInterface, params.LotCacheTimeout)

	saleUtils := relayUtils.NewSaleUtils(dataBase, marketplaceClient, lotBoard)
	go saleUtils.StartUtils()

	events := analytics.MultiSink{tracker, analytics.NewRecorderSink(dataBase)}

	resolver := bidflow.NewResolver(bidflow.ResolverParams{
		Marketplace:     marketplaceClient,
		Tokenizer:       tokenizer,
		Events:          events,
		AppURL:          params.AppURL,
		PollInterval:    params.PollInterval,
		MaxPollAttempts: params.MaxPollAttempts,
		OnSnapshot: func(requestedPositionID string, snapshot *bidcore.BidderPositionStatus) {
			if err := lotBoard.SavePositionSnapshot(requestedPositionID, snapshot); err != nil {
				log.WithError(err).Error("failed saving position snapshot in redis")
			}
		},
		OnRegistered: func(userID string, saleID string, bidderID string) {
			registration := database.BidderRegistrationDatabase{
				UserID:   userID,
				SaleID:   saleID,
				BidderID: bidderID,
			}
			if err := dataBase.PutBidderRegistration(context.Background(), registration); err != nil {
				log.WithError(err).Error("saving bidder registration to database failed")
			}
		},
	})

	gatewayAPI := &Gateway{
		db:             dataBase,
		marketplace:    marketplaceClient,
		tokenizer:      tokenizer,
		tracker:        tracker,
		events:         events,
		resolver:       resolver,
		lotBoard:       lotBoard,
		saleEvents:     saleEvents,
		insightsServer: insightsServer,
		saleUtils:      saleUtils,
		URL:            params.URL,
		log:            &log,
	}

	return gatewayAPI, nil
}

func (gateway *Gateway) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/auction", gateway.handleLanding).Methods(http.MethodGet)
	r.HandleFunc("/auction/v1/status", gateway.handleStatus).Methods(http.MethodGet)

	r.HandleFunc("/auction/v1/bids", gateway.handleSubmitBid).Methods(http.MethodPost)

	r.HandleFunc("/auction/v1/positions/{position_id}", gateway.handlePositionStatus).Methods(http.MethodGet)
	r.HandleFunc("/auction/v1/sales/{sale_id}/increments", gateway.handleSaleIncrements).Methods(http.MethodGet)
	r.HandleFunc("/auction/v1/sales/{sale_id}/increments/select", gateway.handleSelectIncrement).Methods(http.MethodGet)

	return loggingMiddleware(r, *gateway.log)
}

func (gateway *Gateway) StartServer(serverParams *GatewayServerParams) (err error) {
	gateway.log.Info("Gateway Server")
	gateway.server = &http.Server{
		Addr:              gateway.URL,
		Handler:           gateway.Routes(),
		ReadTimeout:       serverParams.ReadTimeout,
		ReadHeaderTimeout: serverParams.ReadHeaderTimeout,
		WriteTimeout:      serverParams.WriteTimeout,
		IdleTimeout:       serverParams.IdleTimeout,
	}

	err = gateway.server.ListenAndServe()
	return err
}

func (gateway *Gateway) RespondError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := HTTPError{Code: code, Message: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		gateway.log.WithField("response", resp).WithError(err).Error("Couldn't write error response")
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func (gateway *Gateway) RespondOK(w http.ResponseWriter, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		gateway.log.WithField("response", response).WithError(err).Error("Couldn't write OK response")
		http.Error(w, "", http.StatusInternalServerError)
	}
}

func (gateway *Gateway) handleLanding(w http.ResponseWriter, req *http.Request) {
	gateway.RespondOK(w, "Paddle Auction Gateway")
}

func (gateway *Gateway) handleStatus(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (gateway *Gateway) handleSubmitBid(w http.ResponseWriter, req *http.Request) {
	submission := new(bidcore.BidSubmission)

	if err := json.NewDecoder(req.Body).Decode(&submission); err != nil {
		gateway.log.WithError(err).Warn("Could Not Convert Payload To Bid Submission")
		gateway.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := SanityBidSubmission(*submission); err != nil {
		gateway.log.WithError(err).Error("bid submission sanity checks failed")
		gateway.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var outcome *bidcore.BidOutcome

	if gateway.saleClosed(submission.SaleID) {
		gateway.log.WithFields(logrus.Fields{
			"saleID": submission.SaleID,
		}).Warn("Bid For Closed Sale")
		bidErr := bidcore.MutationError(MsgSaleClosed)
		gateway.events.Post(bidflow.ConfirmBidFailedEvent(submission, bidErr))
		outcome = bidcore.FailureOutcome(bidErr.DisplayMessages, submission.BidderID != "")
	} else {
		outcome = gateway.resolver.Submit(req.Context(), submission)
		if outcome == nil {
			// Poll was cancelled, the caller is gone.
			return
		}
	}

	submissionDB := database.BidSubmissionDatabase{
		ID:                uuid.New().String(),
		ArtworkID:         submission.ArtworkID,
		SaleID:            submission.SaleID,
		UserID:            submission.UserID,
		MaxBidAmountCents: submission.MaxBidAmountCents,
		PositionID:        outcome.PositionID,
		Won:               outcome.Won,
		Messages:          outcome.Messages,
	}

	defer func() {
		err := gateway.db.PutBidSubmission(req.Context(), submissionDB)
		if err != nil {
			gateway.log.WithError(err).WithField("payload", submissionDB).Error("saving bid submission to database failed")
			return
		}
	}()

	gateway.log.WithFields(logrus.Fields{
		"SaleID": submission.SaleID,
		"UserID": submission.UserID,
		"Won":    outcome.Won,
	}).Info("received bid from storefront")

	gateway.RespondOK(w, &outcome)
}

func (gateway *Gateway) handlePositionStatus(w http.ResponseWriter, req *http.Request) {
	reqParams := mux.Vars(req)
	positionID := reqParams["position_id"]

	snapshot, err := gateway.lotBoard.PositionSnapshot(positionID)
	if err == nil {
		gateway.RespondOK(w, &snapshot)
		return
	}

	snapshot, err = gateway.marketplace.BidderPositionStatus(req.Context(), positionID)
	if err != nil {
		gateway.log.WithError(err).Warn("Couldn't Get Bidder Position Status")
		gateway.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err = gateway.lotBoard.SavePositionSnapshot(positionID, snapshot); err != nil {
		gateway.log.WithError(err).Error("failed saving position snapshot in redis")
	}

	gateway.RespondOK(w, &snapshot)
}

func (gateway *Gateway) handleSaleIncrements(w http.ResponseWriter, req *http.Request) {
	reqParams := mux.Vars(req)
	saleID := reqParams["sale_id"]

	increments, err := gateway.saleIncrements(req, saleID)
	if err != nil {
		gateway.log.WithError(err).Warn("Couldn't Get Sale Increments")
		gateway.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	gateway.RespondOK(w, &IncrementsResponse{SaleID: saleID, Increments: increments})
}

func (gateway *Gateway) handleSelectIncrement(w http.ResponseWriter, req *http.Request) {
	reqParams := mux.Vars(req)
	saleID := reqParams["sale_id"]

	selectReq, err := selectIncrementParameters(req.URL.Query())
	if err != nil {
		gateway.log.WithError(err).Error("could not get request params")
		gateway.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	increments, err := gateway.saleIncrements(req, saleID)
	if err != nil {
		gateway.log.WithError(err).Warn("Couldn't Get Sale Increments")
		gateway.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	selected := bidcore.SelectIncrement(selectReq.RequestedMinor, increments)

	gateway.events.Post(bidflow.MaxBidSelectedEvent(&bidcore.BidSubmission{
		ArtworkSlug: selectReq.ArtworkSlug,
		SaleID:      saleID,
		SaleSlug:    selectReq.SaleSlug,
		UserID:      selectReq.UserID,
		BidderID:    selectReq.BidderID,
	}, selected))

	gateway.RespondOK(w, &SelectedIncrementResponse{
		SaleID:              saleID,
		RequestedMinor:      selectReq.RequestedMinor,
		SelectedMaxBidMinor: selected,
	})
}

// saleIncrements resolves a sale's increments from the lot board, falling
// back to the marketplace and refilling the cache on a miss.
func (gateway *Gateway) saleIncrements(req *http.Request, saleID string) ([]string, error) {
	increments, err := gateway.lotBoard.Increments(saleID)
	if err == nil && len(increments) > 0 {
		return increments, nil
	}

	sale, err := gateway.marketplace.GetSale(req.Context(), saleID)
	if err != nil {
		return nil, err
	}

	if err = gateway.lotBoard.SaveIncrements(saleID, sale.BidIncrements); err != nil {
		gateway.log.WithError(err).Error("failed saving sale increments in redis")
	}

	return sale.BidIncrements, nil
}

// saleClosed consults the live event stream first and the lot board cache
// second. An unknown sale is allowed through; the backend still rejects bids
// on sales it considers closed.
func (gateway *Gateway) saleClosed(saleID string) bool {
	if gateway.saleEvents.SaleClosed(saleID) {
		return true
	}

	state, err := gateway.lotBoard.SaleState(saleID)
	if err != nil {
		return false
	}
	return state.Closed
}
