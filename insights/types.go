package insights

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// TimeRange bounds one insights query. Both ends are inclusive.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler, logger logrus.Entry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}
