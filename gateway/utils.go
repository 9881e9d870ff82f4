package gateway

import (
	"net/http"
	"net/url"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/bidcore"
)

type SelectIncrementReqParams struct {
	RequestedMinor string
	UserID         string
	BidderID       string
	SaleSlug       string
	ArtworkSlug    string
}

func loggingMiddleware(next http.Handler, logger logrus.Entry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func SanityBidSubmission(submission bidcore.BidSubmission) error {
	if submission.SaleID == "" {
		return errors.New("Sale ID Missing")
	}

	if submission.UserID == "" {
		return errors.New("User ID Missing")
	}

	if submission.ArtworkID == "" || submission.ArtworkSlug == "" {
		return errors.New("Artwork Missing")
	}

	if submission.MaxBidAmountCents <= 0 {
		return errors.New("Max Bid Amount Wrong")
	}

	return nil
}

func selectIncrementParameters(query url.Values) (SelectIncrementReqParams, error) {
	requested := query.Get("amount")
	if requested == "" {
		return SelectIncrementReqParams{}, errors.New("Requested Amount Missing")
	}

	return SelectIncrementReqParams{
		RequestedMinor: requested,
		UserID:         query.Get("user_id"),
		BidderID:       query.Get("bidder_id"),
		SaleSlug:       query.Get("sale_slug"),
		ArtworkSlug:    query.Get("artwork_slug"),
	}, nil
}
