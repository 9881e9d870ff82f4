package bidflow

import (
	"github.com/shopspring/decimal"

	"github.com/gallerynet/paddle/analytics"
	"github.com/gallerynet/paddle/bidcore"
)

// majorUnits converts a minor-unit amount to major units for the products
// payload. 5000000 cents becomes 50000.
func majorUnits(cents int64) float64 {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).InexactFloat64()
}

func baseEvent(actionType string, submission *bidcore.BidSubmission, bidderID string) analytics.Event {
	return analytics.Event{
		ActionType:  actionType,
		ContextPage: analytics.PageAuctionConfirmBid,
		AuctionSlug: submission.SaleSlug,
		ArtworkSlug: submission.ArtworkSlug,
		BidderID:    bidderID,
		SaleID:      submission.SaleID,
		UserID:      submission.UserID,
	}
}

func registrationSubmittedEvent(submission *bidcore.BidSubmission, bidderID string) analytics.Event {
	return baseEvent(analytics.ActionRegistrationSubmitted, submission, bidderID)
}

func confirmBidSubmittedEvent(submission *bidcore.BidSubmission, bidderID string, positionID string) analytics.Event {
	event := baseEvent(analytics.ActionConfirmBidSubmitted, submission, bidderID)
	event.BidderPositionID = positionID
	event.OrderID = bidderID
	event.Products = []analytics.Product{
		{
			ProductID: submission.ArtworkID,
			Quantity:  1,
			Price:     majorUnits(submission.MaxBidAmountCents),
		},
	}
	return event
}

func confirmBidFailedEvent(submission *bidcore.BidSubmission, bidderID string, bidErr *bidcore.BidError) analytics.Event {
	event := baseEvent(analytics.ActionConfirmBidFailed, submission, bidderID)
	event.ErrorMessages = bidErr.EventMessages
	return event
}

// ConfirmBidFailedEvent records a submission rejected before the resolver
// ran, such as the gateway's closed-sale preflight.
func ConfirmBidFailedEvent(submission *bidcore.BidSubmission, bidErr *bidcore.BidError) analytics.Event {
	return confirmBidFailedEvent(submission, submission.BidderID, bidErr)
}

// MaxBidSelectedEvent records the pre-bid increment choice. Emitted by the
// gateway when the storefront resolves a requested amount against a sale's
// increment policy.
func MaxBidSelectedEvent(submission *bidcore.BidSubmission, selectedMinor string) analytics.Event {
	event := baseEvent(analytics.ActionSelectedMaxBid, submission, submission.BidderID)
	event.SelectedMaxBidMinor = selectedMinor
	return event
}
