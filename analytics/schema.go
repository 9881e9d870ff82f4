// Package analytics defines the event schema the storefront's tracking sink
// expects and the sinks that deliver events to it.
package analytics

const (
	ActionRegistrationSubmitted = "Registration Submitted"
	ActionConfirmBidSubmitted   = "Confirm Bid Submitted"
	ActionConfirmBidFailed      = "Confirm Bid Failed"
	ActionSelectedMaxBid        = "Selected Max Bid"

	PageAuctionConfirmBid = "Auction Confirm Bid Page"
)

// Product is the order line attached to a successful bid confirmation.
// Price is in major currency units.
type Product struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Event is one tracking payload. Field names follow the sink's schema, so
// they must not change without a schema bump on the storefront side. A
// bidder or user the flow has not identified yet is omitted, not sent as "".
type Event struct {
	ActionType  string `json:"action_type"`
	ContextPage string `json:"context_page"`
	AuctionSlug string `json:"auction_slug"`
	ArtworkSlug string `json:"artwork_slug"`
	BidderID    string `json:"bidder_id,omitempty"`
	SaleID      string `json:"sale_id"`
	UserID      string `json:"user_id,omitempty"`

	BidderPositionID    string    `json:"bidder_position_id,omitempty"`
	OrderID             string    `json:"order_id,omitempty"`
	Products            []Product `json:"products,omitempty"`
	ErrorMessages       []string  `json:"error_messages,omitempty"`
	SelectedMaxBidMinor string    `json:"selected_max_bid_minor,omitempty"`
}

// Sink receives events in the order the resolver emits them.
type Sink interface {
	Post(event Event)
}

// MultiSink fans one event out to several sinks, preserving order per sink.
type MultiSink []Sink

func (m MultiSink) Post(event Event) {
	for _, sink := range m {
		sink.Post(event)
	}
}
