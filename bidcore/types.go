package bidcore

// PositionStatus is the settlement status the backend reports for a bidder
// position. PENDING is the only non-terminal status.
type PositionStatus string

const (
	StatusPending            PositionStatus = "PENDING"
	StatusWinning            PositionStatus = "WINNING"
	StatusOutbid             PositionStatus = "OUTBID"
	StatusReserveNotMet      PositionStatus = "RESERVE_NOT_MET"
	StatusSaleClosed         PositionStatus = "SALE_CLOSED"
	StatusLiveBiddingStarted PositionStatus = "LIVE_BIDDING_STARTED"
)

func (s PositionStatus) Terminal() bool {
	return s != StatusPending
}

func (s PositionStatus) Won() bool {
	return s == StatusWinning
}

// CardFields are the address and contact fields the tokenization provider
// needs for an unregistered bidder without a card on file.
type CardFields struct {
	Name           string `json:"name"`
	AddressLine1   string `json:"address_line1"`
	AddressLine2   string `json:"address_line2"`
	AddressCity    string `json:"address_city"`
	AddressState   string `json:"address_state"`
	AddressZip     string `json:"address_zip"`
	AddressCountry string `json:"address_country"`
	PhoneNumber    string `json:"phone_number"`
}

// BidSubmission is one in-flight bid request. It is created when the
// storefront submits the confirm-bid form and discarded once a terminal
// outcome is produced.
type BidSubmission struct {
	ArtworkID   string `json:"artwork_id"`
	ArtworkSlug string `json:"artwork_slug"`
	SaleID      string `json:"sale_id"`
	SaleSlug    string `json:"sale_slug"`
	UserID      string `json:"user_id"`

	// BidderID is the caller's existing bidder id for this sale, empty when
	// the caller is not yet registered.
	BidderID string `json:"bidder_id"`

	MaxBidAmountCents int64 `json:"max_bid_amount_cents"`

	RequiresRegistration bool `json:"requires_registration"`
	RequiresPaymentToken bool `json:"requires_payment_token"`
	AgreedToTerms        bool `json:"agreed_to_terms"`

	Card CardFields `json:"card"`
}

// SessionKey identifies the bidder session a submission belongs to. The
// registration dedupe flag and the sticky bidder id are scoped to it.
func (s *BidSubmission) SessionKey() string {
	return s.UserID + "/" + s.SaleID
}

// BidderPositionStatus is one polled snapshot of a position. Each poll
// supersedes the previous one; the position id of the latest snapshot is the
// one the next poll must use.
type BidderPositionStatus struct {
	PositionID string         `json:"position_id"`
	Status     PositionStatus `json:"status"`
	BidderID   string         `json:"bidder_id"`
}

// BidOutcome is the terminal result of a submission, consumed by the
// presentation layer.
type BidOutcome struct {
	Won            bool     `json:"won"`
	RedirectTarget string   `json:"redirect_target,omitempty"`
	Messages       []string `json:"messages,omitempty"`
	BidderIDKnown  bool     `json:"bidder_id_known"`

	// PositionID is the settled position's id, empty when the submission
	// never reached a poll snapshot.
	PositionID string `json:"position_id,omitempty"`
}

func SuccessOutcome(redirectTarget string) *BidOutcome {
	return &BidOutcome{
		Won:            true,
		RedirectTarget: redirectTarget,
		BidderIDKnown:  true,
	}
}

func FailureOutcome(messages []string, bidderIDKnown bool) *BidOutcome {
	return &BidOutcome{
		Won:           false,
		Messages:      messages,
		BidderIDKnown: bidderIDKnown,
	}
}
