package bidcore

import (
	"fmt"
	"strings"
)

// ErrorKind classifies why a submission failed. Every kind terminates the
// submission's step chain immediately.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindPayment    ErrorKind = "payment"
	KindMutation   ErrorKind = "mutation"
	KindTransport  ErrorKind = "transport"
	KindSettlement ErrorKind = "settlement"
	KindTimeout    ErrorKind = "timeout"
)

var (
	MsgConnectionProblem = "Please make sure your internet connection is active and try again"
	MsgTermsNotAgreed    = "You must agree to the Conditions of Sale"
	MsgBidStillPending   = "Your bid is still processing. Check the auction page for the latest status."
)

// BidError carries both the user-facing messages and the messages recorded on
// the failure analytics event, which are not always the same: transport and
// payment failures show a generic connectivity message while analytics keeps
// the underlying cause.
type BidError struct {
	Kind            ErrorKind
	DisplayMessages []string
	EventMessages   []string
	Status          PositionStatus
	cause           error
}

func (e *BidError) Error() string {
	if len(e.EventMessages) > 0 {
		return fmt.Sprintf("%s: %s", e.Kind, strings.Join(e.EventMessages, "; "))
	}
	return string(e.Kind)
}

func (e *BidError) Unwrap() error {
	return e.cause
}

// ValidationError is a local, pre-network rejection. It produces no failure
// analytics event.
func ValidationError(messages ...string) *BidError {
	return &BidError{
		Kind:            KindValidation,
		DisplayMessages: messages,
		EventMessages:   messages,
	}
}

// PaymentError wraps an error payload from the tokenization provider.
func PaymentError(providerMessage string) *BidError {
	return &BidError{
		Kind:            KindPayment,
		DisplayMessages: []string{MsgConnectionProblem},
		EventMessages:   []string{"JavaScript error: " + providerMessage},
	}
}

// MutationError surfaces backend GraphQL messages verbatim. The analytics
// copy drops a trailing period, matching what the event sink expects.
func MutationError(messages ...string) *BidError {
	return &BidError{
		Kind:            KindMutation,
		DisplayMessages: messages,
		EventMessages:   trimPeriods(messages),
	}
}

// TransportError is a network level exception before any GraphQL response
// was observed.
func TransportError(err error) *BidError {
	return &BidError{
		Kind:            KindTransport,
		DisplayMessages: []string{MsgConnectionProblem},
		EventMessages:   []string{"JavaScript error: " + err.Error()},
		cause:           err,
	}
}

// SettlementRejectedError is a terminal non-winning poll status.
func SettlementRejectedError(status PositionStatus) *BidError {
	message := StatusMessage(status)
	return &BidError{
		Kind:            KindSettlement,
		DisplayMessages: []string{message},
		EventMessages:   trimPeriods([]string{message}),
		Status:          status,
	}
}

// PollTimeoutError is produced when the poller exhausts its attempt budget
// without observing a terminal status.
func PollTimeoutError() *BidError {
	return &BidError{
		Kind:            KindTimeout,
		DisplayMessages: []string{MsgBidStillPending},
		EventMessages:   []string{"Bid result polling timed out"},
	}
}

// StatusMessage maps a terminal non-winning status to its user-facing text.
func StatusMessage(status PositionStatus) string {
	switch status {
	case StatusOutbid:
		return "Your bid wasn’t high enough."
	case StatusReserveNotMet:
		return "Your bid didn’t meet the reserve price for this work."
	case StatusSaleClosed:
		return "Sorry, this sale is closed to new bids."
	case StatusLiveBiddingStarted:
		return "Sorry, live bidding has started for this sale."
	default:
		return "There was a problem with your bid. Please try again."
	}
}

func trimPeriods(messages []string) []string {
	trimmed := make([]string, len(messages))
	for i, message := range messages {
		trimmed[i] = strings.TrimSuffix(message, ".")
	}
	return trimmed
}
