package bidflow

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/analytics"
	"github.com/gallerynet/paddle/bidcore"
	"github.com/gallerynet/paddle/marketplace"
)

// MarketplaceAPI is the slice of the backend the bid flow needs.
type MarketplaceAPI interface {
	CreateBidderPosition(ctx context.Context, submission *bidcore.BidSubmission) (*marketplace.PositionResult, error)
	CreateCreditCardAndUpdatePhone(ctx context.Context, token string, phone string) error
	BidderPositionStatus(ctx context.Context, bidderPositionID string) (*bidcore.BidderPositionStatus, error)
}

// Tokenizer exchanges billing details for an opaque payment token.
type Tokenizer interface {
	CreateToken(ctx context.Context, card bidcore.CardFields) (string, error)
}

// SnapshotObserver sees every polled snapshot, keyed by the position id the
// poll was issued for (which may differ from the snapshot's own id when the
// backend supersedes a position).
type SnapshotObserver func(requestedPositionID string, snapshot *bidcore.BidderPositionStatus)

// RegistrationObserver is told when a session learns its bidder id.
type RegistrationObserver func(userID string, saleID string, bidderID string)

type ResolverParams struct {
	Marketplace MarketplaceAPI
	Tokenizer   Tokenizer
	Events      analytics.Sink

	AppURL          string
	PollInterval    time.Duration
	MaxPollAttempts int

	OnSnapshot   SnapshotObserver
	OnRegistered RegistrationObserver
}

// bidderSession is the per-user-per-sale state the invariants are scoped to:
// the sticky bidder id, the registration dedupe flag and the re-entrancy
// guard.
type bidderSession struct {
	bidderID            string
	registrationTracked bool
	inFlight            bool
}

// Resolver owns the whole confirm-bid flow: prerequisite branching, payment
// tokenization, registration, bid placement and settlement polling.
type Resolver struct {
	marketplace MarketplaceAPI
	tokenizer   Tokenizer
	events      analytics.Sink

	appURL          string
	pollInterval    time.Duration
	maxPollAttempts int

	onSnapshot   SnapshotObserver
	onRegistered RegistrationObserver

	log *logrus.Entry

	mu       sync.Mutex
	sessions map[string]*bidderSession
}
