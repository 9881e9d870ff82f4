package bidflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallerynet/paddle/analytics"
	"github.com/gallerynet/paddle/bidcore"
	"github.com/gallerynet/paddle/marketplace"
)

type statusReply struct {
	snapshot *bidcore.BidderPositionStatus
	err      error
}

type fakeMarketplace struct {
	mu sync.Mutex

	positionResult *marketplace.PositionResult
	positionErr    error
	registerErr    error
	replies        []statusReply

	createCalls   int
	registerCalls int
	registerToken string
	registerPhone string
	statusCalls   []string

	statusStarted chan struct{}
	statusRelease chan struct{}
}

func (f *fakeMarketplace) CreateBidderPosition(ctx context.Context, submission *bidcore.BidSubmission) (*marketplace.PositionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.positionErr != nil {
		return nil, f.positionErr
	}
	return f.positionResult, nil
}

func (f *fakeMarketplace) CreateCreditCardAndUpdatePhone(ctx context.Context, token string, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	f.registerToken = token
	f.registerPhone = phone
	return f.registerErr
}

func (f *fakeMarketplace) BidderPositionStatus(ctx context.Context, bidderPositionID string) (*bidcore.BidderPositionStatus, error) {
	if f.statusStarted != nil {
		f.statusStarted <- struct{}{}
	}
	if f.statusRelease != nil {
		<-f.statusRelease
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, bidderPositionID)
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply.snapshot, reply.err
}

func (f *fakeMarketplace) calls() (int, int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.registerCalls, append([]string{}, f.statusCalls...)
}

type fakeTokenizer struct {
	token string
	err   error
	calls int
	card  bidcore.CardFields
}

func (f *fakeTokenizer) CreateToken(ctx context.Context, card bidcore.CardFields) (string, error) {
	f.calls++
	f.card = card
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []analytics.Event
}

func (s *recordingSink) Post(event analytics.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) all() []analytics.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]analytics.Event{}, s.events...)
}

func pendingSnapshot(positionID string) statusReply {
	return statusReply{snapshot: &bidcore.BidderPositionStatus{
		PositionID: positionID,
		Status:     bidcore.StatusPending,
	}}
}

func terminalSnapshot(positionID string, status bidcore.PositionStatus) statusReply {
	return statusReply{snapshot: &bidcore.BidderPositionStatus{
		PositionID: positionID,
		Status:     status,
	}}
}

func registeredSubmission() *bidcore.BidSubmission {
	return &bidcore.BidSubmission{
		ArtworkID:         "artwork-id",
		ArtworkSlug:       "artwork-slug",
		SaleID:            "sale-id",
		SaleSlug:          "sale-slug",
		UserID:            "user-id",
		BidderID:          "existing-bidder-id",
		MaxBidAmountCents: 5000000,
	}
}

func registeringSubmission() *bidcore.BidSubmission {
	submission := registeredSubmission()
	submission.BidderID = ""
	submission.RequiresRegistration = true
	submission.AgreedToTerms = true
	return submission
}

func fullCardSubmission() *bidcore.BidSubmission {
	submission := registeringSubmission()
	submission.RequiresPaymentToken = true
	submission.Card = bidcore.CardFields{
		Name:           "Example Name",
		AddressLine1:   "123 Example Street",
		AddressLine2:   "Apt 1",
		AddressCity:    "New York",
		AddressState:   "NY",
		AddressZip:     "10012",
		AddressCountry: "US",
		PhoneNumber:    "555-555-5555",
	}
	return submission
}

func newTestResolver(backend *fakeMarketplace, tokenizer *fakeTokenizer, sink *recordingSink) *Resolver {
	return NewResolver(ResolverParams{
		Marketplace:  backend,
		Tokenizer:    tokenizer,
		Events:       sink,
		AppURL:       "https://app.example.com",
		PollInterval: time.Millisecond,
	})
}

func TestSubmitRegisteredBidderWins(t *testing.T) {
	backend := &fakeMarketplace{
		positionResult: &marketplace.PositionResult{PositionID: "position-id"},
		replies: []statusReply{
			pendingSnapshot("pending-position-id-from-polling"),
			terminalSnapshot("pending-position-id-from-polling", bidcore.StatusWinning),
		},
	}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, &fakeTokenizer{}, sink)

	outcome := resolver.Submit(context.Background(), registeredSubmission())

	require.NotNil(t, outcome)
	assert.True(t, outcome.Won)
	assert.Equal(t, "https://app.example.com/artwork/artwork-slug", outcome.RedirectTarget)
	assert.Equal(t, "pending-position-id-from-polling", outcome.PositionID)

	_, registerCalls, statusCalls := backend.calls()
	assert.Equal(t, 0, registerCalls)
	assert.Equal(t, []string{"position-id", "pending-position-id-from-polling"}, statusCalls)

	events := sink.all()
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, analytics.ActionConfirmBidSubmitted, event.ActionType)
	assert.Equal(t, analytics.PageAuctionConfirmBid, event.ContextPage)
	assert.Equal(t, "sale-slug", event.AuctionSlug)
	assert.Equal(t, "artwork-slug", event.ArtworkSlug)
	assert.Equal(t, "existing-bidder-id", event.BidderID)
	assert.Equal(t, "existing-bidder-id", event.OrderID)
	assert.Equal(t, "pending-position-id-from-polling", event.BidderPositionID)
	require.Len(t, event.Products, 1)
	assert.Equal(t, "artwork-id", event.Products[0].ProductID)
	assert.Equal(t, 1, event.Products[0].Quantity)
	assert.Equal(t, float64(50000), event.Products[0].Price)
}

func TestSubmitPlacementMutationError(t *testing.T) {
	backend := &fakeMarketplace{
		positionErr: bidcore.MutationError("Sale Closed to Bids."),
	}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, &fakeTokenizer{}, sink)

	outcome := resolver.Submit(context.Background(), registeredSubmission())

	require.NotNil(t, outcome)
	assert.False(t, outcome.Won)
	assert.Equal(t, []string{"Sale Closed to Bids."}, outcome.Messages)

	_, _, statusCalls := backend.calls()
	assert.Empty(t, statusCalls)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, analytics.ActionConfirmBidFailed, events[0].ActionType)
	assert.Equal(t, []string{"Sale Closed to Bids"}, events[0].ErrorMessages)
}

func TestSubmitPlacementTransportError(t *testing.T) {
	backend := &fakeMarketplace{
		positionErr: bidcore.TransportError(errors.New("failed to fetch")),
	}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, &fakeTokenizer{}, sink)

	outcome := resolver.Submit(context.Background(), registeredSubmission())

	require.NotNil(t, outcome)
	assert.Equal(t, []string{bidcore.MsgConnectionProblem}, outcome.Messages)

	_, _, statusCalls := backend.calls()
	assert.Empty(t, statusCalls)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, []string{"JavaScript error: failed to fetch"}, events[0].ErrorMessages)
}

func TestSubmitOutbid(t *testing.T) {
	backend := &fakeMarketplace{
		positionResult: &marketplace.PositionResult{PositionID: "position-id"},
		replies: []statusReply{
			pendingSnapshot("position-id"),
			terminalSnapshot("position-id", bidcore.StatusOutbid),
		},
	}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, &fakeTokenizer{}, sink)

	outcome := resolver.Submit(context.Background(), registeredSubmission())

	require.NotNil(t, outcome)
	assert.False(t, outcome.Won)
	assert.Equal(t, []string{"Your bid wasn’t high enough."}, outcome.Messages)
	assert.Equal(t, "position-id", outcome.PositionID)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, analytics.ActionConfirmBidFailed, events[0].ActionType)
	assert.Equal(t, []string{"Your bid wasn’t high enough"}, events[0].ErrorMessages)
}

func TestSubmitRegistersThroughBidPlacement(t *testing.T) {
	backend := &fakeMarketplace{
		positionResult: &marketplace.PositionResult{
			PositionID: "position-id",
			BidderID:   "new-bidder-id",
		},
		replies: []statusReply{
			terminalSnapshot("position-id", bidcore.StatusWinning),
		},
	}
	tokenizer := &fakeTokenizer{}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, tokenizer, sink)

	outcome := resolver.Submit(context.Background(), registeringSubmission())

	require.NotNil(t, outcome)
	assert.True(t, outcome.Won)
	assert.Equal(t, 0, tokenizer.calls)

	_, registerCalls, _ := backend.calls()
	assert.Equal(t, 0, registerCalls)

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, analytics.ActionRegistrationSubmitted, events[0].ActionType)
	assert.Equal(t, "new-bidder-id", events[0].BidderID)
	assert.Equal(t, analytics.ActionConfirmBidSubmitted, events[1].ActionType)
	assert.Equal(t, "new-bidder-id", events[1].BidderID)
}

func TestSubmitTermsNotAgreed(t *testing.T) {
	backend := &fakeMarketplace{}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, &fakeTokenizer{}, sink)

	submission := registeringSubmission()
	submission.AgreedToTerms = false
	outcome := resolver.Submit(context.Background(), submission)

	require.NotNil(t, outcome)
	assert.Equal(t, []string{bidcore.MsgTermsNotAgreed}, outcome.Messages)
	assert.False(t, outcome.BidderIDKnown)

	createCalls, registerCalls, statusCalls := backend.calls()
	assert.Equal(t, 0, createCalls)
	assert.Equal(t, 0, registerCalls)
	assert.Empty(t, statusCalls)
	assert.Empty(t, sink.all())
}

func TestSubmitRegistersWithNewCard(t *testing.T) {
	backend := &fakeMarketplace{
		positionResult: &marketplace.PositionResult{
			PositionID: "position-id",
			BidderID:   "new-bidder-id",
		},
		replies: []statusReply{
			terminalSnapshot("position-id", bidcore.StatusWinning),
		},
	}
	tokenizer := &fakeTokenizer{token: "tok_abc"}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, tokenizer, sink)

	submission := fullCardSubmission()
	outcome := resolver.Submit(context.Background(), submission)

	require.NotNil(t, outcome)
	assert.True(t, outcome.Won)
	assert.Equal(t, 1, tokenizer.calls)
	assert.Equal(t, submission.Card, tokenizer.card)

	_, registerCalls, _ := backend.calls()
	assert.Equal(t, 1, registerCalls)
	assert.Equal(t, "tok_abc", backend.registerToken)
	assert.Equal(t, "555-555-5555", backend.registerPhone)

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, analytics.ActionRegistrationSubmitted, events[0].ActionType)
	assert.Equal(t, analytics.ActionConfirmBidSubmitted, events[1].ActionType)
}

func TestSubmitMissingCardFields(t *testing.T) {
	backend := &fakeMarketplace{}
	tokenizer := &fakeTokenizer{}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, tokenizer, sink)

	submission := registeringSubmission()
	submission.RequiresPaymentToken = true
	submission.AgreedToTerms = false
	outcome := resolver.Submit(context.Background(), submission)

	require.NotNil(t, outcome)
	assert.Equal(t, []string{
		"Name is required",
		"Address is required",
		"City is required",
		"State is required",
		"Postal code is required",
		"Country is required",
		"Telephone is required",
		bidcore.MsgTermsNotAgreed,
	}, outcome.Messages)

	assert.Equal(t, 0, tokenizer.calls)
	createCalls, _, _ := backend.calls()
	assert.Equal(t, 0, createCalls)
	assert.Empty(t, sink.all())
}

func TestSubmitTokenizationError(t *testing.T) {
	backend := &fakeMarketplace{}
	tokenizer := &fakeTokenizer{err: bidcore.PaymentError("Stripe error: Card declined")}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, tokenizer, sink)

	outcome := resolver.Submit(context.Background(), fullCardSubmission())

	require.NotNil(t, outcome)
	assert.Equal(t, []string{bidcore.MsgConnectionProblem}, outcome.Messages)

	createCalls, registerCalls, _ := backend.calls()
	assert.Equal(t, 0, createCalls)
	assert.Equal(t, 0, registerCalls)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, analytics.ActionConfirmBidFailed, events[0].ActionType)
	assert.Equal(t, []string{"JavaScript error: Stripe error: Card declined"}, events[0].ErrorMessages)
}

func TestSubmitRegistrationMutationErrorStillTracksRegistration(t *testing.T) {
	backend := &fakeMarketplace{
		registerErr: bidcore.MutationError("Registration rejected."),
	}
	tokenizer := &fakeTokenizer{token: "tok_abc"}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, tokenizer, sink)

	outcome := resolver.Submit(context.Background(), fullCardSubmission())

	require.NotNil(t, outcome)
	assert.Equal(t, []string{"Registration rejected."}, outcome.Messages)

	createCalls, _, _ := backend.calls()
	assert.Equal(t, 0, createCalls)

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, analytics.ActionRegistrationSubmitted, events[0].ActionType)
	assert.Equal(t, analytics.ActionConfirmBidFailed, events[1].ActionType)
	assert.Equal(t, []string{"Registration rejected"}, events[1].ErrorMessages)
}

func TestRegistrationTrackedOncePerSession(t *testing.T) {
	backend := &fakeMarketplace{
		positionErr: bidcore.MutationError("Sale Closed to Bids."),
	}
	tokenizer := &fakeTokenizer{token: "tok_abc"}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, tokenizer, sink)

	submission := fullCardSubmission()
	resolver.Submit(context.Background(), submission)

	backend.mu.Lock()
	backend.positionErr = nil
	backend.positionResult = &marketplace.PositionResult{
		PositionID: "position-id",
		BidderID:   "new-bidder-id",
	}
	backend.replies = []statusReply{
		terminalSnapshot("position-id", bidcore.StatusWinning),
	}
	backend.mu.Unlock()

	outcome := resolver.Submit(context.Background(), fullCardSubmission())
	require.NotNil(t, outcome)
	assert.True(t, outcome.Won)

	var registrationEvents int
	for _, event := range sink.all() {
		if event.ActionType == analytics.ActionRegistrationSubmitted {
			registrationEvents++
		}
	}
	assert.Equal(t, 1, registrationEvents)
}

func TestBidderIDStickyAcrossNullSnapshots(t *testing.T) {
	backend := &fakeMarketplace{
		positionResult: &marketplace.PositionResult{
			PositionID: "position-id",
			BidderID:   "new-bidder-id",
		},
		replies: []statusReply{
			terminalSnapshot("position-id", bidcore.StatusWinning),
		},
	}
	sink := &recordingSink{}

	var registeredUser, registeredSale, registeredBidder string
	var registrations int
	resolver := NewResolver(ResolverParams{
		Marketplace:  backend,
		Events:       sink,
		AppURL:       "https://app.example.com",
		PollInterval: time.Millisecond,
		OnRegistered: func(userID, saleID, bidderID string) {
			registrations++
			registeredUser, registeredSale, registeredBidder = userID, saleID, bidderID
		},
	})

	outcome := resolver.Submit(context.Background(), registeringSubmission())
	require.NotNil(t, outcome)

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, "new-bidder-id", events[1].BidderID)

	assert.Equal(t, 1, registrations)
	assert.Equal(t, "user-id", registeredUser)
	assert.Equal(t, "sale-id", registeredSale)
	assert.Equal(t, "new-bidder-id", registeredBidder)
}

func TestSubmitRejectsReentrantSubmission(t *testing.T) {
	backend := &fakeMarketplace{
		positionResult: &marketplace.PositionResult{PositionID: "position-id"},
		replies: []statusReply{
			terminalSnapshot("position-id", bidcore.StatusWinning),
		},
		statusStarted: make(chan struct{}, 1),
		statusRelease: make(chan struct{}),
	}
	sink := &recordingSink{}
	resolver := newTestResolver(backend, &fakeTokenizer{}, sink)

	done := make(chan *bidcore.BidOutcome, 1)
	go func() {
		done <- resolver.Submit(context.Background(), registeredSubmission())
	}()

	<-backend.statusStarted
	second := resolver.Submit(context.Background(), registeredSubmission())
	require.NotNil(t, second)
	assert.Equal(t, []string{MsgSubmissionInFlight}, second.Messages)

	close(backend.statusRelease)
	first := <-done
	require.NotNil(t, first)
	assert.True(t, first.Won)

	createCalls, _, _ := backend.calls()
	assert.Equal(t, 1, createCalls)
}

func TestSubmitPollTimeout(t *testing.T) {
	backend := &fakeMarketplace{
		positionResult: &marketplace.PositionResult{PositionID: "position-id"},
		replies: []statusReply{
			pendingSnapshot("position-id"),
		},
	}
	sink := &recordingSink{}
	resolver := NewResolver(ResolverParams{
		Marketplace:     backend,
		Events:          sink,
		AppURL:          "https://app.example.com",
		PollInterval:    time.Millisecond,
		MaxPollAttempts: 3,
	})

	outcome := resolver.Submit(context.Background(), registeredSubmission())

	require.NotNil(t, outcome)
	assert.Equal(t, []string{bidcore.MsgBidStillPending}, outcome.Messages)

	_, _, statusCalls := backend.calls()
	assert.Len(t, statusCalls, 3)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, []string{"Bid result polling timed out"}, events[0].ErrorMessages)
}
