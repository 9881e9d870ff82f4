package bidflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gallerynet/paddle/bidcore"
)

var (
	DefaultPollInterval    = time.Second
	DefaultMaxPollAttempts = 60

	// MsgSubmissionInFlight is shown when a session re-submits while a
	// previous submission has not settled yet.
	MsgSubmissionInFlight = "Your previous bid is still being processed. Please wait for it to finish."
)

func NewResolver(params ResolverParams) *Resolver {
	pollInterval := params.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	maxPollAttempts := params.MaxPollAttempts
	if maxPollAttempts <= 0 {
		maxPollAttempts = DefaultMaxPollAttempts
	}

	return &Resolver{
		marketplace:     params.Marketplace,
		tokenizer:       params.Tokenizer,
		events:          params.Events,
		appURL:          strings.TrimSuffix(params.AppURL, "/"),
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
		onSnapshot:      params.OnSnapshot,
		onRegistered:    params.OnRegistered,
		log: logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
			"package": "bidflow",
		}),
		sessions: make(map[string]*bidderSession),
	}
}

// Submit runs one confirm-bid submission to its terminal outcome. The outcome
// is nil only when the settlement poll was cancelled, in which case nothing
// further is emitted for the submission.
func (resolver *Resolver) Submit(ctx context.Context, submission *bidcore.BidSubmission) *bidcore.BidOutcome {
	session, acquired := resolver.beginSubmission(submission)
	if !acquired {
		return bidcore.FailureOutcome([]string{MsgSubmissionInFlight}, resolver.bidderKnown(session))
	}
	defer resolver.endSubmission(submission)

	if bidErr := resolver.validate(submission); bidErr != nil {
		return resolver.fail(submission, session, bidErr)
	}

	if submission.RequiresRegistration && submission.RequiresPaymentToken {
		if bidErr := resolver.registerWithNewCard(ctx, submission, session); bidErr != nil {
			return resolver.fail(submission, session, bidErr)
		}
	}

	result, err := resolver.marketplace.CreateBidderPosition(ctx, submission)
	if err != nil {
		bidErr := asBidError(err)
		// The backend acknowledged the placement attempt, so a first time
		// registrant counts as having submitted their registration even
		// when the mutation itself was rejected.
		if submission.RequiresRegistration && bidErr.Kind == bidcore.KindMutation {
			resolver.trackRegistrationSubmitted(submission, session)
		}
		return resolver.fail(submission, session, bidErr)
	}

	resolver.rememberBidder(submission, session, result.BidderID)
	if submission.RequiresRegistration {
		resolver.trackRegistrationSubmitted(submission, session)
	}

	poller := NewSettlementPoller(resolver.marketplace, resolver.pollInterval, resolver.maxPollAttempts, resolver.onSnapshot)
	snapshot, err := poller.Poll(ctx, result.PositionID)
	if err == ErrPollCancelled {
		resolver.log.WithFields(logrus.Fields{
			"saleID": submission.SaleID,
			"userID": submission.UserID,
		}).Info("settlement poll cancelled")
		return nil
	}
	if snapshot != nil {
		resolver.rememberBidder(submission, session, snapshot.BidderID)
	}
	if err != nil {
		outcome := resolver.fail(submission, session, asBidError(err))
		if snapshot != nil {
			outcome.PositionID = snapshot.PositionID
		}
		return outcome
	}

	resolver.events.Post(confirmBidSubmittedEvent(submission, resolver.bidderID(session), snapshot.PositionID))
	outcome := bidcore.SuccessOutcome(fmt.Sprintf("%s/artwork/%s", resolver.appURL, submission.ArtworkSlug))
	outcome.PositionID = snapshot.PositionID
	return outcome
}

// registerWithNewCard runs the no-card-on-file branch: tokenize the billing
// details, then attach the card and phone number to the user before bidding.
func (resolver *Resolver) registerWithNewCard(ctx context.Context, submission *bidcore.BidSubmission, session *bidderSession) *bidcore.BidError {
	token, err := resolver.tokenizer.CreateToken(ctx, submission.Card)
	if err != nil {
		return asBidError(err)
	}

	err = resolver.marketplace.CreateCreditCardAndUpdatePhone(ctx, token, submission.Card.PhoneNumber)
	if err != nil {
		bidErr := asBidError(err)
		if bidErr.Kind == bidcore.KindMutation {
			resolver.trackRegistrationSubmitted(submission, session)
		}
		return bidErr
	}

	resolver.trackRegistrationSubmitted(submission, session)
	return nil
}

// validate rejects a submission before any network call. Field messages are
// collected in form order so the storefront can render them all at once.
func (resolver *Resolver) validate(submission *bidcore.BidSubmission) *bidcore.BidError {
	var messages []string

	if submission.RequiresPaymentToken {
		messages = append(messages, missingCardFields(submission.Card)...)
	}
	if submission.RequiresRegistration && !submission.AgreedToTerms {
		messages = append(messages, bidcore.MsgTermsNotAgreed)
	}

	if len(messages) == 0 {
		return nil
	}
	return bidcore.ValidationError(messages...)
}

func missingCardFields(card bidcore.CardFields) []string {
	var messages []string
	required := []struct {
		value   string
		message string
	}{
		{card.Name, "Name is required"},
		{card.AddressLine1, "Address is required"},
		{card.AddressCity, "City is required"},
		{card.AddressState, "State is required"},
		{card.AddressZip, "Postal code is required"},
		{card.AddressCountry, "Country is required"},
		{card.PhoneNumber, "Telephone is required"},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			messages = append(messages, field.message)
		}
	}
	return messages
}

// fail turns a BidError into the terminal outcome. Validation rejections are
// local to the form and produce no analytics event.
func (resolver *Resolver) fail(submission *bidcore.BidSubmission, session *bidderSession, bidErr *bidcore.BidError) *bidcore.BidOutcome {
	if bidErr.Kind != bidcore.KindValidation {
		resolver.events.Post(confirmBidFailedEvent(submission, resolver.bidderID(session), bidErr))
	}
	return bidcore.FailureOutcome(bidErr.DisplayMessages, resolver.bidderKnown(session))
}

func (resolver *Resolver) beginSubmission(submission *bidcore.BidSubmission) (*bidderSession, bool) {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()

	session, found := resolver.sessions[submission.SessionKey()]
	if !found {
		session = &bidderSession{}
		resolver.sessions[submission.SessionKey()] = session
	}
	if session.inFlight {
		return session, false
	}
	session.inFlight = true
	if submission.BidderID != "" && session.bidderID == "" {
		session.bidderID = submission.BidderID
	}
	return session, true
}

func (resolver *Resolver) endSubmission(submission *bidcore.BidSubmission) {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	if session, found := resolver.sessions[submission.SessionKey()]; found {
		session.inFlight = false
	}
}

// rememberBidder records a bidder id for the session. A null id from a later
// response never clears one already learned.
func (resolver *Resolver) rememberBidder(submission *bidcore.BidSubmission, session *bidderSession, bidderID string) {
	if bidderID == "" {
		return
	}

	resolver.mu.Lock()
	changed := session.bidderID != bidderID
	session.bidderID = bidderID
	resolver.mu.Unlock()

	if changed && resolver.onRegistered != nil {
		resolver.onRegistered(submission.UserID, submission.SaleID, bidderID)
	}
}

// trackRegistrationSubmitted emits the registration event at most once per
// bidder session.
func (resolver *Resolver) trackRegistrationSubmitted(submission *bidcore.BidSubmission, session *bidderSession) {
	resolver.mu.Lock()
	alreadyTracked := session.registrationTracked
	session.registrationTracked = true
	resolver.mu.Unlock()

	if alreadyTracked {
		return
	}
	resolver.events.Post(registrationSubmittedEvent(submission, resolver.bidderID(session)))
}

func (resolver *Resolver) bidderID(session *bidderSession) string {
	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	return session.bidderID
}

func (resolver *Resolver) bidderKnown(session *bidderSession) bool {
	return resolver.bidderID(session) != ""
}
