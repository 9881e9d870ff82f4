package bidflow

import (
	"context"
	"sync"
	"time"

	"github.com/go-errors/errors"

	"github.com/gallerynet/paddle/bidcore"
)

// ErrPollCancelled is returned when a settlement poll is abandoned by the
// caller. No outcome and no analytics event follow a cancelled poll.
var ErrPollCancelled = errors.New("settlement poll cancelled")

// PositionStatusAPI is the single query the poller needs.
type PositionStatusAPI interface {
	BidderPositionStatus(ctx context.Context, bidderPositionID string) (*bidcore.BidderPositionStatus, error)
}

// SettlementPoller drives one bidder position to a terminal status. The first
// query fires immediately, each subsequent one after the configured interval.
// When a snapshot carries a superseding position id, the next query uses it.
type SettlementPoller struct {
	statuses    PositionStatusAPI
	interval    time.Duration
	maxAttempts int
	observer    SnapshotObserver

	cancel     chan struct{}
	cancelOnce sync.Once
}

func NewSettlementPoller(statuses PositionStatusAPI, interval time.Duration, maxAttempts int, observer SnapshotObserver) *SettlementPoller {
	return &SettlementPoller{
		statuses:    statuses,
		interval:    interval,
		maxAttempts: maxAttempts,
		observer:    observer,
		cancel:      make(chan struct{}),
	}
}

// Cancel stops the loop before its next query. Safe to call more than once
// and from any goroutine.
func (poller *SettlementPoller) Cancel() {
	poller.cancelOnce.Do(func() {
		close(poller.cancel)
	})
}

// Poll blocks until the position settles, the attempt budget runs out, the
// backend errors, or the poll is cancelled. Errors other than ErrPollCancelled
// are always a *bidcore.BidError.
func (poller *SettlementPoller) Poll(ctx context.Context, bidderPositionID string) (*bidcore.BidderPositionStatus, error) {
	currentPositionID := bidderPositionID

	for attempt := 0; poller.maxAttempts <= 0 || attempt < poller.maxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(poller.interval)
			select {
			case <-timer.C:
			case <-poller.cancel:
				timer.Stop()
				return nil, ErrPollCancelled
			case <-ctx.Done():
				timer.Stop()
				return nil, ErrPollCancelled
			}
		}

		select {
		case <-poller.cancel:
			return nil, ErrPollCancelled
		case <-ctx.Done():
			return nil, ErrPollCancelled
		default:
		}

		snapshot, err := poller.statuses.BidderPositionStatus(ctx, currentPositionID)
		if err != nil {
			return nil, asBidError(err)
		}

		if poller.observer != nil {
			poller.observer(currentPositionID, snapshot)
		}

		if snapshot.PositionID != "" {
			currentPositionID = snapshot.PositionID
		}

		if snapshot.Status.Terminal() {
			if snapshot.Status.Won() {
				return snapshot, nil
			}
			return snapshot, bidcore.SettlementRejectedError(snapshot.Status)
		}
	}

	return nil, bidcore.PollTimeoutError()
}

func asBidError(err error) *bidcore.BidError {
	if bidErr, ok := err.(*bidcore.BidError); ok {
		return bidErr
	}
	return bidcore.TransportError(err)
}
