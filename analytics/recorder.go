package analytics

import (
	"context"

	"github.com/sirupsen/logrus"
)

// EventRecorder persists events for the insights API.
type EventRecorder interface {
	PutBidEvent(ctx context.Context, event Event) error
}

// RecorderSink tees events into storage. Persistence failures are logged and
// dropped; they must not fail a bid submission.
type RecorderSink struct {
	Recorder EventRecorder
	Log      *logrus.Entry
}

func NewRecorderSink(recorder EventRecorder) *RecorderSink {
	return &RecorderSink{
		Recorder: recorder,
		Log: logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
			"package": "Analytics",
			"sink":    "Recorder",
		}),
	}
}

func (sink *RecorderSink) Post(event Event) {
	if err := sink.Recorder.PutBidEvent(context.Background(), event); err != nil {
		sink.Log.WithError(err).WithField("action", event.ActionType).Error("saving bid event to database failed")
	}
}
