package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "bookingengine/internal/app/outbox"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

type Queue interface {
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker drains the queue into the broker. Failed sends are retried with the
// Backoff schedule; the last step repeats.
type Worker struct {
	Queue    Queue
	Producer Producer
	Topic    func(name string) string
	Source   string
	Interval time.Duration
	Backoff  []time.Duration
	ID       string
	Logger   *slog.Logger
	now      func() time.Time
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Queue == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				return err
			}
		}
	}
}

// drain relays every due record, stopping at the first empty claim.
func (w *Worker) drain(ctx context.Context) error {
	for ctx.Err() == nil {
		sent, err := w.processOnce(ctx)
		if err != nil || !sent {
			return err
		}
	}
	return nil
}

// processOnce reports whether a record was claimed.
func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	doc, err := w.Queue.Claim(ctx, w.ID)
	if err != nil || doc == nil {
		return false, err
	}
	payload, headers, err := appoutbox.CloudEvent(doc.Record(), w.Source)
	if err == nil {
		err = w.Producer.Publish(ctx, w.topicFor(doc.Name), doc.Aggregate, payload, headers)
	}
	if err != nil {
		if w.Logger != nil {
			w.Logger.Warn("outbox relay failed", "event_id", doc.ID, "event", doc.Name, "attempts", doc.Attempts+1, "err", err)
		}
		return true, w.Queue.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
	}
	return true, w.Queue.MarkSent(ctx, doc.ID)
}

func (w *Worker) topicFor(name string) string {
	if w.Topic == nil {
		return name
	}
	return w.Topic(name)
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	now := time.Now()
	if w.now != nil {
		now = w.now()
	}
	switch {
	case attempts < len(w.Backoff):
		return now.Add(w.Backoff[attempts])
	case len(w.Backoff) > 0:
		return now.Add(w.Backoff[len(w.Backoff)-1])
	default:
		return now.Add(5 * time.Second)
	}
}
