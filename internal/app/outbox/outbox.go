// Package outbox turns domain events into broker records and hands them to a
// sink: the broker itself, or a durable table drained by a relay.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/metrics"
	"bookingengine/internal/domain/shared/events"
)

const (
	defaultSource = "app://bookingengine"
	contentType   = "application/cloudevents+json"
)

type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	occurred := ev.OccurredAt()
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return EventRecord{
		ID:         idGen(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: occurred.UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    map[string]string{},
	}, nil
}

func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs ...events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// CloudEvent wraps the record payload in a CloudEvents 1.0 JSON envelope and
// returns the message headers to send with it.
func CloudEvent(rec EventRecord, source string) ([]byte, map[string]string, error) {
	if source == "" {
		source = defaultSource
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              rec.ID,
		"type":            rec.Name + ".v1",
		"source":          source,
		"subject":         rec.Aggregate,
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            json.RawMessage(rec.Payload),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": contentType,
		"event-id":     rec.ID,
		"event-name":   rec.Name,
		"aggregate-id": rec.Aggregate,
		"occurred-at":  rec.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// Publisher records events into Box. It serves both the metrics dashboard
// and the booking request flow.
type Publisher struct {
	Box     Outbox
	Encoder EventEncoder
}

func (p Publisher) Publish(ctx context.Context, ev events.DomainEvent) error {
	return RecordDomainEvents(ctx, p.Box, p.Encoder, ev)
}

func (p Publisher) PublishMetrics(ctx context.Context, ev metrics.Computed) error {
	return p.Publish(ctx, ev)
}

var (
	_ ports.MetricsPublisher = Publisher{}
	_ ports.EventPublisher   = Publisher{}
)
