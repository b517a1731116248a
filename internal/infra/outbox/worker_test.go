package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeQueue struct {
	pending []*EventDocument
	sent    []string
	failed  map[string]time.Time
}

func (q *fakeQueue) Claim(context.Context, string) (*EventDocument, error) {
	if len(q.pending) == 0 {
		return nil, nil
	}
	doc := q.pending[0]
	q.pending = q.pending[1:]
	return doc, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

type sentMessage struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

type fakeProducer struct {
	msgs []sentMessage
	err  error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, sentMessage{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func doc(id string, attempts int) *EventDocument {
	return &EventDocument{
		ID:         id,
		Name:       "metrics.computed",
		Payload:    []byte(`{"Host":"h1"}`),
		Aggregate:  "h1",
		Attempts:   attempts,
		OccurredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWorkerRelaysAsCloudEvents(t *testing.T) {
	q := &fakeQueue{pending: []*EventDocument{doc("e1", 0), doc("e2", 0)}}
	p := &fakeProducer{}
	w := &Worker{Queue: q, Producer: p, Topic: func(n string) string { return "prod." + n }, ID: "w1"}

	if err := w.drain(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(q.sent) != 2 || len(p.msgs) != 2 {
		t.Fatalf("sent = %v, msgs = %d", q.sent, len(p.msgs))
	}
	msg := p.msgs[0]
	if msg.topic != "prod.metrics.computed" || msg.key != "h1" || msg.headers["event-id"] != "e1" {
		t.Fatalf("message = %+v", msg)
	}
	var evt struct {
		Type string          `json:"type"`
		ID   string          `json:"id"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.payload, &evt); err != nil {
		t.Fatal(err)
	}
	if evt.Type != "metrics.computed.v1" || evt.ID != "e1" || string(evt.Data) != `{"Host":"h1"}` {
		t.Fatalf("event = %+v", evt)
	}
}

func TestWorkerBacksOffOnFailure(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		attempts int
		backoff  []time.Duration
		want     time.Duration
	}{
		{"first retry", 0, []time.Duration{time.Second, time.Minute}, time.Second},
		{"schedule exhausted", 5, []time.Duration{time.Second, time.Minute}, time.Minute},
		{"no schedule", 0, nil, 5 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &fakeQueue{pending: []*EventDocument{doc("e1", tc.attempts)}}
			w := &Worker{Queue: q, Producer: &fakeProducer{err: errors.New("broker down")}, Backoff: tc.backoff, now: func() time.Time { return now }}
			if err := w.drain(context.Background()); err != nil {
				t.Fatal(err)
			}
			if len(q.sent) != 0 || !q.failed["e1"].Equal(now.Add(tc.want)) {
				t.Fatalf("sent = %v, failed = %v", q.sent, q.failed)
			}
		})
	}
}

func TestWorkerRequiresDependencies(t *testing.T) {
	if err := (&Worker{}).Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("err = %v", err)
	}
}
