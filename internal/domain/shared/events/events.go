package events

import "time"

// DomainEvent is anything published to or consumed from the broker.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent carries the envelope fields for events decoded off the wire before
// their concrete type is known.
type BaseEvent struct {
	Name      string    `json:"name"`
	Aggregate string    `json:"aggregate_id"`
	Time      time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventName() string {
	return e.Name
}

func (e BaseEvent) AggregateID() string {
	return e.Aggregate
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Time
}
