package metrics

import (
	"time"

	"bookingengine/internal/domain/listings"
)

const EventComputed = "metrics.computed"

// Computed is published after a host dashboard has been aggregated.
type Computed struct {
	Host    listings.HostID
	Window  Window
	Metrics Metrics
	At      time.Time
}

func (e Computed) EventName() string     { return EventComputed }
func (e Computed) AggregateID() string   { return string(e.Host) }
func (e Computed) OccurredAt() time.Time { return e.At }
