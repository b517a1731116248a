package listings

import (
	"time"

	"bookingengine/internal/domain/booking"
)

const (
	EventAccommodationUpdated = "accommodation.updated"
	EventAccommodationDeleted = "accommodation.deleted"
)

// AccommodationUpdated is emitted by the catalog owner whenever title, price,
// images or state change. Consumers drop any cached summary for the id.
type AccommodationUpdated struct {
	AccommodationID booking.AccommodationID `json:"accommodation_id"`
	Host            HostID                  `json:"host_id,omitempty"`
	At              time.Time               `json:"at"`
}

func (e AccommodationUpdated) EventName() string     { return EventAccommodationUpdated }
func (e AccommodationUpdated) AggregateID() string   { return string(e.AccommodationID) }
func (e AccommodationUpdated) OccurredAt() time.Time { return e.At }

type AccommodationDeleted struct {
	AccommodationID booking.AccommodationID `json:"accommodation_id"`
	At              time.Time               `json:"at"`
}

func (e AccommodationDeleted) EventName() string     { return EventAccommodationDeleted }
func (e AccommodationDeleted) AggregateID() string   { return string(e.AccommodationID) }
func (e AccommodationDeleted) OccurredAt() time.Time { return e.At }
