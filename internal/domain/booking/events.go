package booking

import "time"

const EventRequested = "booking.requested"

// Requested is emitted once the upstream API has accepted a reservation.
type Requested struct {
	BookingID       BookingID       `json:"booking_id"`
	AccommodationID AccommodationID `json:"accommodation_id"`
	GuestID         string          `json:"guest_id"`
	CheckIn         string          `json:"check_in"`
	CheckOut        string          `json:"check_out"`
	Guests          int             `json:"guests"`
	At              time.Time       `json:"at"`
}

func (e Requested) EventName() string     { return EventRequested }
func (e Requested) AggregateID() string   { return string(e.AccommodationID) }
func (e Requested) OccurredAt() time.Time { return e.At }
