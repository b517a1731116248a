package reviews

import (
	"time"

	"bookingengine/internal/domain/booking"
)

const EventReviewSubmitted = "review.submitted"

type ReviewID string

// ReviewSubmitted changes an accommodation's average rating, so cached ratings
// for it are stale once this is seen.
type ReviewSubmitted struct {
	ReviewID        ReviewID                `json:"review_id"`
	BookingID       booking.BookingID       `json:"booking_id"`
	AccommodationID booking.AccommodationID `json:"accommodation_id"`
	Rating          int                     `json:"rating"`
	At              time.Time               `json:"at"`
}

func (e ReviewSubmitted) EventName() string     { return EventReviewSubmitted }
func (e ReviewSubmitted) AggregateID() string   { return string(e.AccommodationID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
