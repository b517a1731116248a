package booking

import (
	"errors"
	"strings"
	"time"

	"bookingengine/internal/domain/shared/daterange"
)

var (
	ErrPastCheckIn           = errors.New("booking: check-in is in the past")
	ErrGuestRequired         = errors.New("booking: guest id required")
	ErrAccommodationRequired = errors.New("booking: accommodation id required")
)

// Request is a reservation the guest asks for. It becomes a Booking once the
// upstream API accepts it.
type Request struct {
	AccommodationID AccommodationID
	GuestID         string
	Range           daterange.DateRange
	Guests          int
}

// Validate checks the request against today. Check-in today is allowed.
func (r Request) Validate(now time.Time) error {
	if strings.TrimSpace(string(r.AccommodationID)) == "" {
		return ErrAccommodationRequired
	}
	if strings.TrimSpace(r.GuestID) == "" {
		return ErrGuestRequired
	}
	if r.Guests <= 0 {
		return ErrInvalidGuests
	}
	if err := r.Range.Validate(); err != nil {
		return err
	}
	if !daterange.OnOrAfter(r.Range.CheckIn, now) {
		return ErrPastCheckIn
	}
	return nil
}

// CheckInAt is the moment the stay starts under the fixed check-in convention.
func (r Request) CheckInAt() time.Time {
	return atHour(r.Range.CheckIn, CheckInHour)
}

// CheckOutAt is the moment the stay ends under the fixed check-out convention.
func (r Request) CheckOutAt() time.Time {
	return atHour(r.Range.CheckOut, CheckOutHour)
}

func atHour(t time.Time, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, t.Location())
}
