package booking

import (
	"errors"
	"time"

	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/money"
)

var (
	ErrInvalidGuests = errors.New("booking: guests count must be positive")
	ErrMissingID     = errors.New("booking: id required")
)

// CancellationNotice is how long before check-in a guest may still cancel.
const CancellationNotice = 48 * time.Hour

type BookingID string

type AccommodationID string

// AccommodationSummary is the slice of an accommodation shown next to a booking.
type AccommodationSummary struct {
	Title        string
	City         string
	NightlyPrice money.Money
	MainImage    string
}

type GuestSummary struct {
	Name  string
	Email string
}

// Booking is a read-only projection of a reservation. Transformations return
// copies; Accommodation and Guest are optional denormalized snapshots.
type Booking struct {
	ID              BookingID
	AccommodationID AccommodationID
	GuestID         string
	Range           daterange.DateRange
	Guests          int
	Status          Status
	CreatedAt       time.Time
	Accommodation   *AccommodationSummary
	Guest           *GuestSummary
}

type CreateParams struct {
	ID              BookingID
	AccommodationID AccommodationID
	GuestID         string
	Range           daterange.DateRange
	Guests          int
	Status          Status
	CreatedAt       time.Time
}

func New(params CreateParams) (Booking, error) {
	if params.ID == "" {
		return Booking{}, ErrMissingID
	}
	if params.Guests <= 0 {
		return Booking{}, ErrInvalidGuests
	}
	if err := params.Range.Validate(); err != nil {
		return Booking{}, err
	}
	status := params.Status
	if status == "" {
		status = StatusPending
	}
	return Booking{
		ID:              params.ID,
		AccommodationID: params.AccommodationID,
		GuestID:         params.GuestID,
		Range:           params.Range,
		Guests:          params.Guests,
		Status:          status,
		CreatedAt:       params.CreatedAt,
	}, nil
}

func (b Booking) Nights() int {
	return b.Range.Nights()
}

// WithStatus returns a copy carrying status.
func (b Booking) WithStatus(status Status) Booking {
	b.Status = status
	return b
}

// WithAccommodation returns a copy carrying a copy of summary (nil clears it).
func (b Booking) WithAccommodation(summary *AccommodationSummary) Booking {
	if summary == nil {
		b.Accommodation = nil
		return b
	}
	s := *summary
	b.Accommodation = &s
	return b
}

// Total is nights times the denormalized nightly price, zero without a summary.
func Total(b Booking) money.Money {
	if b.Accommodation == nil {
		return money.Zero("")
	}
	nights := b.Nights()
	if nights < 0 {
		nights = 0
	}
	return b.Accommodation.NightlyPrice.Multiply(int64(nights))
}

// CanCancel reports whether a guest may still cancel at now: the booking must be
// pending or confirmed and check-in at least CancellationNotice away.
func CanCancel(b Booking, now time.Time) bool {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return false
	}
	checkIn := time.Date(b.Range.CheckIn.Year(), b.Range.CheckIn.Month(), b.Range.CheckIn.Day(), CheckInHour, 0, 0, 0, b.Range.CheckIn.Location())
	return checkIn.Sub(now) >= CancellationNotice
}

// Fixed check-in/check-out convention applied when bookings are sent upstream.
const (
	CheckInHour  = 14
	CheckOutHour = 12
)
