package listings

import (
	"errors"
	"strings"

	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/money"
)

var (
	ErrTitleRequired = errors.New("listings: title is required")
	ErrNightlyRate   = errors.New("listings: nightly rate must be non-negative")
	ErrCapacity      = errors.New("listings: capacity must be at least 1")
)

type HostID string

type State string

const (
	StateActive  State = "ACTIVO"
	StateDeleted State = "ELIMINADO"
)

// ParseState accepts the domain label or the remote ACTIVE status. Anything
// else is treated as deleted.
func ParseState(value string) State {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "ACTIVO", "ACTIVE":
		return StateActive
	default:
		return StateDeleted
	}
}

type Image struct {
	URL       string
	Principal bool
}

type Location struct {
	Address string
	City    string
	Lat     float64
	Lon     float64
}

type Accommodation struct {
	ID            booking.AccommodationID
	Host          HostID
	Title         string
	Description   string
	Location      Location
	NightlyPrice  money.Money
	Capacity      int
	Services      []Service
	Images        []Image
	State         State
	AverageRating float64
}

func (a Accommodation) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrTitleRequired
	}
	if a.NightlyPrice.IsNegative() {
		return ErrNightlyRate
	}
	if a.Capacity < 1 {
		return ErrCapacity
	}
	return nil
}

func (a Accommodation) Active() bool {
	return a.State == StateActive
}

// MainImage returns the image flagged principal, else the first one.
func (a Accommodation) MainImage() string {
	for _, img := range a.Images {
		if img.Principal && img.URL != "" {
			return img.URL
		}
	}
	if len(a.Images) > 0 {
		return a.Images[0].URL
	}
	return ""
}

// Summary is the snapshot attached to bookings.
func (a Accommodation) Summary() booking.AccommodationSummary {
	return booking.AccommodationSummary{
		Title:        a.Title,
		City:         a.Location.City,
		NightlyPrice: a.NightlyPrice,
		MainImage:    a.MainImage(),
	}
}

func (a Accommodation) HasService(s Service) bool {
	for _, have := range a.Services {
		if have == s {
			return true
		}
	}
	return false
}
