// Package ports lists the collaborators the query handlers depend on. Adapters
// live under internal/infra.
package ports

import (
	"context"
	"errors"

	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/metrics"
	"bookingengine/internal/domain/shared/events"
	"bookingengine/internal/domain/shared/page"
)

var ErrNotFound = errors.New("ports: not found")

// GuestPage selects one page of a guest's bookings. An empty Status sends no
// status filter upstream.
type GuestPage struct {
	GuestID string
	Status  booking.Status
	Page    int
	Size    int
}

type BookingSource interface {
	ByAccommodation(ctx context.Context, id booking.AccommodationID) ([]booking.Booking, error)
	ByGuest(ctx context.Context, q GuestPage) (page.Page[booking.Booking], error)
}

type HostCatalog interface {
	HostAccommodations(ctx context.Context, host listings.HostID) ([]listings.Accommodation, error)
}

// Catalog serves the public accommodation list used by search.
type Catalog interface {
	Accommodations(ctx context.Context) ([]listings.Accommodation, error)
}

type AccommodationLookup interface {
	Summary(ctx context.Context, id booking.AccommodationID) (booking.AccommodationSummary, error)
}

type ImageLookup interface {
	MainImage(ctx context.Context, id booking.AccommodationID) (string, error)
}

type RatingSource interface {
	AverageRating(ctx context.Context, id booking.AccommodationID) (float64, error)
}

// MetricsPublisher announces computed host dashboards.
type MetricsPublisher interface {
	PublishMetrics(ctx context.Context, event metrics.Computed) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev events.DomainEvent) error
}

// BookingWriter forwards accepted reservation requests upstream.
type BookingWriter interface {
	CreateBooking(ctx context.Context, req booking.Request) (booking.Booking, error)
}

// ReportSource serves host dashboards precomputed by the upstream API.
type ReportSource interface {
	HostReport(ctx context.Context, host listings.HostID, window metrics.Window) (metrics.Metrics, error)
}
