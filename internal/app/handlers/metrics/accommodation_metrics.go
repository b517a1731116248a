package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookingengine/internal/app/dto"
	handlersupport "bookingengine/internal/app/handlers/support"
	"bookingengine/internal/app/ports"
	"bookingengine/internal/app/queries"
	domainavailability "bookingengine/internal/domain/availability"
	domainbooking "bookingengine/internal/domain/booking"
	domainmetrics "bookingengine/internal/domain/metrics"
)

const GetAccommodationMetricsKey = "metrics.accommodation"

var ErrLookupMissing = errors.New("metrics: accommodation lookup not configured")

// GetAccommodationMetricsQuery aggregates one accommodation. Either bound of
// the window may be zero.
type GetAccommodationMetricsQuery struct {
	AccommodationID string
	From            time.Time
	To              time.Time
}

func (q GetAccommodationMetricsQuery) Key() string { return GetAccommodationMetricsKey }

func (q GetAccommodationMetricsQuery) Validate() error {
	if strings.TrimSpace(q.AccommodationID) == "" {
		return errors.New("accommodation id is required")
	}
	return validateWindow(q.From, q.To)
}

type GetAccommodationMetricsHandler struct {
	Bookings       ports.BookingSource
	Accommodations ports.AccommodationLookup
	Ratings        ports.RatingSource
	Logger         *slog.Logger
}

func (h *GetAccommodationMetricsHandler) Handle(ctx context.Context, q GetAccommodationMetricsQuery) (dto.AccommodationMetrics, error) {
	if err := q.Validate(); err != nil {
		return dto.AccommodationMetrics{}, err
	}
	if h.Bookings == nil {
		return dto.AccommodationMetrics{}, handlersupport.ErrSourceMissing
	}
	if h.Accommodations == nil {
		return dto.AccommodationMetrics{}, ErrLookupMissing
	}
	id := domainbooking.AccommodationID(strings.TrimSpace(q.AccommodationID))
	window := domainmetrics.Window{From: q.From, To: q.To}

	summary, err := h.Accommodations.Summary(ctx, id)
	if err != nil {
		return dto.AccommodationMetrics{}, fmt.Errorf("accommodation %s: %w", id, err)
	}
	items, err := h.Bookings.ByAccommodation(ctx, id)
	if err != nil {
		return dto.AccommodationMetrics{}, err
	}
	rating := averageRating(ctx, h.Ratings, id, h.Logger)

	m := domainmetrics.Aggregate(holding(items), summary.NightlyPrice, window, rating)

	if h.Logger != nil {
		h.Logger.Debug("accommodation metrics computed", "accommodation_id", id, "bookings", m.TotalBookings, "occupancy", m.AverageOccupancy)
	}
	return dto.AccommodationMetrics{
		AccommodationID: string(id),
		Title:           summary.Title,
		Window:          dto.MapWindow(window),
		Metrics:         dto.MapMetrics(m),
	}, nil
}

// averageRating degrades to 0 when no rating source is wired or it fails.
func averageRating(ctx context.Context, src ports.RatingSource, id domainbooking.AccommodationID, logger *slog.Logger) float64 {
	if src == nil {
		return 0
	}
	r, err := src.AverageRating(ctx, id)
	if err != nil {
		if logger != nil {
			logger.Warn("rating unavailable", "accommodation_id", id, "error", err)
		}
		return 0
	}
	return r
}

// holding drops cancelled stays; only bookings that hold their dates count
// towards revenue and occupancy.
func holding(items []domainbooking.Booking) []domainbooking.Booking {
	return domainavailability.Holding(domainbooking.NormalizeAll(items))
}

func validateWindow(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return errors.New("window end precedes its start")
	}
	return nil
}

var _ queries.Handler[GetAccommodationMetricsQuery, dto.AccommodationMetrics] = (*GetAccommodationMetricsHandler)(nil)
