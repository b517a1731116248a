package metrics

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bookingengine/internal/app/dto"
	handlersupport "bookingengine/internal/app/handlers/support"
	"bookingengine/internal/app/ports"
	"bookingengine/internal/app/queries"
	"bookingengine/internal/domain/listings"
	domainmetrics "bookingengine/internal/domain/metrics"
)

const (
	GetHostMetricsKey = "metrics.host"

	// DefaultWindowMonths is how far back the host dashboard looks when no
	// bound is given.
	DefaultWindowMonths = 3
)

var ErrCatalogMissing = errors.New("metrics: host catalog not configured")

type GetHostMetricsQuery struct {
	HostID string
	From   time.Time
	To     time.Time
}

func (q GetHostMetricsQuery) Key() string { return GetHostMetricsKey }

func (q GetHostMetricsQuery) Validate() error {
	if strings.TrimSpace(q.HostID) == "" {
		return errors.New("host id is required")
	}
	return validateWindow(q.From, q.To)
}

// GetHostMetricsHandler aggregates each of a host's accommodations and merges
// them into one dashboard. Publisher is optional.
type GetHostMetricsHandler struct {
	Catalog     ports.HostCatalog
	Bookings    ports.BookingSource
	Ratings     ports.RatingSource
	Publisher   ports.MetricsPublisher
	Logger      *slog.Logger
	Concurrency int
	Now         func() time.Time
}

func (h *GetHostMetricsHandler) Handle(ctx context.Context, q GetHostMetricsQuery) (dto.HostMetrics, error) {
	if err := q.Validate(); err != nil {
		return dto.HostMetrics{}, err
	}
	if h.Catalog == nil {
		return dto.HostMetrics{}, ErrCatalogMissing
	}
	hostID := listings.HostID(strings.TrimSpace(q.HostID))
	now := handlersupport.Now(h.Now)
	window := resolveWindow(q.From, q.To, now)

	accs, err := h.Catalog.HostAccommodations(ctx, hostID)
	if err != nil {
		return dto.HostMetrics{}, err
	}
	fetched, err := handlersupport.FanOut(ctx, h.Bookings, accs, h.Concurrency, h.Logger)
	if err != nil {
		return dto.HostMetrics{}, err
	}

	ratings := h.ratings(ctx, accs)

	parts := make([]domainmetrics.Metrics, 0, len(fetched))
	perAcc := make([]dto.AccommodationMetrics, 0, len(fetched))
	var ratingSum float64
	rated := 0
	for i, f := range fetched {
		if f.Err != nil {
			continue
		}
		m := domainmetrics.Aggregate(holding(f.Bookings), f.Accommodation.NightlyPrice, window, ratings[i])
		parts = append(parts, m)
		perAcc = append(perAcc, dto.AccommodationMetrics{
			AccommodationID: string(f.Accommodation.ID),
			Title:           f.Accommodation.Title,
			Window:          dto.MapWindow(window),
			Metrics:         dto.MapMetrics(m),
		})
		if ratings[i] > 0 {
			ratingSum += ratings[i]
			rated++
		}
	}

	hostRating := 0.0
	if rated > 0 {
		hostRating = ratingSum / float64(rated)
	}
	combined, err := domainmetrics.Combine(window, hostRating, parts...)
	if err != nil {
		return dto.HostMetrics{}, err
	}

	h.publish(ctx, domainmetrics.Computed{Host: hostID, Window: window, Metrics: combined, At: now})

	if h.Logger != nil {
		h.Logger.Info("host metrics computed", "host_id", hostID, "accommodations", len(accs), "bookings", combined.TotalBookings)
	}
	return dto.HostMetrics{
		HostID:         string(hostID),
		Window:         dto.MapWindow(window),
		Metrics:        dto.MapMetrics(combined),
		Accommodations: perAcc,
	}, nil
}

// ratings prefers the live rating source and falls back to the rating carried
// by the catalog record.
func (h *GetHostMetricsHandler) ratings(ctx context.Context, accs []listings.Accommodation) []float64 {
	out := make([]float64, len(accs))
	for i, acc := range accs {
		out[i] = acc.AverageRating
	}
	if h.Ratings == nil {
		return out
	}
	var g errgroup.Group
	if h.Concurrency > 0 {
		g.SetLimit(h.Concurrency)
	}
	for i, acc := range accs {
		g.Go(func() error {
			r, err := h.Ratings.AverageRating(ctx, acc.ID)
			if err != nil {
				if h.Logger != nil {
					h.Logger.Warn("rating unavailable", "accommodation_id", acc.ID, "error", err)
				}
				return nil
			}
			out[i] = r
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (h *GetHostMetricsHandler) publish(ctx context.Context, event domainmetrics.Computed) {
	if h.Publisher == nil {
		return
	}
	if err := h.Publisher.PublishMetrics(ctx, event); err != nil && h.Logger != nil {
		h.Logger.Warn("metrics snapshot not published", "host_id", event.Host, "error", err)
	}
}

// resolveWindow fills in the dashboard default: when neither bound is given
// the window is the last DefaultWindowMonths months up to today.
func resolveWindow(from, to, now time.Time) domainmetrics.Window {
	if from.IsZero() && to.IsZero() {
		return domainmetrics.Window{From: now.AddDate(0, -DefaultWindowMonths, 0), To: now}
	}
	return domainmetrics.Window{From: from, To: to}
}

var _ queries.Handler[GetHostMetricsQuery, dto.HostMetrics] = (*GetHostMetricsHandler)(nil)
