package metrics

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bookingengine/internal/app/dto"
	handlersupport "bookingengine/internal/app/handlers/support"
	"bookingengine/internal/app/ports"
	"bookingengine/internal/app/queries"
	"bookingengine/internal/domain/listings"
)

const GetHostReportKey = "metrics.host.report"

var ErrReportsMissing = errors.New("metrics: report source not configured")

// GetHostReportQuery asks for the dashboard precomputed upstream rather than
// aggregating bookings locally.
type GetHostReportQuery struct {
	HostID string
	From   time.Time
	To     time.Time
}

func (q GetHostReportQuery) Key() string { return GetHostReportKey }

func (q GetHostReportQuery) Validate() error {
	if strings.TrimSpace(q.HostID) == "" {
		return errors.New("host id is required")
	}
	return validateWindow(q.From, q.To)
}

type GetHostReportHandler struct {
	Reports ports.ReportSource
	Logger  *slog.Logger
	Now     func() time.Time
}

func (h *GetHostReportHandler) Handle(ctx context.Context, q GetHostReportQuery) (dto.HostMetrics, error) {
	if err := q.Validate(); err != nil {
		return dto.HostMetrics{}, err
	}
	if h.Reports == nil {
		return dto.HostMetrics{}, ErrReportsMissing
	}
	hostID := listings.HostID(strings.TrimSpace(q.HostID))
	window := resolveWindow(q.From, q.To, handlersupport.Now(h.Now))

	m, err := h.Reports.HostReport(ctx, hostID, window)
	if err != nil {
		return dto.HostMetrics{}, err
	}

	if h.Logger != nil {
		h.Logger.Debug("host report fetched", "host_id", hostID, "bookings", m.TotalBookings)
	}
	return dto.HostMetrics{
		HostID:         string(hostID),
		Window:         dto.MapWindow(window),
		Metrics:        dto.MapMetrics(m),
		Accommodations: []dto.AccommodationMetrics{},
	}, nil
}

var _ queries.Handler[GetHostReportQuery, dto.HostMetrics] = (*GetHostReportHandler)(nil)
