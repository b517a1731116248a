package availability

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
	domainavailability "bookingengine/internal/domain/availability"
	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/daterange"
)

const GetOccupancyKey = "availability.occupancy"

// GetOccupancyQuery asks for the occupied days of one accommodation and the
// grid of Month. A zero Month means the current month.
type GetOccupancyQuery struct {
	AccommodationID string
	Month           time.Time
}

func (q GetOccupancyQuery) Key() string { return GetOccupancyKey }

func (q GetOccupancyQuery) Validate() error {
	if strings.TrimSpace(q.AccommodationID) == "" {
		return errors.New("accommodation id is required")
	}
	return nil
}

type GetOccupancyHandler struct {
	Bookings ports.BookingSource
	Logger   *slog.Logger
	Now      func() time.Time
}

func (h *GetOccupancyHandler) Handle(ctx context.Context, q GetOccupancyQuery) (dto.Occupancy, error) {
	if err := q.Validate(); err != nil {
		return dto.Occupancy{}, err
	}
	if h.Bookings == nil {
		return dto.Occupancy{}, handlersupport.ErrSourceMissing
	}
	id := domainbooking.AccommodationID(strings.TrimSpace(q.AccommodationID))

	items, err := h.Bookings.ByAccommodation(ctx, id)
	if err != nil {
		return dto.Occupancy{}, err
	}
	occupied := domainavailability.OccupiedDates(domainavailability.Holding(domainbooking.NormalizeAll(items)))

	now := handlersupport.Now(h.Now)
	month := q.Month
	if month.IsZero() {
		month = now
	}
	grid := domainavailability.MonthGrid(month, occupied, now)

	if h.Logger != nil {
		h.Logger.Debug("occupancy computed", "accommodation_id", id, "bookings", len(items), "occupied_days", occupied.Len())
	}
	return dto.MapOccupancy(string(id), daterange.MonthKey(month), occupied, grid), nil
}

var _ queries.Handler[GetOccupancyQuery, dto.Occupancy] = (*GetOccupancyHandler)(nil)
