package bookings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bookingengine/internal/app/dto"
	"bookingengine/internal/app/enrich"
	handlersupport "bookingengine/internal/app/handlers/support"
	"bookingengine/internal/app/ports"
	"bookingengine/internal/app/queries"
	domainbooking "bookingengine/internal/domain/booking"
)

const ListGuestBookingsKey = "guest.bookings.list"

type ListGuestBookingsQuery struct {
	GuestID  string
	Filter   domainbooking.Filter
	Page     int
	PageSize int
}

func (q ListGuestBookingsQuery) Key() string { return ListGuestBookingsKey }

func (q ListGuestBookingsQuery) Validate() error {
	if strings.TrimSpace(q.GuestID) == "" {
		return errors.New("guest id is required")
	}
	return nil
}

// ListGuestBookingsHandler bulk-fetches a guest's history, filters and pages it
// in memory, then enriches only the bookings on the returned page.
type ListGuestBookingsHandler struct {
	Bookings  ports.BookingSource
	Enricher  *enrich.Enricher
	Logger    *slog.Logger
	BatchSize int
	Now       func() time.Time
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (dto.BookingPage, error) {
	if err := q.Validate(); err != nil {
		return dto.BookingPage{}, err
	}
	guestID := strings.TrimSpace(q.GuestID)

	all, err := handlersupport.GuestHistory(ctx, h.Bookings, guestID, q.Filter.Status, h.BatchSize)
	if err != nil {
		return dto.BookingPage{}, err
	}

	result := domainbooking.Apply(domainbooking.NormalizeAll(all), q.Filter, q.Page, q.PageSize)
	result.Items = h.Enricher.EnrichAll(ctx, result.Items)

	if h.Logger != nil {
		h.Logger.Debug("guest bookings listed", "guest_id", guestID, "fetched", len(all), "total", result.Total, "page", result.Page)
	}
	return dto.MapBookingPage(result, handlersupport.Now(h.Now)), nil
}

var _ queries.Handler[ListGuestBookingsQuery, dto.BookingPage] = (*ListGuestBookingsHandler)(nil)
