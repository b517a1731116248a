package bookings

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"bookingengine/internal/app/dto"
	handlersupport "bookingengine/internal/app/handlers/support"
	"bookingengine/internal/app/ports"
	"bookingengine/internal/app/queries"
	domainbooking "bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/listings"
)

const ListHostBookingsKey = "host.bookings.list"

var ErrCatalogMissing = errors.New("bookings: host catalog not configured")

type ListHostBookingsQuery struct {
	HostID   string
	Filter   domainbooking.Filter
	Page     int
	PageSize int
}

func (q ListHostBookingsQuery) Key() string { return ListHostBookingsKey }

func (q ListHostBookingsQuery) Validate() error {
	if strings.TrimSpace(q.HostID) == "" {
		return errors.New("host id is required")
	}
	return nil
}

// ListHostBookingsHandler collects the bookings of every accommodation a host
// owns. Each booking carries its accommodation snapshot from the host catalog,
// so no per-booking lookups are made.
type ListHostBookingsHandler struct {
	Catalog     ports.HostCatalog
	Bookings    ports.BookingSource
	Logger      *slog.Logger
	Concurrency int
	Now         func() time.Time
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.BookingPage, error) {
	if err := q.Validate(); err != nil {
		return dto.BookingPage{}, err
	}
	if h.Catalog == nil {
		return dto.BookingPage{}, ErrCatalogMissing
	}
	hostID := listings.HostID(strings.TrimSpace(q.HostID))

	accs, err := h.Catalog.HostAccommodations(ctx, hostID)
	if err != nil {
		return dto.BookingPage{}, err
	}
	fetched, err := handlersupport.FanOut(ctx, h.Bookings, accs, h.Concurrency, h.Logger)
	if err != nil {
		return dto.BookingPage{}, err
	}

	items := make([]domainbooking.Booking, 0)
	failed := 0
	for _, f := range fetched {
		if f.Err != nil {
			failed++
			continue
		}
		summary := f.Accommodation.Summary()
		for _, b := range f.Bookings {
			items = append(items, domainbooking.Normalize(b).WithAccommodation(&summary))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].Range.CheckIn.After(items[j].Range.CheckIn)
	})

	result := domainbooking.Apply(items, q.Filter, q.Page, q.PageSize)

	if h.Logger != nil {
		h.Logger.Debug("host bookings listed", "host_id", hostID, "accommodations", len(accs), "failed", failed, "count", result.Total, "status", q.Filter.Status)
	}
	return dto.MapBookingPage(result, handlersupport.Now(h.Now)), nil
}

var _ queries.Handler[ListHostBookingsQuery, dto.BookingPage] = (*ListHostBookingsHandler)(nil)
