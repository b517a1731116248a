package listings

import (
	"context"
	"errors"
	"log/slog"

	"bookingengine/internal/app/dto"
	handlersupport "bookingengine/internal/app/handlers/support"
	"bookingengine/internal/app/ports"
	"bookingengine/internal/app/queries"
	domainavailability "bookingengine/internal/domain/availability"
	domainbooking "bookingengine/internal/domain/booking"
	domainlistings "bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/shared/page"
)

const SearchKey = "listings.search"

var ErrCatalogMissing = errors.New("listings: catalog not configured")

type SearchQuery struct {
	Filter   domainlistings.SearchFilter
	Page     int
	PageSize int
}

func (q SearchQuery) Key() string { return SearchKey }

func (q SearchQuery) Validate() error {
	f := q.Filter
	if !f.CheckIn.IsZero() && !f.CheckOut.IsZero() && !f.CheckOut.After(f.CheckIn) {
		return errors.New("check-out must be after check-in")
	}
	return nil
}

// SearchHandler loads the catalog once and filters and pages it in memory. When
// the filter carries a stay and Bookings is set, accommodations whose occupied
// days touch the stay are dropped.
type SearchHandler struct {
	Catalog     ports.Catalog
	Bookings    ports.BookingSource
	Logger      *slog.Logger
	Concurrency int
}

func (h *SearchHandler) Handle(ctx context.Context, q SearchQuery) (dto.ListingPage, error) {
	if err := q.Validate(); err != nil {
		return dto.ListingPage{}, err
	}
	if h.Catalog == nil {
		return dto.ListingPage{}, ErrCatalogMissing
	}
	filter := q.Filter.Normalized()

	all, err := h.Catalog.Accommodations(ctx)
	if err != nil {
		return dto.ListingPage{}, err
	}
	candidates := make([]domainlistings.Accommodation, 0, len(all))
	for _, a := range all {
		if filter.Match(a) {
			candidates = append(candidates, a)
		}
	}

	if stay, ok := filter.Stay(); ok && h.Bookings != nil {
		fetched, err := handlersupport.FanOut(ctx, h.Bookings, candidates, h.Concurrency, h.Logger)
		if err != nil {
			return dto.ListingPage{}, err
		}
		free := candidates[:0:0]
		for _, f := range fetched {
			// Unknown availability keeps the listing; the booking flow re-checks.
			if f.Err == nil {
				occupied := domainavailability.OccupiedDates(domainavailability.Holding(domainbooking.NormalizeAll(f.Bookings)))
				if occupied.Blocks(stay) {
					continue
				}
			}
			free = append(free, f.Accommodation)
		}
		candidates = free
	}

	result := page.Paginate(candidates, nil, q.Page, q.PageSize)

	if h.Logger != nil {
		h.Logger.Debug("listings searched", "catalog", len(all), "matched", result.Total, "page", result.Page)
	}
	return dto.MapListingPage(result), nil
}

var _ queries.Handler[SearchQuery, dto.ListingPage] = (*SearchHandler)(nil)
