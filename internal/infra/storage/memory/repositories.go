// Package memory keeps accommodations and bookings in process, for local runs
// and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookingengine/internal/app/middleware"
	"bookingengine/internal/app/ports"
	domainbooking "bookingengine/internal/domain/booking"
	domainlistings "bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/shared/page"
)

type AccommodationRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.AccommodationID]domainlistings.Accommodation
	order []domainbooking.AccommodationID
}

func NewAccommodationRepository() *AccommodationRepository {
	return &AccommodationRepository{items: make(map[domainbooking.AccommodationID]domainlistings.Accommodation)}
}

// Save stores or replaces an accommodation, keeping insertion order.
func (r *AccommodationRepository) Save(_ context.Context, acc domainlistings.Accommodation) error {
	if err := acc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[acc.ID]; !ok {
		r.order = append(r.order, acc.ID)
	}
	r.items[acc.ID] = acc
	return nil
}

func (r *AccommodationRepository) HostAccommodations(_ context.Context, host domainlistings.HostID) ([]domainlistings.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainlistings.Accommodation, 0)
	for _, id := range r.order {
		if acc := r.items[id]; acc.Host == host {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (r *AccommodationRepository) Accommodations(context.Context) ([]domainlistings.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainlistings.Accommodation, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *AccommodationRepository) Summary(_ context.Context, id domainbooking.AccommodationID) (domainbooking.AccommodationSummary, error) {
	acc, err := r.byID(id)
	if err != nil {
		return domainbooking.AccommodationSummary{}, err
	}
	return acc.Summary(), nil
}

func (r *AccommodationRepository) AverageRating(_ context.Context, id domainbooking.AccommodationID) (float64, error) {
	acc, err := r.byID(id)
	if err != nil {
		return 0, err
	}
	return acc.AverageRating, nil
}

func (r *AccommodationRepository) byID(id domainbooking.AccommodationID) (domainlistings.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.items[id]
	if !ok {
		return domainlistings.Accommodation{}, fmt.Errorf("%w: accommodation %s", ports.ErrNotFound, id)
	}
	return acc, nil
}

type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]domainbooking.Booking
	now   func() time.Time
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]domainbooking.Booking), now: time.Now}
}

// Save stores the booking as given.
func (r *BookingRepository) Save(_ context.Context, b domainbooking.Booking) error {
	if b.ID == "" {
		return domainbooking.ErrMissingID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = b
	return nil
}

func (r *BookingRepository) ByAccommodation(_ context.Context, id domainbooking.AccommodationID) ([]domainbooking.Booking, error) {
	return r.collect(func(b domainbooking.Booking) bool { return b.AccommodationID == id }), nil
}

func (r *BookingRepository) ByGuest(_ context.Context, q ports.GuestPage) (page.Page[domainbooking.Booking], error) {
	items := r.collect(func(b domainbooking.Booking) bool {
		return b.GuestID == q.GuestID && (q.Status == "" || domainbooking.Normalize(b).Status == q.Status)
	})
	return page.Normalize[domainbooking.Booking](page.List[domainbooking.Booking](items), q.Page, q.Size), nil
}

func (r *BookingRepository) CreateBooking(ctx context.Context, req domainbooking.Request) (domainbooking.Booking, error) {
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:              domainbooking.BookingID(uuid.NewString()),
		AccommodationID: req.AccommodationID,
		GuestID:         req.GuestID,
		Range:           req.Range,
		Guests:          req.Guests,
		CreatedAt:       r.now().UTC(),
	})
	if err != nil {
		return domainbooking.Booking{}, err
	}
	return b, r.Save(ctx, b)
}

// collect returns matches newest first, ties broken by id.
func (r *BookingRepository) collect(match func(domainbooking.Booking) bool) []domainbooking.Booking {
	r.mu.RLock()
	out := make([]domainbooking.Booking, 0)
	for _, b := range r.items {
		if match(b) {
			out = append(out, b)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// IdempotencyStore keeps command results for the life of the process.
type IdempotencyStore struct {
	mu    sync.Mutex
	items map[string]middleware.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{items: make(map[string]middleware.IdempotencyRecord)}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

var (
	_ ports.HostCatalog           = (*AccommodationRepository)(nil)
	_ ports.Catalog               = (*AccommodationRepository)(nil)
	_ ports.AccommodationLookup   = (*AccommodationRepository)(nil)
	_ ports.RatingSource          = (*AccommodationRepository)(nil)
	_ ports.BookingSource         = (*BookingRepository)(nil)
	_ ports.BookingWriter         = (*BookingRepository)(nil)
	_ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
)
