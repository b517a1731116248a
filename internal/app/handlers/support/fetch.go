package support

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/listings"
)

const (
	// DefaultBatchSize is the page size used to bulk-fetch a guest's history.
	DefaultBatchSize = 200
	// maxGuestPages guards against an upstream that keeps reporting more pages.
	maxGuestPages = 50
)

var ErrSourceMissing = errors.New("handlers: booking source not configured")

// Now returns clock() or time.Now when clock is nil.
func Now(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now()
	}
	return clock()
}

// GuestHistory pulls every page of a guest's bookings.
func GuestHistory(ctx context.Context, src ports.BookingSource, guestID string, status booking.Status, batch int) ([]booking.Booking, error) {
	if src == nil {
		return nil, ErrSourceMissing
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	var all []booking.Booking
	for p := 1; p <= maxGuestPages; p++ {
		res, err := src.ByGuest(ctx, ports.GuestPage{GuestID: guestID, Status: status, Page: p, Size: batch})
		if err != nil {
			return nil, fmt.Errorf("guest %s page %d: %w", guestID, p, err)
		}
		// An upstream that ignores the page parameter keeps answering the first page.
		if res.Page != p {
			break
		}
		all = append(all, res.Items...)
		if res.Page >= res.TotalPages || len(res.Items) == 0 {
			break
		}
	}
	return all, nil
}

// AccommodationBookings is the booking list of one accommodation, or the error
// that prevented fetching it.
type AccommodationBookings struct {
	Accommodation listings.Accommodation
	Bookings      []booking.Booking
	Err           error
}

// FanOut fetches the bookings of every accommodation concurrently. Results keep
// the order of accs. A failed fetch is reported in its slot and logged, the
// rest still complete. limit <= 0 means unbounded.
func FanOut(ctx context.Context, src ports.BookingSource, accs []listings.Accommodation, limit int, logger *slog.Logger) ([]AccommodationBookings, error) {
	if src == nil {
		return nil, ErrSourceMissing
	}
	out := make([]AccommodationBookings, len(accs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, acc := range accs {
		g.Go(func() error {
			items, err := src.ByAccommodation(ctx, acc.ID)
			out[i] = AccommodationBookings{Accommodation: acc, Bookings: items, Err: err}
			if err != nil && logger != nil {
				logger.Warn("accommodation bookings unavailable", "accommodation_id", acc.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
