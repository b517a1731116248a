// Package enrich attaches accommodation snapshots and main images to bookings.
//
// Enrichment is best effort. A failing lookup keeps whatever the booking
// already carried and is logged at Warn; it never fails the caller.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/booking"
)

type Enricher struct {
	Accommodations ports.AccommodationLookup
	Images         ports.ImageLookup
	Logger         *slog.Logger
	// Limit caps concurrent bookings in EnrichAll; zero means unbounded.
	Limit int
}

type result[T any] struct {
	value T
	err   error
}

// Enrich runs both lookups concurrently and merges them. Identity, dates,
// guests and status are never touched.
func (e *Enricher) Enrich(ctx context.Context, b booking.Booking) booking.Booking {
	if e == nil || b.AccommodationID == "" {
		return b
	}

	var (
		wg      sync.WaitGroup
		summary result[booking.AccommodationSummary]
		image   result[string]
	)
	if e.Accommodations != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summary.value, summary.err = e.Accommodations.Summary(ctx, b.AccommodationID)
		}()
	} else {
		summary.err = ports.ErrNotFound
	}
	if e.Images != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			image.value, image.err = e.Images.MainImage(ctx, b.AccommodationID)
		}()
	} else {
		image.err = ports.ErrNotFound
	}
	wg.Wait()

	var merged *booking.AccommodationSummary
	switch {
	case summary.err == nil:
		s := summary.value
		merged = &s
	case b.Accommodation != nil:
		s := *b.Accommodation
		merged = &s
		e.warn("accommodation lookup failed, keeping snapshot", b, summary.err)
	default:
		e.warn("accommodation lookup failed", b, summary.err)
	}

	if merged == nil {
		return b
	}
	if image.err == nil && strings.TrimSpace(image.value) != "" {
		merged.MainImage = image.value
	} else if image.err != nil && e.Images != nil {
		e.warn("main image lookup failed", b, image.err)
	}
	return b.WithAccommodation(merged)
}

// EnrichAll enriches every booking and returns them in input order. The input
// slice is not modified.
func (e *Enricher) EnrichAll(ctx context.Context, bookings []booking.Booking) []booking.Booking {
	out := make([]booking.Booking, len(bookings))
	if e == nil {
		copy(out, bookings)
		return out
	}
	var g errgroup.Group
	if e.Limit > 0 {
		g.SetLimit(e.Limit)
	}
	for i, b := range bookings {
		g.Go(func() error {
			out[i] = e.Enrich(ctx, b)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Enricher) warn(msg string, b booking.Booking, err error) {
	if e.Logger == nil {
		return
	}
	e.Logger.Warn(msg, "booking_id", b.ID, "accommodation_id", b.AccommodationID, "error", err)
}
