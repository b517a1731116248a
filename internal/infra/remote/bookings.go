package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/page"
)

// ByAccommodation returns every booking of one accommodation. The endpoint
// answers with a bare list or a paged envelope; only the returned content is
// used.
func (c *Client) ByAccommodation(ctx context.Context, id booking.AccommodationID) ([]booking.Booking, error) {
	data, err := c.get(ctx, "/reservations/accommodation/"+escape(string(id)), nil)
	if err != nil {
		return nil, err
	}
	src, err := page.Decode[bookingRecord](data)
	if err != nil {
		return nil, fmt.Errorf("remote: bookings of %s: %w", id, err)
	}
	var records []bookingRecord
	switch v := src.(type) {
	case page.List[bookingRecord]:
		records = v
	case page.Envelope[bookingRecord]:
		records = v.Content
	}
	return c.toBookings(records), nil
}

// ByGuest fetches one page of a guest's bookings. The upstream page index is
// 0-based; the returned page is 1-based.
func (c *Client) ByGuest(ctx context.Context, q ports.GuestPage) (page.Page[booking.Booking], error) {
	pageIndex := max(q.Page, 1)
	size := q.Size
	if size < 1 {
		size = page.DefaultSize
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(pageIndex-1))
	query.Set("size", strconv.Itoa(size))
	if remote, ok := booking.ToRemote(q.Status); ok {
		query.Set("status", string(remote))
	}

	data, err := c.get(ctx, "/reservations/guest/"+escape(q.GuestID), query)
	if err != nil {
		return page.Page[booking.Booking]{}, err
	}
	src, err := page.Decode[bookingRecord](data)
	if err != nil {
		return page.Page[booking.Booking]{}, fmt.Errorf("remote: bookings of guest %s: %w", q.GuestID, err)
	}
	// A bare list is the whole history; Normalize windows it locally.
	raw := page.Normalize[bookingRecord](src, pageIndex, size)
	return page.Page[booking.Booking]{
		Items:      c.toBookings(raw.Items),
		Page:       raw.Page,
		PageSize:   raw.PageSize,
		Total:      raw.Total,
		TotalPages: raw.TotalPages,
	}, nil
}

// CreateBooking posts a reservation request applying the fixed check-in and
// check-out hours.
func (c *Client) CreateBooking(ctx context.Context, req booking.Request) (booking.Booking, error) {
	data, err := c.do(ctx, http.MethodPost, "/reservations", nil, newBookingRequest(req))
	if err != nil {
		return booking.Booking{}, err
	}
	var rec bookingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return booking.Booking{}, fmt.Errorf("remote: decode created booking: %w", err)
	}
	b, err := rec.toBooking()
	if err != nil {
		return booking.Booking{}, err
	}
	if b.Status == "" {
		b.Status = booking.StatusPending
	}
	return b, nil
}

// toBookings drops records whose dates cannot be read.
func (c *Client) toBookings(records []bookingRecord) []booking.Booking {
	out := make([]booking.Booking, 0, len(records))
	for _, rec := range records {
		b, err := rec.toBooking()
		if err != nil {
			if c.Logger != nil {
				c.Logger.Warn("skipping booking record", "error", err)
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

var (
	_ ports.BookingSource = (*Client)(nil)
	_ ports.BookingWriter = (*Client)(nil)
)
