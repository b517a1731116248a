package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/shared/page"
)

const (
	catalogPageSize = 100
	maxCatalogPages = 50
)

func (c *Client) HostAccommodations(ctx context.Context, host listings.HostID) ([]listings.Accommodation, error) {
	data, err := c.get(ctx, "/hosts/"+escape(string(host))+"/accommodations", nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeAccommodationList(data)
	if err != nil {
		return nil, err
	}
	out := make([]listings.Accommodation, 0, len(records))
	for _, rec := range records {
		acc := rec.toAccommodation(c.Currency)
		if acc.Host == "" {
			acc.Host = host
		}
		out = append(out, acc)
	}
	return out, nil
}

// Accommodations walks the public catalog page by page. A bare list answer
// is taken as the whole catalog.
func (c *Client) Accommodations(ctx context.Context) ([]listings.Accommodation, error) {
	var out []listings.Accommodation
	for index := 0; index < maxCatalogPages; index++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(index))
		query.Set("size", strconv.Itoa(catalogPageSize))
		data, err := c.get(ctx, "/accommodations", query)
		if err != nil {
			return nil, err
		}
		src, err := page.Decode[accommodationRecord](data)
		if err != nil {
			return nil, fmt.Errorf("remote: catalog: %w", err)
		}
		var records []accommodationRecord
		last := true
		switch v := src.(type) {
		case page.List[accommodationRecord]:
			records = v
		case page.Envelope[accommodationRecord]:
			current := page.Normalize[accommodationRecord](v, index+1, catalogPageSize)
			records = v.Content
			last = len(v.Content) == 0 || index+1 >= current.TotalPages
		}
		for _, rec := range records {
			out = append(out, rec.toAccommodation(c.Currency))
		}
		if last {
			break
		}
	}
	return out, nil
}

func (c *Client) accommodation(ctx context.Context, id booking.AccommodationID) (listings.Accommodation, error) {
	data, err := c.get(ctx, "/accommodations/"+escape(string(id)), nil)
	if err != nil {
		return listings.Accommodation{}, err
	}
	var rec accommodationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return listings.Accommodation{}, fmt.Errorf("remote: decode accommodation %s: %w", id, err)
	}
	acc := rec.toAccommodation(c.Currency)
	if acc.ID == "" {
		acc.ID = id
	}
	return acc, nil
}

func (c *Client) Summary(ctx context.Context, id booking.AccommodationID) (booking.AccommodationSummary, error) {
	acc, err := c.accommodation(ctx, id)
	if err != nil {
		return booking.AccommodationSummary{}, err
	}
	return acc.Summary(), nil
}

// AverageRating reads the rating the API keeps on the accommodation record.
func (c *Client) AverageRating(ctx context.Context, id booking.AccommodationID) (float64, error) {
	acc, err := c.accommodation(ctx, id)
	if err != nil {
		return 0, err
	}
	return acc.AverageRating, nil
}

var (
	_ ports.HostCatalog         = (*Client)(nil)
	_ ports.Catalog             = (*Client)(nil)
	_ ports.AccommodationLookup = (*Client)(nil)
	_ ports.RatingSource        = (*Client)(nil)
)
