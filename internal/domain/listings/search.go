package listings

import (
	"strings"
	"time"

	"bookingengine/internal/domain/shared/daterange"
)

// SearchFilter describes catalog filters applied in memory after a bulk fetch.
// Zero fields are ignored.
type SearchFilter struct {
	City          string
	PriceMinCents int64
	PriceMaxCents int64
	Services      []Service
	CheckIn       time.Time
	CheckOut      time.Time
	OnlyActive    bool
}

// Normalized returns a sanitized copy of f.
func (f SearchFilter) Normalized() SearchFilter {
	out := f
	out.City = strings.ToLower(strings.TrimSpace(out.City))
	if out.PriceMinCents < 0 {
		out.PriceMinCents = 0
	}
	if out.PriceMaxCents < 0 || (out.PriceMaxCents > 0 && out.PriceMaxCents < out.PriceMinCents) {
		out.PriceMaxCents = 0
	}
	services := make([]string, 0, len(out.Services))
	for _, s := range out.Services {
		services = append(services, string(s))
	}
	out.Services = ParseServices(services)
	if !out.CheckIn.IsZero() && !out.CheckOut.IsZero() && !out.CheckOut.After(out.CheckIn) {
		out.CheckOut = time.Time{}
	}
	return out
}

// Stay returns the requested dates when both are set.
func (f SearchFilter) Stay() (daterange.DateRange, bool) {
	if f.CheckIn.IsZero() || f.CheckOut.IsZero() {
		return daterange.DateRange{}, false
	}
	dr, err := daterange.New(f.CheckIn, f.CheckOut)
	if err != nil {
		return daterange.DateRange{}, false
	}
	return dr, true
}

// Match checks the accommodation-level clauses: city substring, price bounds,
// every requested service, and state. Date availability needs bookings and is
// checked by the caller. f is expected to be normalized.
func (f SearchFilter) Match(a Accommodation) bool {
	if f.OnlyActive && !a.Active() {
		return false
	}
	if f.City != "" && !strings.Contains(strings.ToLower(a.Location.City), f.City) {
		return false
	}
	if f.PriceMinCents > 0 && a.NightlyPrice.Amount < f.PriceMinCents {
		return false
	}
	if f.PriceMaxCents > 0 && a.NightlyPrice.Amount > f.PriceMaxCents {
		return false
	}
	for _, s := range f.Services {
		if !a.HasService(s) {
			return false
		}
	}
	return true
}
