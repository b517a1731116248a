// Package metrics aggregates bookings into host-facing revenue, occupancy and
// per-month figures.
//
// A stay is attributed entirely to the month of its check-in, even when it runs
// into the next month. Revenue and nights are not split across months.
package metrics

import (
	"sort"
	"time"

	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/money"
)

// Window bounds a metrics query. A zero From or To means the bound is absent.
type Window struct {
	From time.Time
	To   time.Time
}

// Bounded reports whether both ends are set; only then is occupancy computed.
func (w Window) Bounded() bool {
	return !w.From.IsZero() && !w.To.IsZero()
}

// Includes applies whichever bounds are present: check-in on or after From,
// check-out on or before To.
func (w Window) Includes(b booking.Booking) bool {
	if !w.From.IsZero() && !daterange.OnOrAfter(b.Range.CheckIn, w.From) {
		return false
	}
	if !w.To.IsZero() && !daterange.OnOrBefore(b.Range.CheckOut, w.To) {
		return false
	}
	return true
}

// Days is the inclusive span of a bounded window, 0 otherwise.
func (w Window) Days() int {
	if !w.Bounded() {
		return 0
	}
	return daterange.SpanDays(w.From, w.To)
}

type MonthBucket struct {
	Month   string
	Count   int
	Revenue money.Money
}

type Metrics struct {
	TotalBookings    int
	TotalRevenue     money.Money
	TotalNights      int
	AverageRating    float64
	AverageOccupancy float64
	// ByMonth has no defined order; use Months for a chronological view.
	ByMonth map[string]MonthBucket
}

// Months returns the buckets sorted by month key.
func (m Metrics) Months() []MonthBucket {
	out := make([]MonthBucket, 0, len(m.ByMonth))
	for _, b := range m.ByMonth {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Aggregate computes metrics for the bookings of one accommodation priced at
// nightlyPrice. rating is carried through unchanged.
func Aggregate(bookings []booking.Booking, nightlyPrice money.Money, window Window, rating float64) Metrics {
	currency := nightlyPrice.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	out := Metrics{
		TotalRevenue:  money.Zero(currency),
		AverageRating: rating,
		ByMonth:       make(map[string]MonthBucket),
	}

	for _, b := range bookings {
		if !window.Includes(b) {
			continue
		}
		nights := max(0, b.Nights())
		revenue := money.Money{Amount: nightlyPrice.Amount * int64(nights), Currency: out.TotalRevenue.Currency}

		out.TotalBookings++
		out.TotalNights += nights
		out.TotalRevenue.Amount += revenue.Amount

		key := daterange.MonthKey(b.Range.CheckIn)
		bucket, ok := out.ByMonth[key]
		if !ok {
			bucket = MonthBucket{Month: key, Revenue: money.Zero(currency)}
		}
		bucket.Count++
		bucket.Revenue.Amount += revenue.Amount
		out.ByMonth[key] = bucket
	}

	if span := window.Days(); span > 0 {
		out.AverageOccupancy = float64(out.TotalNights) / float64(span) * 100
	}
	return out
}

// Combine merges per-accommodation metrics into one host view. Counts, revenue,
// nights and buckets are summed; occupancy is the mean over parts when window is
// bounded. rating replaces the parts' ratings. All parts must share a currency.
func Combine(window Window, rating float64, parts ...Metrics) (Metrics, error) {
	out := Metrics{
		TotalRevenue:  money.Zero(""),
		AverageRating: rating,
		ByMonth:       make(map[string]MonthBucket),
	}
	if len(parts) > 0 && parts[0].TotalRevenue.Currency != "" {
		out.TotalRevenue = money.Zero(parts[0].TotalRevenue.Currency)
	}

	occupancy := 0.0
	for _, part := range parts {
		revenue := part.TotalRevenue
		if revenue.Currency == "" {
			revenue.Currency = out.TotalRevenue.Currency
		}
		total, err := out.TotalRevenue.Add(revenue)
		if err != nil {
			return Metrics{}, err
		}
		out.TotalRevenue = total
		out.TotalBookings += part.TotalBookings
		out.TotalNights += part.TotalNights
		occupancy += part.AverageOccupancy

		for key, b := range part.ByMonth {
			merged, ok := out.ByMonth[key]
			if !ok {
				merged = MonthBucket{Month: key, Revenue: money.Zero(out.TotalRevenue.Currency)}
			}
			merged.Count += b.Count
			merged.Revenue.Amount += b.Revenue.Amount
			out.ByMonth[key] = merged
		}
	}
	if window.Bounded() && len(parts) > 0 {
		out.AverageOccupancy = occupancy / float64(len(parts))
	}
	return out, nil
}
