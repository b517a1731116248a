package booking

import (
	"time"

	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/page"
)

// Filter holds independently optional clauses. Zero values match everything.
type Filter struct {
	Status Status
	// From bounds check-in from below (inclusive, calendar day).
	From time.Time
	// To bounds check-out from above (inclusive, calendar day).
	To time.Time
}

func (f Filter) Match(b Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && !daterange.OnOrAfter(b.Range.CheckIn, f.From) {
		return false
	}
	if !f.To.IsZero() && !daterange.OnOrBefore(b.Range.CheckOut, f.To) {
		return false
	}
	return true
}

func (f Filter) IsZero() bool {
	return f.Status == "" && f.From.IsZero() && f.To.IsZero()
}

// Apply filters a bulk-fetched collection and returns one page of it, with the
// page index clamped to the filtered result.
func Apply(all []Booking, f Filter, pageIndex, pageSize int) page.Page[Booking] {
	return page.Paginate(all, f.Match, pageIndex, pageSize)
}
