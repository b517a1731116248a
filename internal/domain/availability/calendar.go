package availability

import (
	"sort"
	"time"

	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/daterange"
)

// OccupiedSet holds ISO days taken by at least one booking. The booking form
// overlay and the host calendar both read from the same set.
type OccupiedSet map[string]struct{}

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Day      int    `json:"day"`
	Date     string `json:"date"`
	Occupied bool   `json:"occupied"`
	Past     bool   `json:"past"`
}

// OccupiedDates is the union of every booking's day footprint, check-out day included.
// Callers decide which bookings count; see Holding.
func OccupiedDates(bookings []booking.Booking) OccupiedSet {
	set := make(OccupiedSet)
	for _, b := range bookings {
		for _, d := range b.Range.Days() {
			set[d] = struct{}{}
		}
	}
	return set
}

// Holding keeps the bookings whose status still blocks dates.
func Holding(bookings []booking.Booking) []booking.Booking {
	out := make([]booking.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status.Blocking() {
			out = append(out, b)
		}
	}
	return out
}

func (s OccupiedSet) Contains(day string) bool {
	_, ok := s[day]
	return ok
}

func (s OccupiedSet) Len() int {
	return len(s)
}

// Sorted returns the days in chronological order.
func (s OccupiedSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Blocks reports whether any day of r is already occupied.
func (s OccupiedSet) Blocks(r daterange.DateRange) bool {
	for _, d := range r.Days() {
		if s.Contains(d) {
			return true
		}
	}
	return false
}

// MonthGrid lays out every day of month's calendar month. Past is relative to
// today's calendar day; today itself is not past.
func MonthGrid(month time.Time, occupied OccupiedSet, today time.Time) []CalendarDay {
	if month.IsZero() {
		return []CalendarDay{}
	}
	y, m, _ := month.Date()
	first := time.Date(y, m, 1, 12, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	todayKey := daterange.DayKey(today)

	grid := make([]CalendarDay, 0, last)
	for d := 1; d <= last; d++ {
		key := first.AddDate(0, 0, d-1).Format(daterange.DayLayout)
		grid = append(grid, CalendarDay{
			Day:      d,
			Date:     key,
			Occupied: occupied.Contains(key),
			Past:     todayKey != "" && key < todayKey,
		})
	}
	return grid
}
