package daterange

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	// DayLayout is the ISO calendar day format used for keys and occupied sets.
	DayLayout = "2006-01-02"
	// MonthLayout is the ISO year-month format used for metric buckets.
	MonthLayout = "2006-01"

	day = 24 * time.Hour
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

// DateRange is a stay between two calendar dates. Check-in and check-out are both
// occupied days; the stay lasts Nights() nights.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn, CheckOut: checkOut}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Between parses both ends and validates the range.
func Between(checkIn, checkOut string) (DateRange, error) {
	in, ok := Parse(checkIn)
	if !ok {
		return DateRange{}, ErrInvalidRange
	}
	out, ok := Parse(checkOut)
	if !ok {
		return DateRange{}, ErrInvalidRange
	}
	return New(in, out)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if Nights(dr.CheckIn, dr.CheckOut) <= 0 {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return Nights(dr.CheckIn, dr.CheckOut)
}

// Days lists every calendar day of the stay, check-out included.
func (dr DateRange) Days() []string {
	return Days(dr.CheckIn, dr.CheckOut)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return civil(dr.CheckIn).Before(civil(other.CheckOut)) && civil(other.CheckIn).Before(civil(dr.CheckOut))
}

func (dr DateRange) Contains(other DateRange) bool {
	return !civil(other.CheckIn).Before(civil(dr.CheckIn)) && !civil(other.CheckOut).After(civil(dr.CheckOut))
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	c := civil(t)
	return !c.Before(civil(dr.CheckIn)) && !c.After(civil(dr.CheckOut))
}

// Parse reads an ISO date or date-time and keeps the calendar day as written.
// Date-only values and zone-less date-times are interpreted in time.Local.
func Parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	for _, layout := range []string{DayLayout, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Noon moves t to 12:00 of its own calendar day in its own location.
func Noon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location())
}

// Nights counts calendar nights between two dates. Both ends are taken at noon of
// their calendar day and measured on a fixed 24h grid, so a daylight-saving
// transition between them never adds or removes a night.
func Nights(checkIn, checkOut time.Time) int {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0
	}
	diff := civil(checkOut).Sub(civil(checkIn))
	return int(math.Ceil(float64(diff) / float64(day)))
}

// NightsBetween is Nights over ISO strings; unparseable input yields 0.
func NightsBetween(checkIn, checkOut string) int {
	in, ok := Parse(checkIn)
	if !ok {
		return 0
	}
	out, ok := Parse(checkOut)
	if !ok {
		return 0
	}
	return Nights(in, out)
}

// Days enumerates ISO days from check-in through check-out, both included.
func Days(checkIn, checkOut time.Time) []string {
	nights := Nights(checkIn, checkOut)
	if nights < 0 || checkIn.IsZero() || checkOut.IsZero() {
		return []string{}
	}
	start := civil(checkIn)
	out := make([]string, 0, nights+1)
	for i := 0; i <= nights; i++ {
		out = append(out, start.AddDate(0, 0, i).Format(DayLayout))
	}
	return out
}

// DaysBetween is Days over ISO strings; unparseable input yields an empty slice.
func DaysBetween(checkIn, checkOut string) []string {
	in, ok := Parse(checkIn)
	if !ok {
		return []string{}
	}
	out, ok := Parse(checkOut)
	if !ok {
		return []string{}
	}
	return Days(in, out)
}

// SpanDays is the inclusive number of calendar days covered by [from, to].
func SpanDays(from, to time.Time) int {
	if from.IsZero() || to.IsZero() {
		return 0
	}
	n := Nights(from, to)
	if n < 0 {
		return 0
	}
	return n + 1
}

func MonthKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(MonthLayout)
}

func MonthKeyOf(value string) string {
	t, ok := Parse(value)
	if !ok {
		return ""
	}
	return MonthKey(t)
}

// DayKey formats the calendar day of t.
func DayKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DayLayout)
}

// Format renders value with layout, or "" when value is not a date.
func Format(value, layout string) string {
	t, ok := Parse(value)
	if !ok {
		return ""
	}
	return t.Format(layout)
}

// OnOrAfter compares calendar days only.
func OnOrAfter(t, bound time.Time) bool {
	return !civil(t).Before(civil(bound))
}

// OnOrBefore compares calendar days only.
func OnOrBefore(t, bound time.Time) bool {
	return !civil(t).After(civil(bound))
}

// civil projects the calendar day of t onto UTC noon.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
