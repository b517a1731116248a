package metrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"bookingengine/internal/domain/shared/money"
)

// ErrUnknownReport is returned when a remote metrics payload matches none of the
// known layouts.
var ErrUnknownReport = errors.New("metrics: unrecognised report payload")

// unknownMonth labels records that carry no usable month.
const unknownMonth = "N/A"

// number accepts both JSON numbers and numeric strings.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = number(v)
	return nil
}

type localizedReport struct {
	TotalReservas     *number `json:"totalReservas"`
	IngresosTotales   number  `json:"ingresosTotales"`
	RatingPromedio    number  `json:"ratingPromedio"`
	OcupacionPromedio number  `json:"ocupacionPromedio"`
	ReservasPorMes    []struct {
		Mes      string `json:"mes"`
		Reservas number `json:"reservas"`
		Ingresos number `json:"ingresos"`
	} `json:"reservasPorMes"`
}

type englishReport struct {
	TotalBookings   *number `json:"totalBookings"`
	TotalRevenue    number  `json:"totalRevenue"`
	AverageRating   number  `json:"averageRating"`
	Occupancy       number  `json:"occupancy"`
	BookingsByMonth []struct {
		MonthLabel string  `json:"monthLabel"`
		Month      string  `json:"month"`
		Count      *number `json:"count"`
		Bookings   number  `json:"bookings"`
		Revenue    number  `json:"revenue"`
	} `json:"bookingsByMonth"`
}

type reportRecord struct {
	MonthLabel string  `json:"monthLabel"`
	Month      string  `json:"month"`
	CheckIn    string  `json:"checkIn"`
	Total      *number `json:"total"`
	Amount     number  `json:"amount"`
}

func (r reportRecord) month() string {
	switch {
	case r.MonthLabel != "":
		return r.MonthLabel
	case r.Month != "":
		return r.Month
	case len(r.CheckIn) >= 7:
		return r.CheckIn[:7]
	default:
		return unknownMonth
	}
}

func (r reportRecord) revenue() float64 {
	if r.Total != nil {
		return float64(*r.Total)
	}
	return float64(r.Amount)
}

type recordsReport struct {
	Data          []reportRecord `json:"data"`
	AverageRating number         `json:"averageRating"`
	Occupancy     number         `json:"occupancy"`
}

// DecodeReport normalises the metrics payloads served by the remote API. Four
// layouts are recognised: Spanish summary keys, English summary keys, a
// {"data": [...]} record list and a bare record list. Amounts are in major
// units of currency.
func DecodeReport(data []byte, currency string) (Metrics, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return empty(currency, 0, 0), nil
	}

	if data[0] == '[' {
		var records []reportRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return Metrics{}, err
		}
		return fromRecords(records, currency, 0, 0), nil
	}
	if data[0] != '{' {
		return Metrics{}, ErrUnknownReport
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Metrics{}, err
	}

	switch {
	case has(keys, "totalReservas", "reservasPorMes", "ingresosTotales"):
		var r localizedReport
		if err := json.Unmarshal(data, &r); err != nil {
			return Metrics{}, err
		}
		out := empty(currency, float64(r.RatingPromedio), float64(r.OcupacionPromedio))
		out.TotalRevenue = money.FromMajor(float64(r.IngresosTotales), currency)
		for _, m := range r.ReservasPorMes {
			out.add(m.Mes, int(m.Reservas), money.FromMajor(float64(m.Ingresos), currency))
		}
		out.TotalBookings = countOr(r.TotalReservas, out)
		return out, nil

	case has(keys, "totalBookings", "bookingsByMonth", "totalRevenue"):
		var r englishReport
		if err := json.Unmarshal(data, &r); err != nil {
			return Metrics{}, err
		}
		out := empty(currency, float64(r.AverageRating), float64(r.Occupancy))
		out.TotalRevenue = money.FromMajor(float64(r.TotalRevenue), currency)
		for _, m := range r.BookingsByMonth {
			label := m.MonthLabel
			if label == "" {
				label = m.Month
			}
			count := int(m.Bookings)
			if m.Count != nil {
				count = int(*m.Count)
			}
			out.add(label, count, money.FromMajor(float64(m.Revenue), currency))
		}
		out.TotalBookings = countOr(r.TotalBookings, out)
		return out, nil

	case has(keys, "data"):
		var r recordsReport
		if err := json.Unmarshal(data, &r); err != nil {
			return Metrics{}, err
		}
		return fromRecords(r.Data, currency, float64(r.AverageRating), float64(r.Occupancy)), nil
	}
	return Metrics{}, ErrUnknownReport
}

func has(keys map[string]json.RawMessage, names ...string) bool {
	for _, n := range names {
		if _, ok := keys[n]; ok {
			return true
		}
	}
	return false
}

func empty(currency string, rating, occupancy float64) Metrics {
	return Metrics{
		TotalRevenue:     money.Zero(currency),
		AverageRating:    rating,
		AverageOccupancy: occupancy,
		ByMonth:          make(map[string]MonthBucket),
	}
}

// countOr prefers an explicit total and falls back to the bucket counts.
func countOr(total *number, m Metrics) int {
	if total != nil {
		return int(*total)
	}
	n := 0
	for _, b := range m.ByMonth {
		n += b.Count
	}
	return n
}

func (m *Metrics) add(month string, count int, revenue money.Money) {
	if month == "" {
		month = unknownMonth
	}
	b, ok := m.ByMonth[month]
	if !ok {
		b = MonthBucket{Month: month, Revenue: money.Zero(m.TotalRevenue.Currency)}
	}
	b.Count += count
	b.Revenue.Amount += revenue.Amount
	m.ByMonth[month] = b
}

func fromRecords(records []reportRecord, currency string, rating, occupancy float64) Metrics {
	out := empty(currency, rating, occupancy)
	for _, r := range records {
		revenue := money.FromMajor(r.revenue(), currency)
		out.TotalBookings++
		out.TotalRevenue.Amount += revenue.Amount
		out.add(r.month(), 1, revenue)
	}
	return out
}
