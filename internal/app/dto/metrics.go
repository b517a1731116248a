package dto

import (
	"math"

	"bookingengine/internal/domain/metrics"
	"bookingengine/internal/domain/shared/daterange"
)

type MonthMetrics struct {
	Month   string   `json:"month"`
	Count   int      `json:"count"`
	Revenue MoneyDTO `json:"revenue"`
}

type Window struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type Metrics struct {
	TotalBookings    int            `json:"total_bookings"`
	TotalRevenue     MoneyDTO       `json:"total_revenue"`
	TotalNights      int            `json:"total_nights"`
	AverageRating    float64        `json:"average_rating"`
	AverageOccupancy float64        `json:"average_occupancy"`
	ByMonth          []MonthMetrics `json:"by_month"`
}

type AccommodationMetrics struct {
	AccommodationID string  `json:"accommodation_id"`
	Title           string  `json:"title,omitempty"`
	Window          Window  `json:"window"`
	Metrics         Metrics `json:"metrics"`
}

type HostMetrics struct {
	HostID         string                 `json:"host_id"`
	Window         Window                 `json:"window"`
	Metrics        Metrics                `json:"metrics"`
	Accommodations []AccommodationMetrics `json:"accommodations"`
}

func MapWindow(w metrics.Window) Window {
	return Window{From: daterange.DayKey(w.From), To: daterange.DayKey(w.To)}
}

// MapMetrics orders buckets by month and rounds percentages to two decimals.
func MapMetrics(m metrics.Metrics) Metrics {
	months := m.Months()
	out := Metrics{
		TotalBookings:    m.TotalBookings,
		TotalRevenue:     MapMoney(m.TotalRevenue),
		TotalNights:      m.TotalNights,
		AverageRating:    round2(m.AverageRating),
		AverageOccupancy: round2(m.AverageOccupancy),
		ByMonth:          make([]MonthMetrics, 0, len(months)),
	}
	for _, b := range months {
		out.ByMonth = append(out.ByMonth, MonthMetrics{Month: b.Month, Count: b.Count, Revenue: MapMoney(b.Revenue)})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
