package dto

import (
	"bookingengine/internal/domain/availability"
)

type Occupancy struct {
	AccommodationID string                     `json:"accommodation_id"`
	Month           string                     `json:"month"`
	OccupiedDates   []string                   `json:"occupied_dates"`
	Days            []availability.CalendarDay `json:"days"`
}

func MapOccupancy(accommodationID, month string, occupied availability.OccupiedSet, grid []availability.CalendarDay) Occupancy {
	if grid == nil {
		grid = []availability.CalendarDay{}
	}
	return Occupancy{
		AccommodationID: accommodationID,
		Month:           month,
		OccupiedDates:   occupied.Sorted(),
		Days:            grid,
	}
}
