package dto

import (
	"time"

	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/money"
	"bookingengine/internal/domain/shared/page"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type BookingAccommodation struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	City         string   `json:"city"`
	NightlyPrice MoneyDTO `json:"nightly_price"`
	MainImage    string   `json:"main_image,omitempty"`
}

type BookingGuest struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Booking struct {
	ID            string               `json:"id"`
	Accommodation BookingAccommodation `json:"accommodation"`
	Guest         BookingGuest         `json:"guest"`
	CheckIn       string               `json:"check_in"`
	CheckOut      string               `json:"check_out"`
	Nights        int                  `json:"nights"`
	Guests        int                  `json:"guests"`
	Status        string               `json:"status"`
	Total         MoneyDTO             `json:"total"`
	CreatedAt     *time.Time           `json:"created_at,omitempty"`
	CanCancel     bool                 `json:"can_cancel"`
}

type BookingPage = page.Page[Booking]

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

// MapBooking flattens a booking; now decides can_cancel.
func MapBooking(b booking.Booking, now time.Time) Booking {
	acc := BookingAccommodation{ID: string(b.AccommodationID)}
	if b.Accommodation != nil {
		acc.Title = b.Accommodation.Title
		acc.City = b.Accommodation.City
		acc.NightlyPrice = MapMoney(b.Accommodation.NightlyPrice)
		acc.MainImage = b.Accommodation.MainImage
	}
	guest := BookingGuest{ID: b.GuestID}
	if b.Guest != nil {
		guest.Name = b.Guest.Name
		guest.Email = b.Guest.Email
	}
	out := Booking{
		ID:            string(b.ID),
		Accommodation: acc,
		Guest:         guest,
		CheckIn:       daterange.DayKey(b.Range.CheckIn),
		CheckOut:      daterange.DayKey(b.Range.CheckOut),
		Nights:        max(0, b.Nights()),
		Guests:        b.Guests,
		Status:        string(b.Status),
		Total:         MapMoney(booking.Total(b)),
		CanCancel:     booking.CanCancel(b, now),
	}
	if !b.CreatedAt.IsZero() {
		created := b.CreatedAt
		out.CreatedAt = &created
	}
	return out
}

func MapBookingPage(p page.Page[booking.Booking], now time.Time) BookingPage {
	return page.Map(p, func(b booking.Booking) Booking { return MapBooking(b, now) })
}
