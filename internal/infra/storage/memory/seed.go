package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	domainbooking "bookingengine/internal/domain/booking"
	domainlistings "bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/money"
)

type seedFile struct {
	Accommodations []seedAccommodation `json:"accommodations"`
	Bookings       []seedBooking       `json:"bookings"`
}

type seedAccommodation struct {
	ID       string   `json:"id"`
	HostID   string   `json:"hostId"`
	Title    string   `json:"title"`
	City     string   `json:"city"`
	Address  string   `json:"address"`
	Price    float64  `json:"priceNight"`
	Currency string   `json:"currency"`
	Capacity int      `json:"capacity"`
	Services []string `json:"services"`
	Images   []string `json:"images"`
	State    string   `json:"state"`
	Rating   float64  `json:"averageRating"`
}

type seedBooking struct {
	ID              string    `json:"id"`
	AccommodationID string    `json:"accommodationId"`
	GuestID         string    `json:"guestId"`
	CheckIn         string    `json:"checkIn"`
	CheckOut        string    `json:"checkOut"`
	Guests          int       `json:"guests"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// LoadSeedFile reads a JSON fixture into the repositories.
func LoadSeedFile(ctx context.Context, path string, accs *AccommodationRepository, bookings *BookingRepository) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return LoadSeed(ctx, f, accs, bookings)
}

func LoadSeed(ctx context.Context, r io.Reader, accs *AccommodationRepository, bookings *BookingRepository) error {
	var seed seedFile
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("memory: decode seed: %w", err)
	}
	for _, a := range seed.Accommodations {
		if err := accs.Save(ctx, a.toAccommodation()); err != nil {
			return fmt.Errorf("memory: accommodation %s: %w", a.ID, err)
		}
	}
	for _, b := range seed.Bookings {
		booking, err := b.toBooking()
		if err != nil {
			return fmt.Errorf("memory: booking %s: %w", b.ID, err)
		}
		if err := bookings.Save(ctx, booking); err != nil {
			return err
		}
	}
	return nil
}

func (a seedAccommodation) toAccommodation() domainlistings.Accommodation {
	images := make([]domainlistings.Image, 0, len(a.Images))
	for i, url := range a.Images {
		images = append(images, domainlistings.Image{URL: url, Principal: i == 0})
	}
	state := domainlistings.StateActive
	if a.State != "" {
		state = domainlistings.ParseState(a.State)
	}
	return domainlistings.Accommodation{
		ID:            domainbooking.AccommodationID(a.ID),
		Host:          domainlistings.HostID(a.HostID),
		Title:         a.Title,
		Location:      domainlistings.Location{Address: a.Address, City: a.City},
		NightlyPrice:  money.FromMajor(a.Price, a.Currency),
		Capacity:      max(a.Capacity, 1),
		Services:      domainlistings.ParseServices(a.Services),
		Images:        images,
		State:         state,
		AverageRating: a.Rating,
	}
}

func (b seedBooking) toBooking() (domainbooking.Booking, error) {
	dr, err := daterange.Between(b.CheckIn, b.CheckOut)
	if err != nil {
		return domainbooking.Booking{}, err
	}
	return domainbooking.New(domainbooking.CreateParams{
		ID:              domainbooking.BookingID(b.ID),
		AccommodationID: domainbooking.AccommodationID(b.AccommodationID),
		GuestID:         b.GuestID,
		Range:           dr,
		Guests:          max(b.Guests, 1),
		Status:          domainbooking.ParseStatus(b.Status),
		CreatedAt:       b.CreatedAt,
	})
}
