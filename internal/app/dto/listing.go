package dto

import (
	"bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/shared/page"
)

type ListingImage struct {
	URL       string `json:"url"`
	Principal bool   `json:"principal"`
}

type Listing struct {
	ID            string         `json:"id"`
	HostID        string         `json:"host_id,omitempty"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	City          string         `json:"city"`
	Address       string         `json:"address,omitempty"`
	Lat           float64        `json:"lat"`
	Lon           float64        `json:"lon"`
	NightlyPrice  MoneyDTO       `json:"nightly_price"`
	Capacity      int            `json:"capacity"`
	Services      []string       `json:"services"`
	Images        []ListingImage `json:"images"`
	MainImage     string         `json:"main_image,omitempty"`
	State         string         `json:"state"`
	AverageRating float64        `json:"average_rating"`
}

type ListingPage = page.Page[Listing]

// MapListing renders services by display label.
func MapListing(a listings.Accommodation) Listing {
	services := make([]string, 0, len(a.Services))
	for _, s := range a.Services {
		services = append(services, s.Label())
	}
	images := make([]ListingImage, 0, len(a.Images))
	for _, img := range a.Images {
		images = append(images, ListingImage{URL: img.URL, Principal: img.Principal})
	}
	return Listing{
		ID:            string(a.ID),
		HostID:        string(a.Host),
		Title:         a.Title,
		Description:   a.Description,
		City:          a.Location.City,
		Address:       a.Location.Address,
		Lat:           a.Location.Lat,
		Lon:           a.Location.Lon,
		NightlyPrice:  MapMoney(a.NightlyPrice),
		Capacity:      a.Capacity,
		Services:      services,
		Images:        images,
		MainImage:     a.MainImage(),
		State:         string(a.State),
		AverageRating: a.AverageRating,
	}
}

func MapListingPage(p page.Page[listings.Accommodation]) ListingPage {
	return page.Map(p, MapListing)
}
