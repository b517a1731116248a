package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/money"
)

const remoteDateTime = "2006-01-02T15:04:05"

// flexString reads ids the API sends either as numbers or as strings.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("remote: id %s: %w", data, err)
	}
	*s = flexString(n.String())
	return nil
}

// flexFloat reads numbers that sometimes arrive quoted. Fields are pointers
// so an absent key can fall through to its alternative spelling.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("remote: number %q: %w", raw, err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

func firstFloat(values ...*flexFloat) (float64, bool) {
	for _, v := range values {
		if v != nil {
			return float64(*v), true
		}
	}
	return 0, false
}

func firstString(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// stringList accepts a single value where a list is expected.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var raw []flexString
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(stringList, 0, len(raw))
		for _, v := range raw {
			out = append(out, string(v))
		}
		*l = out
		return nil
	}
	var one flexString
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = stringList{string(one)}
	return nil
}

type guestRecord struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type bookingRecord struct {
	ID                flexString   `json:"id"`
	IDReservation     flexString   `json:"idReservation"`
	IDAccommodation   flexString   `json:"idAccommodation"`
	IDGuest           flexString   `json:"idGuest"`
	DateCheckin       string       `json:"dateCheckin"`
	DateCheckout      string       `json:"dateCheckout"`
	QuantityPeople    flexFloat    `json:"quantityPeople"`
	StatusReservation string       `json:"statusReservation"`
	DateCreation      string       `json:"dateCreation"`
	Guest             *guestRecord `json:"guest"`
}

// toBooking keeps the calendar day of both date-times and maps the status
// into the domain vocabulary. Unparseable dates are an error.
func (r bookingRecord) toBooking() (booking.Booking, error) {
	id := firstString(string(r.ID), string(r.IDReservation))
	checkIn, ok := daterange.Parse(dayPart(r.DateCheckin))
	if !ok {
		return booking.Booking{}, fmt.Errorf("remote: booking %s: bad check-in %q", id, r.DateCheckin)
	}
	checkOut, ok := daterange.Parse(dayPart(r.DateCheckout))
	if !ok {
		return booking.Booking{}, fmt.Errorf("remote: booking %s: bad check-out %q", id, r.DateCheckout)
	}
	b := booking.Booking{
		ID:              booking.BookingID(id),
		AccommodationID: booking.AccommodationID(r.IDAccommodation),
		GuestID:         string(r.IDGuest),
		Range:           daterange.DateRange{CheckIn: checkIn, CheckOut: checkOut},
		Guests:          int(r.QuantityPeople),
		Status:          booking.ToDomain(booking.RemoteStatus(strings.ToUpper(strings.TrimSpace(r.StatusReservation)))),
		CreatedAt:       parseInstant(r.DateCreation),
	}
	if r.Guest != nil && (r.Guest.Name != "" || r.Guest.Email != "") {
		b.Guest = &booking.GuestSummary{Name: r.Guest.Name, Email: r.Guest.Email}
	}
	return b, nil
}

func dayPart(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, 'T'); i >= 0 {
		return value[:i]
	}
	return value
}

// parseInstant also accepts the fractional seconds some upstream
// serializers emit without a zone.
func parseInstant(value string) time.Time {
	if t, ok := daterange.Parse(value); ok {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", strings.TrimSpace(value), time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// bookingRequest is the body accepted by POST /reservations.
type bookingRequest struct {
	DateCheckin     string `json:"dateCheckin"`
	DateCheckout    string `json:"dateCheckout"`
	IDAccommodation any    `json:"idAccommodation"`
	IDGuest         any    `json:"idGuest"`
	QuantityPeople  int    `json:"quantityPeople"`
}

func newBookingRequest(req booking.Request) bookingRequest {
	return bookingRequest{
		DateCheckin:     req.CheckInAt().Format(remoteDateTime),
		DateCheckout:    req.CheckOutAt().Format(remoteDateTime),
		IDAccommodation: numericID(string(req.AccommodationID)),
		IDGuest:         numericID(req.GuestID),
		QuantityPeople:  req.Guests,
	}
}

// numericID sends ids as JSON numbers when they look like one.
func numericID(id string) any {
	id = strings.TrimSpace(id)
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

type imageRecord struct {
	URL         string `json:"url"`
	Principal   *bool  `json:"principal"`
	IsPrincipal *bool  `json:"isPrincipal"`
}

type accommodationRecord struct {
	ID                   flexString    `json:"id"`
	Qualification        string        `json:"qualification"`
	Title                string        `json:"title"`
	Name                 string        `json:"name"`
	Description          string        `json:"description"`
	City                 string        `json:"city"`
	Address              string        `json:"address"`
	AddressAccommodation string        `json:"address_accommodation"`
	Latitude             *flexFloat    `json:"latitude"`
	Lat                  *flexFloat    `json:"lat"`
	Longitude            *flexFloat    `json:"longitude"`
	Lng                  *flexFloat    `json:"lng"`
	PriceNight           *flexFloat    `json:"priceNight"`
	PriceNightSnake      *flexFloat    `json:"price_night"`
	Currency             string        `json:"currency"`
	MaximumCapacity      *flexFloat    `json:"maximumCapacity"`
	MaximumCapacityLong  *flexFloat    `json:"maximux_capacity_accommodation"`
	Services             stringList    `json:"services"`
	TypeServicesEnum     stringList    `json:"typeServicesEnum"`
	Images               []imageRecord `json:"images"`
	ImagesAccommodation  []imageRecord `json:"imagesAccommodation"`
	StatusAccommodation  string        `json:"statusAccommodation"`
	IDHost               flexString    `json:"idHost"`
	AverageRating        *flexFloat    `json:"averageRating"`
	RatingPromedio       *flexFloat    `json:"ratingPromedio"`
}

func (r accommodationRecord) toAccommodation(currency string) listings.Accommodation {
	services := r.Services
	if services == nil {
		services = r.TypeServicesEnum
	}
	rawImages := r.Images
	if rawImages == nil {
		rawImages = r.ImagesAccommodation
	}
	images := make([]listings.Image, 0, len(rawImages))
	for i, img := range rawImages {
		principal := i == 0
		switch {
		case img.Principal != nil:
			principal = *img.Principal
		case img.IsPrincipal != nil:
			principal = *img.IsPrincipal
		}
		images = append(images, listings.Image{URL: img.URL, Principal: principal})
	}

	lat, _ := firstFloat(r.Latitude, r.Lat)
	lon, _ := firstFloat(r.Longitude, r.Lng)
	price, _ := firstFloat(r.PriceNight, r.PriceNightSnake)
	capacity := 1
	if v, ok := firstFloat(r.MaximumCapacity, r.MaximumCapacityLong); ok {
		capacity = int(v)
	}
	rating, _ := firstFloat(r.AverageRating, r.RatingPromedio)
	if r.Currency != "" {
		currency = r.Currency
	}

	return listings.Accommodation{
		ID:          booking.AccommodationID(r.ID),
		Host:        listings.HostID(r.IDHost),
		Title:       firstString(r.Qualification, r.Title, r.Name),
		Description: r.Description,
		Location: listings.Location{
			Address: firstString(r.Address, r.AddressAccommodation),
			City:    r.City,
			Lat:     lat,
			Lon:     lon,
		},
		NightlyPrice:  money.FromMajor(price, currency),
		Capacity:      capacity,
		Services:      listings.ParseServices(services),
		Images:        images,
		State:         accommodationState(r.StatusAccommodation),
		AverageRating: rating,
	}
}

// accommodationState treats anything but an explicit ACTIVE as deleted.
func accommodationState(status string) listings.State {
	if strings.EqualFold(strings.TrimSpace(status), "ACTIVE") {
		return listings.StateActive
	}
	return listings.StateDeleted
}

// decodeAccommodationList reads the three list shapes the host endpoint has
// used: {"content": [...]}, {"items": [...]} and a bare array.
func decodeAccommodationList(data []byte) ([]accommodationRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []accommodationRecord
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("remote: decode accommodations: %w", err)
		}
		return list, nil
	}
	var wrapped struct {
		Content []accommodationRecord `json:"content"`
		Items   []accommodationRecord `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("remote: decode accommodations: %w", err)
	}
	if wrapped.Content != nil {
		return wrapped.Content, nil
	}
	return wrapped.Items, nil
}
