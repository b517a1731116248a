package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/booking"
	"bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/metrics"
	"bookingengine/internal/domain/shared/daterange"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL+"/", time.Second, 0, 0, nil)
	c.Currency = "EUR"
	return c
}

func TestByAccommodationMapsRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reservations/accommodation/42" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[
			{"id": 7, "idAccommodation": 42, "idGuest": "9", "dateCheckin": "2025-01-01T14:00:00", "dateCheckout": "2025-01-03T12:00:00", "quantityPeople": 2, "statusReservation": "PAID", "dateCreation": "2024-12-20T10:15:00.123"},
			{"id": "8", "dateCheckin": "garbage", "dateCheckout": "2025-01-03"}
		]`)
	})

	got, err := c.ByAccommodation(context.Background(), "42")
	if err != nil {
		t.Fatalf("ByAccommodation: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected unreadable record to be skipped, got %d", len(got))
	}
	b := got[0]
	if b.ID != "7" || b.AccommodationID != "42" || b.GuestID != "9" || b.Guests != 2 {
		t.Fatalf("booking = %+v", b)
	}
	if b.Status != booking.StatusConfirmed {
		t.Fatalf("status = %s", b.Status)
	}
	if daterange.DayKey(b.Range.CheckIn) != "2025-01-01" || b.Nights() != 2 {
		t.Fatalf("range = %v..%v", b.Range.CheckIn, b.Range.CheckOut)
	}
	if b.CreatedAt.IsZero() {
		t.Fatal("creation time not parsed")
	}
}

func TestByGuestSendsZeroBasedPage(t *testing.T) {
	cases := []struct {
		name       string
		status     booking.Status
		wantStatus string
	}{
		{"confirmed filter", booking.StatusConfirmed, "CONFIRMED"},
		{"no filter", "", ""},
		{"unknown filter", booking.Status("ARCHIVED"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("page") != "1" || q.Get("size") != "2" {
					t.Errorf("query = %s", r.URL.RawQuery)
				}
				if q.Get("status") != tc.wantStatus {
					t.Errorf("status = %q, want %q", q.Get("status"), tc.wantStatus)
				}
				_, _ = io.WriteString(w, `{"content": [
					{"id": 3, "idAccommodation": 1, "dateCheckin": "2025-02-01", "dateCheckout": "2025-02-02", "statusReservation": "CONFIRMED"}
				], "totalElements": 3, "totalPages": 2, "number": 1, "size": 2}`)
			})
			p, err := c.ByGuest(context.Background(), ports.GuestPage{GuestID: "g-1", Status: tc.status, Page: 2, Size: 2})
			if err != nil {
				t.Fatalf("ByGuest: %v", err)
			}
			if p.Page != 2 || p.Total != 3 || p.TotalPages != 2 || len(p.Items) != 1 {
				t.Fatalf("page = %+v", p)
			}
		})
	}
}

func TestHostAccommodationShapes(t *testing.T) {
	record := `{"id": 5, "qualification": "Casa Azul", "city": "Sevilla", "latitude": "37.38", "longitude": -5.99,
		"price_night": "80.5", "maximux_capacity_accommodation": 4, "typeServicesEnum": "WIFI",
		"imagesAccommodation": [{"url": "a.jpg"}, {"url": "b.jpg", "isPrincipal": true}],
		"statusAccommodation": "ACTIVE", "ratingPromedio": 4.5}`
	cases := []struct {
		name string
		body string
	}{
		{"content envelope", `{"content": [` + record + `]}`},
		{"items envelope", `{"items": [` + record + `]}`},
		{"bare list", `[` + record + `]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/hosts/h-1/accommodations" {
					t.Errorf("path = %s", r.URL.Path)
				}
				_, _ = io.WriteString(w, tc.body)
			})
			accs, err := c.HostAccommodations(context.Background(), "h-1")
			if err != nil {
				t.Fatalf("HostAccommodations: %v", err)
			}
			if len(accs) != 1 {
				t.Fatalf("got %d accommodations", len(accs))
			}
			a := accs[0]
			if a.ID != "5" || a.Title != "Casa Azul" || a.Host != "h-1" || a.Capacity != 4 {
				t.Fatalf("accommodation = %+v", a)
			}
			if a.NightlyPrice.Amount != 8050 || a.NightlyPrice.Currency != "EUR" {
				t.Fatalf("price = %+v", a.NightlyPrice)
			}
			if a.Location.Lat != 37.38 || a.Location.Lon != -5.99 {
				t.Fatalf("location = %+v", a.Location)
			}
			if !a.HasService(listings.ServiceWifi) || a.State != listings.StateActive || a.AverageRating != 4.5 {
				t.Fatalf("services/state/rating = %v %s %v", a.Services, a.State, a.AverageRating)
			}
			// the first image is principal by default, the second says so explicitly
			if !a.Images[0].Principal || !a.Images[1].Principal {
				t.Fatalf("images = %+v", a.Images)
			}
		})
	}
}

func TestAccommodationDefaults(t *testing.T) {
	var rec accommodationRecord
	if err := json.Unmarshal([]byte(`{"id": "x", "name": "Loft", "priceNight": 50, "statusAccommodation": "INACTIVE",
		"services": ["WIFI", "POOL"], "images": [{"url": "a.jpg", "principal": false}, {"url": "b.jpg"}]}`), &rec); err != nil {
		t.Fatal(err)
	}
	a := rec.toAccommodation("")
	if a.Title != "Loft" || a.Capacity != 1 || a.State != listings.StateDeleted {
		t.Fatalf("accommodation = %+v", a)
	}
	if len(a.Services) != 2 || a.Images[0].Principal || a.Images[1].Principal {
		t.Fatalf("services/images = %v %+v", a.Services, a.Images)
	}
	if a.NightlyPrice.Amount != 5000 || a.NightlyPrice.Currency != "EUR" {
		t.Fatalf("price = %+v", a.NightlyPrice)
	}
}

func TestCatalogFollowsPages(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Query().Get("page") {
		case "0":
			_, _ = io.WriteString(w, `{"content": [{"id": 1, "title": "Uno"}], "totalPages": 2, "number": 0}`)
		case "1":
			_, _ = io.WriteString(w, `{"content": [{"id": 2, "title": "Dos"}], "totalPages": 2, "number": 1}`)
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	})
	accs, err := c.Accommodations(context.Background())
	if err != nil {
		t.Fatalf("Accommodations: %v", err)
	}
	if calls != 2 || len(accs) != 2 || accs[1].Title != "Dos" {
		t.Fatalf("calls = %d, accommodations = %+v", calls, accs)
	}
}

func TestSummaryAndRating(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id": 3, "title": "Chalet", "city": "Jaca", "priceNight": 120, "averageRating": 4.2,
			"images": [{"url": "main.jpg", "principal": true}]}`)
	})
	s, err := c.Summary(context.Background(), "3")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Title != "Chalet" || s.City != "Jaca" || s.NightlyPrice.Amount != 12000 || s.MainImage != "main.jpg" {
		t.Fatalf("summary = %+v", s)
	}
	r, err := c.AverageRating(context.Background(), "3")
	if err != nil || r != 4.2 {
		t.Fatalf("rating = %v, %v", r, err)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, ports.ErrNotFound},
		{"bad gateway", http.StatusBadGateway, ErrUnavailable},
		{"bad request", http.StatusBadRequest, ErrRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			})
			_, err := c.Summary(context.Background(), "1")
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c.Timeout = 20 * time.Millisecond
	if _, err := c.ByAccommodation(context.Background(), "1"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v", err)
	}
}

func TestUnconfiguredClient(t *testing.T) {
	var c *Client
	if _, err := c.ByAccommodation(context.Background(), "1"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateBookingAppliesFixedHours(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/reservations" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 99, "idAccommodation": 12, "idGuest": 5, "dateCheckin": "2025-06-01T14:00:00", "dateCheckout": "2025-06-04T12:00:00", "quantityPeople": 3}`)
	})
	dr, err := daterange.Between("2025-06-01", "2025-06-04")
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.CreateBooking(context.Background(), booking.Request{AccommodationID: "12", GuestID: "5", Range: dr, Guests: 3})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if body["dateCheckin"] != "2025-06-01T14:00:00" || body["dateCheckout"] != "2025-06-04T12:00:00" {
		t.Fatalf("dates = %v / %v", body["dateCheckin"], body["dateCheckout"])
	}
	if body["idAccommodation"] != float64(12) || body["quantityPeople"] != float64(3) {
		t.Fatalf("body = %v", body)
	}
	if b.ID != "99" || b.Status != booking.StatusPending || b.Nights() != 3 {
		t.Fatalf("booking = %+v", b)
	}
}

func TestHostReport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from") != "2025-01-01" || r.URL.Query().Get("to") != "" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"totalReservas": 4, "ingresosTotales": 320.5, "ratingPromedio": 4.1, "ocupacionPromedio": 35,
			"reservasPorMes": [{"mes": "2025-01", "reservas": 4, "ingresos": 320.5}]}`)
	})
	from, _ := daterange.Parse("2025-01-01")
	m, err := c.HostReport(context.Background(), "h-1", metrics.Window{From: from})
	if err != nil {
		t.Fatalf("HostReport: %v", err)
	}
	if m.TotalBookings != 4 || m.TotalRevenue.Amount != 32050 || m.AverageRating != 4.1 || len(m.ByMonth) != 1 {
		t.Fatalf("report = %+v", m)
	}
}
