package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"

	"bookingengine/internal/app/commands"
	"bookingengine/internal/app/dto"
	availabilityapp "bookingengine/internal/app/handlers/availability"
	bookingsapp "bookingengine/internal/app/handlers/bookings"
	listingsapp "bookingengine/internal/app/handlers/listings"
	metricsapp "bookingengine/internal/app/handlers/metrics"
	"bookingengine/internal/app/middleware"
	"bookingengine/internal/app/ports"
	"bookingengine/internal/app/queries"
	domainbooking "bookingengine/internal/domain/booking"
	domainlistings "bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/money"
	"bookingengine/internal/infra/obs"
	"bookingengine/internal/infra/remote"
	"bookingengine/internal/infra/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *memory.BookingRepository) {
	t.Helper()
	ctx := context.Background()
	accs := memory.NewAccommodationRepository()
	bookings := memory.NewBookingRepository()
	for _, a := range []domainlistings.Accommodation{
		{ID: "a1", Host: "h1", Title: "Loft", Location: domainlistings.Location{City: "Lima"}, NightlyPrice: money.Must(10000, "USD"), Capacity: 2, Services: []domainlistings.Service{domainlistings.ServiceWifi}, State: domainlistings.StateActive, AverageRating: 4},
		{ID: "a2", Host: "h1", Title: "Casa", Location: domainlistings.Location{City: "Cusco"}, NightlyPrice: money.Must(5000, "USD"), Capacity: 4, State: domainlistings.StateActive},
	} {
		if err := accs.Save(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	dr, _ := daterange.Between("2025-03-10", "2025-03-13")
	_ = bookings.Save(ctx, domainbooking.Booking{ID: "b1", AccommodationID: "a1", GuestID: "g1", Range: dr, Guests: 2, Status: domainbooking.StatusConfirmed, CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)})

	qbus := queries.NewInMemoryBus()
	queries.RegisterHandler(qbus, bookingsapp.ListGuestBookingsKey, &bookingsapp.ListGuestBookingsHandler{Bookings: bookings})
	queries.RegisterHandler(qbus, bookingsapp.ListHostBookingsKey, &bookingsapp.ListHostBookingsHandler{Catalog: accs, Bookings: bookings})
	queries.RegisterHandler(qbus, availabilityapp.GetOccupancyKey, &availabilityapp.GetOccupancyHandler{Bookings: bookings})
	queries.RegisterHandler(qbus, metricsapp.GetAccommodationMetricsKey, &metricsapp.GetAccommodationMetricsHandler{Bookings: bookings, Accommodations: accs, Ratings: accs})
	queries.RegisterHandler(qbus, metricsapp.GetHostMetricsKey, &metricsapp.GetHostMetricsHandler{Catalog: accs, Bookings: bookings, Ratings: accs})
	queries.RegisterHandler(qbus, listingsapp.SearchKey, &listingsapp.SearchHandler{Catalog: accs, Bookings: bookings})

	cbus := commands.NewInMemoryBus()
	commands.RegisterHandler(cbus, bookingsapp.RequestBookingKey, &bookingsapp.RequestBookingHandler{Bookings: bookings, Writer: bookings})

	q := middleware.ChainQueries(qbus, middleware.QueryValidation())
	c := middleware.ChainCommands(cbus, middleware.CommandValidation(), middleware.Idempotency(memory.NewIdempotencyStore()))
	router := NewRouter(nil, obs.Middleware{}, obs.HealthHandlers{Queries: qbus.Keys}, Handlers{
		Booking:      BookingHandler{Queries: q, Commands: c},
		Availability: AvailabilityHandler{Queries: q},
		Metrics:      MetricsHandler{Queries: q},
		Listing:      ListingHandler{Queries: q},
	})
	return router, bookings
}

func do(t *testing.T, router http.Handler, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestRoutes(t *testing.T) {
	router, _ := newTestRouter(t)
	cases := []struct {
		name   string
		target string
		want   int
	}{
		{"guest bookings", "/api/v1/guests/g1/bookings?status=CONFIRMADA", http.StatusOK},
		{"guest bookings bad page", "/api/v1/guests/g1/bookings?page=x", http.StatusBadRequest},
		{"guest bookings bad date", "/api/v1/guests/g1/bookings?from=yesterday", http.StatusBadRequest},
		{"host bookings", "/api/v1/hosts/h1/bookings", http.StatusOK},
		{"occupancy", "/api/v1/accommodations/a1/occupancy?month=2025-03", http.StatusOK},
		{"accommodation metrics", "/api/v1/accommodations/a1/metrics?from=2025-03-01&to=2025-03-31", http.StatusOK},
		{"unknown accommodation metrics", "/api/v1/accommodations/zz/metrics", http.StatusNotFound},
		{"host metrics", "/api/v1/hosts/h1/metrics", http.StatusOK},
		{"report without source", "/api/v1/hosts/h1/metrics/report", http.StatusServiceUnavailable},
		{"search", "/api/v1/accommodations?city=lima&services=WIFI", http.StatusOK},
		{"search bad price", "/api/v1/accommodations?price_min=cheap", http.StatusBadRequest},
		{"liveness", "/livez", http.StatusOK},
		{"readiness", "/readyz", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tc.target, nil, nil)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestGuestBookingsBody(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(t, router, http.MethodGet, "/api/v1/guests/g1/bookings", nil, nil)
	got := decode[dto.BookingPage](t, rec)
	if got.Total != 1 || got.Items[0].ID != "b1" || got.Items[0].Nights != 3 {
		t.Fatalf("page = %+v", got)
	}
	if rec.Header().Get(obs.RequestIDHeader) == "" {
		t.Fatal("request id header missing")
	}
}

func TestSearchBody(t *testing.T) {
	router, _ := newTestRouter(t)
	got := decode[dto.ListingPage](t, do(t, router, http.MethodGet, "/api/v1/accommodations?price_max=60", nil, nil))
	if got.Total != 1 || got.Items[0].ID != "a2" {
		t.Fatalf("page = %+v", got)
	}
}

func TestRequestBooking(t *testing.T) {
	router, bookings := newTestRouter(t)
	start := time.Now().AddDate(0, 2, 0)
	body := map[string]any{
		"accommodation_id": "a1",
		"guest_id":         "g2",
		"check_in":         daterange.DayKey(start),
		"check_out":        daterange.DayKey(start.AddDate(0, 0, 2)),
		"guests":           2,
	}
	headers := map[string]string{IdempotencyHeader: "req-1"}

	first := do(t, router, http.MethodPost, "/api/v1/bookings", body, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", first.Code, first.Body.String())
	}
	created := decode[dto.Booking](t, first)
	if created.ID == "" || created.Status != string(domainbooking.StatusPending) || created.Nights != 2 {
		t.Fatalf("booking = %+v", created)
	}

	replay := decode[dto.Booking](t, do(t, router, http.MethodPost, "/api/v1/bookings", body, headers))
	if replay.ID != created.ID {
		t.Fatalf("replayed id = %s, want %s", replay.ID, created.ID)
	}
	stored, _ := bookings.ByAccommodation(context.Background(), "a1")
	if len(stored) != 2 {
		t.Fatalf("stored bookings = %d", len(stored))
	}

	conflict := do(t, router, http.MethodPost, "/api/v1/bookings", body, nil)
	if conflict.Code != http.StatusConflict {
		t.Fatalf("overlapping request status = %d: %s", conflict.Code, conflict.Body.String())
	}
}

func TestRequestBookingRejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t)
	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing guest", map[string]any{"accommodation_id": "a1", "check_in": "2099-01-01", "check_out": "2099-01-02", "guests": 1}},
		{"bad date", map[string]any{"accommodation_id": "a1", "guest_id": "g", "check_in": "soon", "check_out": "2099-01-02", "guests": 1}},
		{"past", map[string]any{"accommodation_id": "a1", "guest_id": "g", "check_in": "2001-01-01", "check_out": "2001-01-02", "guests": 1}},
		{"inverted", map[string]any{"accommodation_id": "a1", "guest_id": "g", "check_in": "2099-01-05", "check_out": "2099-01-02", "guests": 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/v1/bookings", tc.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", ports.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: %w", middleware.ErrInvalidArgument, errors.New("bad")), http.StatusBadRequest},
		{bookingsapp.ErrDatesUnavailable, http.StatusConflict},
		{&remote.StatusError{Code: 400}, http.StatusUnprocessableEntity},
		{&remote.StatusError{Code: 503}, http.StatusBadGateway},
		{remote.ErrTimeout, http.StatusGatewayTimeout},
		{bookingsapp.ErrWriterMissing, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
