package listings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookingengine/internal/app/ports"
	domainbooking "bookingengine/internal/domain/booking"
	domainlistings "bookingengine/internal/domain/listings"
	"bookingengine/internal/domain/shared/daterange"
	"bookingengine/internal/domain/shared/money"
	"bookingengine/internal/domain/shared/page"
)

type fakeCatalog struct{ all []domainlistings.Accommodation }

func (f fakeCatalog) Accommodations(context.Context) ([]domainlistings.Accommodation, error) {
	return f.all, nil
}

type fakeSource struct {
	byAcc map[domainbooking.AccommodationID][]domainbooking.Booking
}

func (f fakeSource) ByAccommodation(_ context.Context, id domainbooking.AccommodationID) ([]domainbooking.Booking, error) {
	return f.byAcc[id], nil
}

func (fakeSource) ByGuest(context.Context, ports.GuestPage) (page.Page[domainbooking.Booking], error) {
	return page.Page[domainbooking.Booking]{}, nil
}

func catalog() []domainlistings.Accommodation {
	out := make([]domainlistings.Accommodation, 0, 12)
	for i := 0; i < 12; i++ {
		city := "Cartagena"
		if i%3 == 0 {
			city = "Bogotá"
		}
		state := domainlistings.StateActive
		if i == 11 {
			state = domainlistings.StateDeleted
		}
		out = append(out, domainlistings.Accommodation{
			ID:           domainbooking.AccommodationID(fmt.Sprintf("a%02d", i)),
			Title:        fmt.Sprintf("Casa %d", i),
			Location:     domainlistings.Location{City: city},
			NightlyPrice: money.Must(int64(5000+i*1000), "EUR"),
			Capacity:     2,
			Services:     []domainlistings.Service{domainlistings.ServiceWifi},
			State:        state,
		})
	}
	return out
}

func TestSearchFiltersAndPaginates(t *testing.T) {
	h := &SearchHandler{Catalog: fakeCatalog{all: catalog()}}
	res, err := h.Handle(context.Background(), SearchQuery{
		Filter:   domainlistings.SearchFilter{City: "carta", OnlyActive: true, Services: []domainlistings.Service{"WiFi"}},
		Page:     9,
		PageSize: 3,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	// 8 Cartagena listings minus the deleted a11 = 7.
	if res.Total != 7 || res.TotalPages != 3 || res.Page != 3 || len(res.Items) != 1 {
		t.Fatalf("page = total %d pages %d page %d items %d", res.Total, res.TotalPages, res.Page, len(res.Items))
	}
	if res.Items[0].Services[0] != "WiFi" {
		t.Fatalf("services = %v", res.Items[0].Services)
	}
}

func TestSearchPriceBounds(t *testing.T) {
	h := &SearchHandler{Catalog: fakeCatalog{all: catalog()}}
	res, err := h.Handle(context.Background(), SearchQuery{Filter: domainlistings.SearchFilter{PriceMinCents: 7000, PriceMaxCents: 9000}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 3 {
		t.Fatalf("price window matched %d", res.Total)
	}
}

func TestSearchDropsOccupied(t *testing.T) {
	dr, _ := daterange.Between("2025-06-10", "2025-06-12")
	src := fakeSource{byAcc: map[domainbooking.AccommodationID][]domainbooking.Booking{
		"a01": {{ID: "b1", AccommodationID: "a01", Range: dr, Guests: 1, Status: "CONFIRMED"}},
		"a02": {{ID: "b2", AccommodationID: "a02", Range: dr, Guests: 1, Status: "CANCELED"}},
	}}
	h := &SearchHandler{Catalog: fakeCatalog{all: catalog()[:3]}, Bookings: src}
	in, _ := daterange.Parse("2025-06-12")
	res, err := h.Handle(context.Background(), SearchQuery{Filter: domainlistings.SearchFilter{CheckIn: in, CheckOut: in.Add(48 * time.Hour)}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 {
		t.Fatalf("expected a00 and a02 to stay, got %+v", res.Items)
	}
	for _, item := range res.Items {
		if item.ID == "a01" {
			t.Fatal("occupied listing returned")
		}
	}
}

func TestSearchRejectsInvertedStay(t *testing.T) {
	h := &SearchHandler{Catalog: fakeCatalog{}}
	in := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	if _, err := h.Handle(context.Background(), SearchQuery{Filter: domainlistings.SearchFilter{CheckIn: in, CheckOut: in}}); err == nil {
		t.Fatal("expected validation error")
	}
}
