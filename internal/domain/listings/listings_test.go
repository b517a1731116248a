package listings

import (
	"testing"
	"time"

	"bookingengine/internal/domain/shared/money"
)

func sample() Accommodation {
	return Accommodation{
		ID:           "acc-1",
		Title:        "Loft en el centro",
		Location:     Location{City: "Medellín"},
		NightlyPrice: money.Must(12000, "EUR"),
		Capacity:     3,
		Services:     []Service{ServiceWifi, ServicePool},
		Images:       []Image{{URL: "a.jpg"}, {URL: "b.jpg", Principal: true}},
		State:        StateActive,
	}
}

func TestServiceLabels(t *testing.T) {
	if ServiceAirConditioning.Label() != "Aire acondicionado" {
		t.Fatalf("label = %q", ServiceAirConditioning.Label())
	}
	if Service("SAUNA").Label() != "SAUNA" {
		t.Fatal("unknown codes should be shown as is")
	}
	if got := ParseService("piscina"); got != ServicePool {
		t.Fatalf("label lookup = %q", got)
	}
	if got := ParseService(" gym "); got != ServiceGym {
		t.Fatalf("code lookup = %q", got)
	}
	got := ParseServices([]string{"WiFi", "WIFI", "", "terrace"})
	if len(got) != 2 || got[0] != ServiceWifi || got[1] != ServiceTerrace {
		t.Fatalf("ParseServices = %v", got)
	}
}

func TestMainImage(t *testing.T) {
	a := sample()
	if a.MainImage() != "b.jpg" {
		t.Fatalf("principal image = %q", a.MainImage())
	}
	a.Images = []Image{{URL: "first.jpg"}, {URL: "second.jpg"}}
	if a.MainImage() != "first.jpg" {
		t.Fatalf("fallback image = %q", a.MainImage())
	}
	a.Images = nil
	if a.MainImage() != "" {
		t.Fatal("no images should give an empty url")
	}
}

func TestParseState(t *testing.T) {
	if ParseState("active") != StateActive || ParseState("ACTIVO") != StateActive {
		t.Fatal("active labels not recognised")
	}
	if ParseState("INACTIVE") != StateDeleted || ParseState("") != StateDeleted {
		t.Fatal("non-active labels must map to deleted")
	}
}

func TestSearchFilterMatch(t *testing.T) {
	a := sample()
	cases := []struct {
		name   string
		filter SearchFilter
		want   bool
	}{
		{"empty", SearchFilter{}, true},
		{"city substring", SearchFilter{City: " medell "}, true},
		{"city miss", SearchFilter{City: "bogotá"}, false},
		{"price inside", SearchFilter{PriceMinCents: 10000, PriceMaxCents: 12000}, true},
		{"price below min", SearchFilter{PriceMinCents: 12001}, false},
		{"price above max", SearchFilter{PriceMaxCents: 11999}, false},
		{"all services", SearchFilter{Services: []Service{"wifi", "Piscina"}}, true},
		{"missing service", SearchFilter{Services: []Service{ServiceWifi, ServiceGym}}, false},
		{"inverted max ignored", SearchFilter{PriceMinCents: 5000, PriceMaxCents: 100}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Normalized().Match(a); got != tc.want {
				t.Fatalf("Match = %v, want %v", got, tc.want)
			}
		})
	}

	a.State = StateDeleted
	if (SearchFilter{OnlyActive: true}).Match(a) {
		t.Fatal("deleted accommodation matched an active-only filter")
	}
}

func TestSearchFilterStay(t *testing.T) {
	in := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	f := SearchFilter{CheckIn: in, CheckOut: in.AddDate(0, 0, 3)}.Normalized()
	dr, ok := f.Stay()
	if !ok || dr.Nights() != 3 {
		t.Fatalf("stay = %+v, %v", dr, ok)
	}
	f = SearchFilter{CheckIn: in, CheckOut: in}.Normalized()
	if _, ok := f.Stay(); ok {
		t.Fatal("empty stay should be ignored")
	}
}

func TestAccommodationValidate(t *testing.T) {
	a := sample()
	if err := a.Validate(); err != nil {
		t.Fatalf("valid accommodation: %v", err)
	}
	a.Capacity = 0
	if err := a.Validate(); err != ErrCapacity {
		t.Fatalf("capacity error = %v", err)
	}
	a = sample()
	a.Title = " "
	if err := a.Validate(); err != ErrTitleRequired {
		t.Fatalf("title error = %v", err)
	}
}
