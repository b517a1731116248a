package listings

import "strings"

// Service is the remote amenity code, e.g. WIFI or POOL.
type Service string

const (
	ServiceWifi            Service = "WIFI"
	ServiceAirConditioning Service = "AIR_CONDITIONING"
	ServiceKitchen         Service = "KITCHEN"
	ServiceTV              Service = "TV"
	ServiceWasher          Service = "WASHER"
	ServiceParking         Service = "PARKING"
	ServiceGarden          Service = "GARDEN"
	ServicePool            Service = "POOL"
	ServiceGym             Service = "GYM"
	ServiceSpa             Service = "SPA"
	ServiceBBQ             Service = "BBQ"
	ServiceTerrace         Service = "TERRACE"
)

var serviceLabels = map[Service]string{
	ServiceWifi:            "WiFi",
	ServiceAirConditioning: "Aire acondicionado",
	ServiceKitchen:         "Cocina equipada",
	ServiceTV:              "TV",
	ServiceWasher:          "Lavadora",
	ServiceParking:         "Parking gratuito",
	ServiceGarden:          "Jardín",
	ServicePool:            "Piscina",
	ServiceGym:             "Gimnasio",
	ServiceSpa:             "Spa",
	ServiceBBQ:             "Barbacoa",
	ServiceTerrace:         "Terraza",
}

var labelServices = func() map[string]Service {
	out := make(map[string]Service, len(serviceLabels))
	for code, label := range serviceLabels {
		out[strings.ToLower(label)] = code
	}
	return out
}()

// Label returns the display label; unknown codes are shown as is.
func (s Service) Label() string {
	if label, ok := serviceLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s Service) Known() bool {
	_, ok := serviceLabels[s]
	return ok
}

// ParseService accepts a code or a display label, case-insensitively.
// Unrecognised input is upper-cased and kept so unknown remote codes survive.
func ParseService(value string) Service {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if code, ok := labelServices[strings.ToLower(value)]; ok {
		return code
	}
	return Service(strings.ToUpper(value))
}

// ParseServices drops blanks and duplicates, keeping first-seen order.
func ParseServices(values []string) []Service {
	if len(values) == 0 {
		return nil
	}
	out := make([]Service, 0, len(values))
	seen := make(map[Service]struct{}, len(values))
	for _, v := range values {
		s := ParseService(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
