package types

import "strings"

// Address is a delivery or pickup address stored as jsonb on the order.
// Lat/Lng are optional; the tracking map falls back to geolocating the
// street address client-side when they are absent.
type Address struct {
	Line1      string   `json:"line1"`
	Line2      *string  `json:"line2,omitempty"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// Validate reports whether the required address fields are present.
func (a Address) Validate() bool {
	for _, field := range []string{a.Line1, a.City, a.State, a.PostalCode} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// HasCoordinates reports whether both lat and lng are set.
func (a Address) HasCoordinates() bool {
	return a.Lat != nil && a.Lng != nil
}
