// README: Place and route records produced by the provider adapters.
package place

import (
	"fmt"
	"net/url"

	"teaw/internal/category"
	"teaw/internal/geo"
)

// Weather is an optional conditions snapshot attached during enrichment.
type Weather struct {
	Condition string  `json:"condition,omitempty"`
	TempC     float64 `json:"temp_c,omitempty"`
	Humidity  int     `json:"humidity,omitempty"`
	WindKph   float64 `json:"wind_kph,omitempty"`
	Icon      string  `json:"icon,omitempty"`
	AsOf      string  `json:"as_of,omitempty"`
}

// Place is a candidate location. Adapter code tolerates missing provider
// fields: zero values mean "absent", DetourMinutes is nil outside route mode.
type Place struct {
	Name             string              `json:"name"`
	PlaceID          string              `json:"place_id,omitempty"`
	Address          string              `json:"address,omitempty"`
	Location         geo.LatLng          `json:"location"`
	Rating           float32             `json:"rating,omitempty"`
	UserRatingsTotal int                 `json:"user_ratings_total,omitempty"`
	Website          string              `json:"website,omitempty"`
	OpeningHours     []string            `json:"opening_hours_text,omitempty"`
	MapURL           string              `json:"map_url,omitempty"`
	Weather          *Weather            `json:"weather,omitempty"`
	Categories       []category.Category `json:"categories,omitempty"`
	DetourMinutes    *int                `json:"detour_minutes_est,omitempty"`
	Reviews          []string            `json:"-"`

	// Types holds the raw provider type codes for classification.
	Types []string `json:"-"`
}

// RouteSummary describes the computed route between two endpoints.
type RouteSummary struct {
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Mode         string `json:"mode"`
	DistanceText string `json:"distance_text,omitempty"`
	DurationText string `json:"duration_text,omitempty"`
	Polyline     string `json:"polyline,omitempty"`
}

// MapsLinkByPlaceID builds a Google Maps link for a known place id.
func MapsLinkByPlaceID(placeID string) string {
	return "https://www.google.com/maps/place/?q=place_id:" + placeID
}

// MapsLinkByLatLng builds a Google Maps search link for a coordinate,
// labelled with the place name when available.
func MapsLinkByLatLng(lat, lng float64, name string) string {
	label := url.QueryEscape(name)
	if name == "" {
		label = fmt.Sprintf("%f,%f", lat, lng)
	}
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f%%2C%f&query=%s", lat, lng, label)
}
