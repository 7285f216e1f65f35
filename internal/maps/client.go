// README: Google Maps API wrapper (Directions, Places, Details) with adapters.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"teaw/internal/geo"
	"teaw/internal/place"
)

// ErrNoAPIKey is reported once at pipeline entry when the Maps key is absent.
var ErrNoAPIKey = errors.New("GOOGLE_MAPS_API_KEY not configured")

// DirectionsError carries the provider status for a failed route computation.
type DirectionsError struct {
	Status string
}

func (e *DirectionsError) Error() string {
	return fmt.Sprintf("directions failed: %s", e.Status)
}

// Client wraps the Google Maps API for directions and place search.
type Client struct {
	c *maps.Client
}

// NewClient creates a Client with the given API key.
func NewClient(apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Client{c: c}, nil
}

// Route is the computed route plus the step endpoints used as search centers.
type Route struct {
	Summary place.RouteSummary
	Points  []geo.LatLng
}

// Directions requests a single route. Non-OK provider statuses surface as a
// DirectionsError.
func (s *Client) Directions(ctx context.Context, origin, destination, mode string) (*Route, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        travelMode(mode),
		Language:    "th",
		Region:      "th",
	}

	routes, _, err := s.c.Directions(ctx, r)
	if err != nil {
		return nil, &DirectionsError{Status: providerStatus(err)}
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, &DirectionsError{Status: "ZERO_RESULTS"}
	}

	route := routes[0]
	leg := route.Legs[0]

	var points []geo.LatLng
	for _, step := range leg.Steps {
		points = append(points, geo.LatLng{Lat: step.EndLocation.Lat, Lng: step.EndLocation.Lng})
	}

	return &Route{
		Summary: place.RouteSummary{
			Origin:       leg.StartAddress,
			Destination:  leg.EndAddress,
			Mode:         mode,
			DistanceText: leg.Distance.HumanReadable,
			DurationText: formatDurationTH(leg.Duration),
			Polyline:     route.OverviewPolyline.Points,
		},
		Points: points,
	}, nil
}

// NearbySearch returns raw candidates around a point for one place type.
func (s *Client) NearbySearch(ctx context.Context, p geo.LatLng, radiusM int, placeType string) ([]place.Place, error) {
	r := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
		Radius:   uint(radiusM),
		Language: "th",
	}
	if placeType != "" {
		r.Type = maps.PlaceType(placeType)
	}

	resp, err := s.c.NearbySearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}
	return adaptSearchResults(resp.Results), nil
}

// TextSearch runs a free-text area query.
func (s *Client) TextSearch(ctx context.Context, query string) ([]place.Place, error) {
	resp, err := s.c.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Language: "th",
		Region:   "th",
	})
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	return adaptSearchResults(resp.Results), nil
}

var detailFields = []maps.PlaceDetailsFieldMask{
	maps.PlaceDetailsFieldMaskName,
	maps.PlaceDetailsFieldMaskFormattedAddress,
	maps.PlaceDetailsFieldMaskGeometry,
	maps.PlaceDetailsFieldMaskRatings,
	maps.PlaceDetailsFieldMaskUserRatingsTotal,
	maps.PlaceDetailsFieldMaskWebsite,
	maps.PlaceDetailsFieldMaskOpeningHours,
	maps.PlaceDetailsFieldMaskTypes,
	maps.PlaceDetailsFieldMaskReviews,
}

// PlaceDetails enriches a candidate in place. Detail fields override the
// search result only when the provider returned them.
func (s *Client) PlaceDetails(ctx context.Context, p *place.Place) error {
	if p.PlaceID == "" {
		return nil
	}
	d, err := s.c.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:  p.PlaceID,
		Language: "th",
		Fields:   detailFields,
	})
	if err != nil {
		return fmt.Errorf("place details: %w", err)
	}

	if d.Name != "" {
		p.Name = d.Name
	}
	if d.FormattedAddress != "" {
		p.Address = d.FormattedAddress
	}
	if d.Geometry.Location.Lat != 0 || d.Geometry.Location.Lng != 0 {
		p.Location = geo.LatLng{Lat: d.Geometry.Location.Lat, Lng: d.Geometry.Location.Lng}
	}
	if d.Rating != 0 {
		p.Rating = d.Rating
	}
	if d.UserRatingsTotal != 0 {
		p.UserRatingsTotal = d.UserRatingsTotal
	}
	if d.Website != "" {
		p.Website = d.Website
	}
	if d.OpeningHours != nil {
		p.OpeningHours = d.OpeningHours.WeekdayText
	}
	if len(d.Types) > 0 {
		p.Types = d.Types
	}
	for _, review := range d.Reviews {
		if text := strings.TrimSpace(review.Text); text != "" {
			p.Reviews = append(p.Reviews, text)
		}
	}
	return nil
}

func adaptSearchResults(results []maps.PlacesSearchResult) []place.Place {
	out := make([]place.Place, 0, len(results))
	for _, r := range results {
		p := place.Place{
			Name:             r.Name,
			PlaceID:          r.PlaceID,
			Address:          r.FormattedAddress,
			Location:         geo.LatLng{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Rating:           r.Rating,
			UserRatingsTotal: r.UserRatingsTotal,
			Types:            r.Types,
		}
		if p.Address == "" {
			p.Address = r.Vicinity
		}
		if p.PlaceID != "" {
			p.MapURL = place.MapsLinkByPlaceID(p.PlaceID)
		} else {
			p.MapURL = place.MapsLinkByLatLng(p.Location.Lat, p.Location.Lng, p.Name)
		}
		out = append(out, p)
	}
	return out
}

func travelMode(mode string) maps.Mode {
	switch mode {
	case "walking":
		return maps.TravelModeWalking
	case "bicycling":
		return maps.TravelModeBicycling
	case "transit":
		return maps.TravelModeTransit
	default:
		return maps.TravelModeDriving
	}
}

// providerStatus recovers the Maps status code from an SDK error. The SDK
// reports non-OK statuses as "maps: <STATUS> - <message>".
func providerStatus(err error) string {
	msg := strings.TrimPrefix(err.Error(), "maps: ")
	if i := strings.IndexAny(msg, " -"); i > 0 {
		return msg[:i]
	}
	return msg
}

// formatDurationTH renders a leg duration the way the chat replies expect.
func formatDurationTH(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d ชั่วโมง %d นาที", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%d ชั่วโมง", hours)
	default:
		return fmt.Sprintf("%d นาที", minutes)
	}
}
