// README: Route pipeline: directions, waypoint sampling, fan-out search, ranking.
package trip

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"teaw/internal/category"
	"teaw/internal/config"
	"teaw/internal/geo"
	mapsapi "teaw/internal/maps"
	"teaw/internal/place"
)

var ErrBadRequest = errors.New("origin and destination are required")

// MapsAPI is the slice of the Maps client the pipeline needs.
type MapsAPI interface {
	Directions(ctx context.Context, origin, destination, mode string) (*mapsapi.Route, error)
	NearbySearch(ctx context.Context, p geo.LatLng, radiusM int, placeType string) ([]place.Place, error)
	PlaceDetails(ctx context.Context, p *place.Place) error
}

// WeatherSource supplies optional condition snapshots during enrichment.
type WeatherSource interface {
	Get(ctx context.Context, lat, lng float64) *place.Weather
}

// Service computes a route and ranks stopover suggestions along it.
type Service struct {
	maps    MapsAPI
	weather WeatherSource
	cfg     config.SearchConfig
}

func NewService(maps MapsAPI, weather WeatherSource, cfg config.SearchConfig) *Service {
	return &Service{maps: maps, weather: weather, cfg: cfg}
}

// Result is the computed route plus the ranked stop list.
type Result struct {
	Route place.RouteSummary `json:"route"`
	Stops []place.Place      `json:"stops"`
}

// maxTypeFilters bounds the per-waypoint fan-out.
const maxTypeFilters = 3

// defaultTypeFilters is the broad search set used when no categories were
// requested.
var defaultTypeFilters = []string{"tourist_attraction", "cafe", "restaurant", "museum", "park"}

// Suggest runs the route pipeline. A missing Maps client is a configuration
// error reported once here, not per call.
func (s *Service) Suggest(ctx context.Context, origin, destination string, cats []category.Category, mode string) (*Result, error) {
	if s.maps == nil {
		return nil, mapsapi.ErrNoAPIKey
	}
	if strings.TrimSpace(origin) == "" || strings.TrimSpace(destination) == "" {
		return nil, ErrBadRequest
	}
	if mode == "" {
		mode = "driving"
	}

	origin = EnsureCountryHint(origin)
	destination = EnsureCountryHint(destination)

	route, err := s.maps.Directions(ctx, origin, destination, mode)
	if err != nil {
		return nil, err
	}

	samples := SamplePoints(route.Points, s.cfg.SamplePoints)
	typeFilters := typeFiltersFor(cats)

	// Fan out nearby searches per waypoint × type. Query order is fixed so
	// first-occurrence dedup stays deterministic.
	var candidates []place.Place
	for _, pt := range samples {
		for _, tf := range typeFilters {
			results, err := s.maps.NearbySearch(ctx, pt, s.cfg.RadiusM, tf)
			if err != nil {
				log.Printf("[trip] nearby search failed at %v (%s): %v", pt, tf, err)
				continue
			}
			if len(results) > s.cfg.PerPoint {
				results = results[:s.cfg.PerPoint]
			}
			candidates = append(candidates, results...)
		}
	}

	candidates = dedupeForEnrichment(candidates, cats)
	s.enrich(ctx, candidates)

	stops := place.Rank(candidates, place.RankOptions{
		Categories:  cats,
		RoutePoints: route.Points,
		MaxDetourKm: s.cfg.MaxDetourKm,
		Limit:       50,
	})

	route.Summary.Mode = mode
	return &Result{Route: route.Summary, Stops: stops}, nil
}

// dedupeForEnrichment drops repeated place ids and, when a category filter is
// active, candidates that already classify outside it. Doing this before
// enrichment saves detail and weather lookups on discarded items; the ranker
// repeats both steps on the enriched records.
func dedupeForEnrichment(candidates []place.Place, cats []category.Category) []place.Place {
	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, p := range candidates {
		if p.PlaceID != "" {
			if _, dup := seen[p.PlaceID]; dup {
				continue
			}
			seen[p.PlaceID] = struct{}{}
		}
		if len(cats) > 0 && !category.Intersects(category.Classify(p.Types, p.Name), cats) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// enrich fills details and weather in place. The slice is index-addressed so
// worker completion order cannot reorder candidates.
func (s *Service) enrich(ctx context.Context, candidates []place.Place) {
	workers := s.cfg.EnrichWorkers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range candidates {
		g.Go(func() error {
			p := &candidates[i]
			if err := s.maps.PlaceDetails(gctx, p); err != nil {
				log.Printf("[trip] place details failed for %q: %v", p.Name, err)
			}
			if s.weather != nil && (p.Location.Lat != 0 || p.Location.Lng != 0) {
				p.Weather = s.weather.Get(gctx, p.Location.Lat, p.Location.Lng)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// SamplePoints down-samples a path to roughly n evenly spaced points.
func SamplePoints(points []geo.LatLng, n int) []geo.LatLng {
	if len(points) == 0 || n <= 0 {
		return nil
	}
	stride := len(points) / n
	if stride < 1 {
		stride = 1
	}
	var out []geo.LatLng
	for i := 0; i < len(points); i += stride {
		out = append(out, points[i])
	}
	return out
}

// EnsureCountryHint appends ", ประเทศไทย" to help the geocoder, unless the
// name already mentions Thailand.
func EnsureCountryHint(name string) string {
	if name == "" || strings.Contains(name, "ไทย") {
		return name
	}
	return name + ", ประเทศไทย"
}

func typeFiltersFor(cats []category.Category) []string {
	var filters []string
	seen := make(map[string]struct{})
	for _, c := range cats {
		for _, t := range category.TypeCodes(c) {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			filters = append(filters, t)
		}
	}
	if len(filters) == 0 {
		filters = append(filters, defaultTypeFilters...)
	}
	if len(filters) > maxTypeFilters {
		filters = filters[:maxTypeFilters]
	}
	return filters
}
