// README: Province pipeline: one area text search, pre-filter, enrich, rank.
package province

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"teaw/internal/category"
	"teaw/internal/config"
	"teaw/internal/place"

	mapsapi "teaw/internal/maps"
)

var ErrBadRequest = errors.New("province is required")

// MapsAPI is the slice of the Maps client the pipeline needs.
type MapsAPI interface {
	TextSearch(ctx context.Context, query string) ([]place.Place, error)
	PlaceDetails(ctx context.Context, p *place.Place) error
}

// WeatherSource supplies optional condition snapshots during enrichment.
type WeatherSource interface {
	Get(ctx context.Context, lat, lng float64) *place.Weather
}

// Service searches tourist attractions across one province.
type Service struct {
	maps    MapsAPI
	weather WeatherSource
	cfg     config.SearchConfig
}

func NewService(maps MapsAPI, weather WeatherSource, cfg config.SearchConfig) *Service {
	return &Service{maps: maps, weather: weather, cfg: cfg}
}

// Result is the ranked place list for one province.
type Result struct {
	Province string        `json:"province"`
	Items    []place.Place `json:"items"`
}

// Search runs the province pipeline. A missing Maps client is a
// configuration error reported once here.
func (s *Service) Search(ctx context.Context, prov string, cats []category.Category) (*Result, error) {
	if s.maps == nil {
		return nil, mapsapi.ErrNoAPIKey
	}
	prov = strings.TrimSpace(prov)
	if prov == "" {
		return nil, ErrBadRequest
	}

	query := "สถานที่ท่องเที่ยว " + prov + " ประเทศไทย"
	results, err := s.maps.TextSearch(ctx, query)
	if err != nil {
		return nil, err
	}

	// Pre-filter by classified category before per-item enrichment, saving
	// detail and weather lookups on discarded items.
	if len(cats) > 0 {
		filtered := results[:0]
		for _, p := range results {
			if category.Intersects(category.Classify(p.Types, p.Name), cats) {
				filtered = append(filtered, p)
			}
		}
		results = filtered
	}

	limit := s.cfg.ProvinceLimit
	if limit <= 0 {
		limit = 20
	}
	if len(results) > limit {
		results = results[:limit]
	}

	s.enrich(ctx, results)

	items := place.Rank(results, place.RankOptions{Categories: cats, Limit: 50})
	return &Result{Province: prov, Items: items}, nil
}

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
				log.Printf("[province] place details failed for %q: %v", p.Name, err)
			}
			if s.weather != nil && (p.Location.Lat != 0 || p.Location.Lng != 0) {
				p.Weather = s.weather.Get(gctx, p.Location.Lat, p.Location.Lng)
			}
			return nil
		})
	}
	_ = g.Wait()
}
