// README: OpenWeather current-conditions client; failures degrade to nil.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"teaw/internal/place"
)

const (
	baseURL  = "https://api.openweathermap.org/data/2.5/weather"
	cacheTTL = 10 * time.Minute
)

// Service fetches weather snapshots for enrichment. A nil *Service and a
// missing API key both behave as "no weather available".
type Service struct {
	apiKey string
	http   *http.Client
	cache  *redis.Client
}

// NewService creates a Service. cache may be nil to disable snapshot caching.
func NewService(apiKey string, cache *redis.Client) *Service {
	return &Service{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
		cache:  cache,
	}
}

type apiResponse struct {
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt int64 `json:"dt"`
}

// Get returns the current conditions at a coordinate, or nil when the key is
// missing or the upstream call fails. Weather is enrichment only and never
// fails a pipeline.
func (s *Service) Get(ctx context.Context, lat, lng float64) *place.Weather {
	if s == nil || s.apiKey == "" {
		return nil
	}

	key := cacheKey(lat, lng)
	if snap := s.cacheGet(ctx, key); snap != nil {
		return snap
	}

	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lng))
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "th")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil
	}
	resp, err := s.http.Do(req)
	if err != nil {
		log.Printf("weather fetch error: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil
	}

	snap := &place.Weather{
		TempC:    data.Main.Temp,
		Humidity: data.Main.Humidity,
		WindKph:  math.Round(data.Wind.Speed*3.6*10) / 10,
	}
	if len(data.Weather) > 0 {
		snap.Condition = data.Weather[0].Description
		snap.Icon = fmt.Sprintf("https://openweathermap.org/img/wn/%s@2x.png", data.Weather[0].Icon)
	}
	if data.Dt > 0 {
		snap.AsOf = time.Unix(data.Dt, 0).Format("2006-01-02 15:04")
	}

	s.cacheSet(ctx, key, snap)
	return snap
}

// cacheKey rounds coordinates so nearby waypoints share one snapshot.
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("teaw:weather:%.2f,%.2f", lat, lng)
}

func (s *Service) cacheGet(ctx context.Context, key string) *place.Weather {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var snap place.Weather
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	return &snap
}

func (s *Service) cacheSet(ctx context.Context, key string, snap *place.Weather) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		log.Printf("weather cache set error: %v", err)
	}
}
