// README: Config loader with env defaults for HTTP, LINE, Maps, Weather, Gemini and search tuning.
package config

import (
	"os"
	"strconv"
)

type SearchConfig struct {
	RadiusM       int
	PerPoint      int
	SamplePoints  int
	MaxDetourKm   float64
	ProvinceLimit int
	EnrichWorkers int
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	Line struct {
		ChannelSecret string
		ChannelToken  string
	}
	Maps struct {
		APIKey string
	}
	Weather struct {
		APIKey string
	}
	AI struct {
		GeminiKey string
	}
	Search SearchConfig
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("TEAW_HTTP_ADDR", ":8080")
	cfg.DB.DSN = os.Getenv("TEAW_DB_DSN")         // optional: enables the AI quota store
	cfg.Redis.Addr = os.Getenv("TEAW_REDIS_ADDR") // optional: enables the weather cache
	cfg.Line.ChannelSecret = os.Getenv("LINE_CHANNEL_SECRET")
	cfg.Line.ChannelToken = os.Getenv("LINE_CHANNEL_ACCESS_TOKEN")
	cfg.Maps.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.Weather.APIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.AI.GeminiKey = os.Getenv("GEMINI_API_KEY")
	cfg.Search.RadiusM = envOrDefaultInt("TEAW_SEARCH_RADIUS_M", 2000)
	cfg.Search.PerPoint = envOrDefaultInt("TEAW_SEARCH_PER_POINT", 5)
	cfg.Search.SamplePoints = envOrDefaultInt("TEAW_SEARCH_SAMPLE_POINTS", 15)
	cfg.Search.MaxDetourKm = envOrDefaultFloat("TEAW_MAX_DETOUR_KM", 15.0)
	cfg.Search.ProvinceLimit = envOrDefaultInt("TEAW_PROVINCE_LIMIT", 20)
	cfg.Search.EnrichWorkers = envOrDefaultInt("TEAW_ENRICH_WORKERS", 4)
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}
