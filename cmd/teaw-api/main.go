// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"teaw/internal/ai"
	"teaw/internal/config"
	httptransport "teaw/internal/http"
	"teaw/internal/http/handlers"
	"teaw/internal/infra"
	"teaw/internal/maps"
	"teaw/internal/modules/aiquota"
	"teaw/internal/modules/chat"
	"teaw/internal/modules/province"
	"teaw/internal/modules/session"
	"teaw/internal/modules/trip"
	"teaw/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tripMaps trip.MapsAPI
	var provMaps province.MapsAPI
	if cfg.Maps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		tripMaps, provMaps = mapsClient, mapsClient
	} else {
		log.Print("GOOGLE_MAPS_API_KEY not set; search pipelines disabled")
	}

	var weatherCache *redis.Client
	if cfg.Redis.Addr != "" {
		weatherCache = infra.NewRedis(cfg.Redis.Addr)
	}
	weatherSvc := weather.NewService(cfg.Weather.APIKey, weatherCache)

	var chatAI chat.TextGenerator
	var apiAI handlers.TextGenerator
	if cfg.AI.GeminiKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer provider.Close()
		chatAI, apiAI = provider, provider
	} else {
		log.Print("GEMINI_API_KEY not set; AI features disabled")
	}

	var chatQuota chat.QuotaKeeper
	var apiQuota handlers.QuotaKeeper
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		quotaSvc := aiquota.NewService(aiquota.NewStore(dbPool))
		chatQuota, apiQuota = quotaSvc, quotaSvc
	}

	tripSvc := trip.NewService(tripMaps, weatherSvc, cfg.Search)
	provinceSvc := province.NewService(provMaps, weatherSvc, cfg.Search)

	sessions := session.NewStore()
	chatSvc := chat.NewService(sessions, tripSvc, provinceSvc, chatAI, chatQuota, nil)

	var lineHandler *handlers.LineHandler
	if cfg.Line.ChannelSecret != "" && cfg.Line.ChannelToken != "" {
		lineHandler, err = handlers.NewLineHandler(cfg.Line.ChannelSecret, cfg.Line.ChannelToken, chatSvc)
		if err != nil {
			log.Fatalf("line init: %v", err)
		}
	} else {
		log.Print("LINE credentials not set; webhook disabled")
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Trips:     tripSvc,
		Provinces: provinceSvc,
		AI:        apiAI,
		Quota:     apiQuota,
		Line:      lineHandler,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		if lineHandler != nil {
			lineHandler.Wait()
		}
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
