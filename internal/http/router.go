// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teaw/internal/http/handlers"
	"teaw/internal/http/middleware"
)

type RouterDeps struct {
	Trips     handlers.TripPlanner
	Provinces handlers.ProvinceSearcher
	AI        handlers.TextGenerator
	Quota     handlers.QuotaKeeper
	Line      *handlers.LineHandler
}

// NewRouter wires the JSON API and the LINE webhook. Line may be nil when the
// bot credentials are not configured; the JSON API still works.
func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	tripHandler := handlers.NewTripHandler(deps.Trips)
	r.POST("/api/route_suggestions", tripHandler.Suggest)

	provinceHandler := handlers.NewProvinceHandler(deps.Provinces)
	r.POST("/api/search_by_province", provinceHandler.Search)

	aiHandler := handlers.NewAIHandler(deps.AI, deps.Quota)
	r.POST("/api/gemini_chat", aiHandler.Chat)

	if deps.Line != nil {
		r.POST("/webhook", deps.Line.Webhook)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
