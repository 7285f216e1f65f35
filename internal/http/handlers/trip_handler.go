// README: Route-suggestions handler (origin/destination plus category filter).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"teaw/internal/category"
	"teaw/internal/modules/trip"
)

// searchTimeout bounds one pipeline run; the route pipeline fans out to many
// provider calls, so it gets more room than a single-call handler would.
const searchTimeout = 60 * time.Second

type TripPlanner interface {
	Suggest(ctx context.Context, origin, destination string, cats []category.Category, mode string) (*trip.Result, error)
}

type TripHandler struct {
	trips TripPlanner
}

func NewTripHandler(trips TripPlanner) *TripHandler {
	return &TripHandler{trips: trips}
}

type tripReq struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Categories  []string `json:"categories"`
	Mode        string   `json:"mode"`
}

// Suggest handles POST /api/route_suggestions.
func (h *TripHandler) Suggest(c *gin.Context) {
	var req tripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cats, err := parseCategories(req.Categories)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Mode == "" {
		req.Mode = "driving"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
	defer cancel()

	res, err := h.trips.Suggest(ctx, req.Origin, req.Destination, cats, req.Mode)
	if err != nil {
		writeSearchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
