// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"teaw/internal/category"
	"teaw/internal/maps"
	"teaw/internal/modules/province"
	"teaw/internal/modules/trip"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeSearchError maps pipeline failures onto HTTP statuses. Provider
// failures are reported as bad gateway with the provider status attached.
func writeSearchError(c *gin.Context, err error) {
	var dirErr *maps.DirectionsError
	switch {
	case errors.Is(err, trip.ErrBadRequest), errors.Is(err, province.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, maps.ErrNoAPIKey):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &dirErr):
		writeError(c, http.StatusBadGateway, dirErr.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// parseCategories turns Thai labels from a request into the closed enum.
func parseCategories(labels []string) ([]category.Category, error) {
	var cats []category.Category
	for _, label := range labels {
		c, ok := category.Parse(label)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", label)
		}
		cats = append(cats, c)
	}
	return cats, nil
}
