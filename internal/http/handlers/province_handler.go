// README: Province-search handler.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"teaw/internal/category"
	"teaw/internal/modules/province"
)

type ProvinceSearcher interface {
	Search(ctx context.Context, prov string, cats []category.Category) (*province.Result, error)
}

type ProvinceHandler struct {
	provinces ProvinceSearcher
}

func NewProvinceHandler(provinces ProvinceSearcher) *ProvinceHandler {
	return &ProvinceHandler{provinces: provinces}
}

type provinceReq struct {
	Province   string   `json:"province"`
	Categories []string `json:"categories"`
}

// Search handles POST /api/search_by_province.
func (h *ProvinceHandler) Search(c *gin.Context) {
	var req provinceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cats, err := parseCategories(req.Categories)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), searchTimeout)
	defer cancel()

	res, err := h.provinces.Search(ctx, req.Province, cats)
	if err != nil {
		writeSearchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
