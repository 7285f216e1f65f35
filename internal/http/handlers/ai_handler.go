// README: Gemini chat handler (quota-guarded free-form Q&A).
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"teaw/internal/modules/aiquota"
)

type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type QuotaKeeper interface {
	Consume(ctx context.Context, uid string) error
}

type AIHandler struct {
	ai    TextGenerator
	quota QuotaKeeper
}

// NewAIHandler wires the generator and an optional quota keeper; a nil quota
// means unlimited questions.
func NewAIHandler(ai TextGenerator, quota QuotaKeeper) *AIHandler {
	return &AIHandler{ai: ai, quota: quota}
}

type aiChatReq struct {
	UID     string `json:"uid"`
	Message string `json:"message"`
}

// Chat handles POST /api/gemini_chat.
func (h *AIHandler) Chat(c *gin.Context) {
	var req aiChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	req.UID = strings.TrimSpace(req.UID)
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(c, http.StatusBadRequest, "missing message")
		return
	}
	if h.ai == nil {
		writeError(c, http.StatusServiceUnavailable, "ai not configured")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if h.quota != nil && req.UID != "" {
		if err := h.quota.Consume(ctx, req.UID); err != nil {
			switch {
			case errors.Is(err, aiquota.ErrQuotaExhausted):
				writeError(c, http.StatusTooManyRequests, err.Error())
			default:
				writeError(c, http.StatusInternalServerError, "internal error")
			}
			return
		}
	}

	reply, err := h.ai.Generate(ctx, req.Message)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"reply": reply})
}
