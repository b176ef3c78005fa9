package handlers

import (
	"net/http"

	"scamshield-lab/internal/domain/services"
	"scamshield-lab/pkg/logger"
)

// TipsHandler serves the static safety tips
type TipsHandler struct {
	logger *logger.Logger
}

// NewTipsHandler creates a new TipsHandler
func NewTipsHandler(log *logger.Logger) *TipsHandler {
	return &TipsHandler{logger: log.WithComponent("tips")}
}

// List handles GET /api/v1/tips
func (h *TipsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]any{
		"success": true,
		"tips":    services.AllSafetyTips(),
	})
}
