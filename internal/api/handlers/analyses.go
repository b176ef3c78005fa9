package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/internal/domain/services"
	"scamshield-lab/pkg/logger"
)

// HistoryHandler serves stored analyses
type HistoryHandler struct {
	service *services.AnalysisService
	logger  *logger.Logger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(service *services.AnalysisService, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  log.WithComponent("history-handler"),
	}
}

// RecentResponse lists recent analyses of one type
type RecentResponse struct {
	Success  bool                    `json:"success"`
	Type     models.AnalysisType     `json:"type"`
	Analyses []models.AnalysisRecord `json:"analyses"`
	Count    int                     `json:"count"`
}

// Recent handles GET /api/v1/analyses/{type}?limit=N
func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	t := models.AnalysisType(chi.URLParam(r, "type"))

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(w, h.logger, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.service.RecentAnalyses(r.Context(), t, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "history lookup")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, RecentResponse{
		Success:  true,
		Type:     t,
		Analyses: records,
		Count:    len(records),
	})
}
