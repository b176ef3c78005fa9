package handlers

import (
	"net/http"
	"strings"

	"scamshield-lab/internal/domain/models"
)

// MaxURLBatch is the largest batch accepted by the batch URL endpoint
const MaxURLBatch = 100

// URLRequest is the request body for a single URL check
type URLRequest struct {
	URL string `json:"url"`
}

// URLBatchRequest is the request body for a batch URL check
type URLBatchRequest struct {
	URLs []string `json:"urls"`
}

// URLBatchResponse is the body of a batch URL check
type URLBatchResponse struct {
	Success   bool                 `json:"success"`
	Results   []models.URLAnalysis `json:"results"`
	Total     int                  `json:"total"`
	Dangerous int                  `json:"dangerous"`
}

// CheckURL handles POST /api/v1/analyze/url
func (h *AnalysisHandler) CheckURL(w http.ResponseWriter, r *http.Request) {
	var req URLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		respondError(w, h.logger, http.StatusBadRequest, "URL is required")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, h.service.CheckURL(raw))
}

// CheckURLBatch handles POST /api/v1/analyze/url/batch
func (h *AnalysisHandler) CheckURLBatch(w http.ResponseWriter, r *http.Request) {
	var req URLBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.URLs) == 0 {
		respondError(w, h.logger, http.StatusBadRequest, "At least one URL is required")
		return
	}
	if len(req.URLs) > MaxURLBatch {
		respondError(w, h.logger, http.StatusBadRequest, "Maximum 100 URLs per batch")
		return
	}

	results := h.service.CheckURLs(req.URLs)
	dangerous := 0
	for _, res := range results {
		if res.IsSuspicious {
			dangerous++
		}
	}

	respondJSON(w, h.logger, http.StatusOK, URLBatchResponse{
		Success:   true,
		Results:   results,
		Total:     len(results),
		Dangerous: dangerous,
	})
}
