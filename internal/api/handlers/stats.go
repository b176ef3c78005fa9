package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/internal/domain/services"
	"scamshield-lab/internal/infrastructure/cache"
	"scamshield-lab/pkg/logger"
)

// StatsCache stores computed statistics between requests
type StatsCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

const defaultStatsDays = 30

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	service     *services.AnalysisService
	cache       StatsCache
	ttl         time.Duration
	defaultDays int
	logger      *logger.Logger
}

// NewStatsHandler creates a new StatsHandler. c may be nil.
func NewStatsHandler(service *services.AnalysisService, c StatsCache, ttl time.Duration, defaultDays int, log *logger.Logger) *StatsHandler {
	if defaultDays <= 0 {
		defaultDays = defaultStatsDays
	}
	return &StatsHandler{
		service:     service,
		cache:       c,
		ttl:         ttl,
		defaultDays: defaultDays,
		logger:      log.WithComponent("stats"),
	}
}

// StatsResponse wraps the statistics summary
type StatsResponse struct {
	Success bool `json:"success"`
	*models.StatisticsSummary
}

// Get handles GET /api/v1/statistics?days=N
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	days := h.defaultDays
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(w, h.logger, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	key := cache.StatsKey(days)
	if h.cache != nil && h.ttl > 0 {
		var cached models.StatisticsSummary
		if err := h.cache.GetJSON(r.Context(), key, &cached); err == nil {
			w.Header().Set("X-Cache", "HIT")
			respondJSON(w, h.logger, http.StatusOK, StatsResponse{Success: true, StatisticsSummary: &cached})
			return
		}
	}

	summary, err := h.service.Statistics(r.Context(), days)
	if err != nil {
		respondServiceError(w, h.logger, err, "statistics")
		return
	}

	if h.cache != nil && h.ttl > 0 {
		if err := h.cache.SetJSON(r.Context(), key, summary, h.ttl); err != nil {
			h.logger.Warn().Err(err).Msg("failed to cache statistics")
		}
	}

	w.Header().Set("X-Cache", "MISS")
	respondJSON(w, h.logger, http.StatusOK, StatsResponse{Success: true, StatisticsSummary: summary})
}
