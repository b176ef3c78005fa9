package handlers

import (
	"time"

	"scamshield-lab/internal/domain/services"
	"scamshield-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Analysis *AnalysisHandler
	History  *HistoryHandler
	Stats    *StatsHandler
	Tips     *TipsHandler
}

// Dependencies holds dependencies for handlers. Cache and the readiness
// checks are optional.
type Dependencies struct {
	Service      *services.AnalysisService
	Cache        StatsCache
	CacheTTL     time.Duration
	DefaultDays  int
	Dependencies map[string]Pinger
	Version      string
	Logger       *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Dependencies, deps.Version, deps.Logger),
		Analysis: NewAnalysisHandler(deps.Service, deps.Logger),
		History:  NewHistoryHandler(deps.Service, deps.Logger),
		Stats:    NewStatsHandler(deps.Service, deps.Cache, deps.CacheTTL, deps.DefaultDays, deps.Logger),
		Tips:     NewTipsHandler(deps.Logger),
	}
}
