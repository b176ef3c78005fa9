package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"scamshield-lab/pkg/logger"
)

// Pinger is a dependency checked by /ready
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	deps      map[string]Pinger
	version   string
	logger    *logger.Logger
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. Nil dependencies are skipped.
func NewHealthHandler(deps map[string]Pinger, version string, log *logger.Logger) *HealthHandler {
	live := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			live[name] = p
		}
	}
	return &HealthHandler{
		deps:      live,
		version:   version,
		logger:    log.WithComponent("health"),
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

const readyTimeout = 2 * time.Second

func (h *HealthHandler) response(status string, checks map[string]string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.response("healthy", nil))
}

// Ready handles GET /ready. Dependencies are pinged in parallel under one
// shared timeout; any failure makes the service not ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed bool
	)
	checks := make(map[string]string, len(h.deps))
	for name, p := range h.deps {
		name, p := name, p
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := "healthy"
			if err := p.Ping(ctx); err != nil {
				result = "unhealthy: " + err.Error()
				h.logger.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
			}
			mu.Lock()
			checks[name] = result
			failed = failed || result != "healthy"
			mu.Unlock()
		}()
	}
	wg.Wait()

	if failed {
		respondJSON(w, h.logger, http.StatusServiceUnavailable, h.response("not ready", checks))
		return
	}
	respondJSON(w, h.logger, http.StatusOK, h.response("ready", checks))
}
