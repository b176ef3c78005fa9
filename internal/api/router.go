package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"scamshield-lab/internal/api/handlers"
	apimiddleware "scamshield-lab/internal/api/middleware"
	"scamshield-lab/internal/config"
	"scamshield-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	limiter  apimiddleware.RateLimitStore
	logger   *logger.Logger
}

// NewRouter creates a new Router instance. limiter may be nil.
func NewRouter(cfg config.Config, h *handlers.Handlers, limiter apimiddleware.RateLimitStore, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		limiter:  limiter,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	router.Route("/api/v1", func(api chi.Router) {
		if len(r.config.Auth.APIKeys) > 0 {
			api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKeys))
		}
		if r.config.RateLimit.Enabled {
			api.Use(apimiddleware.RateLimiter(r.limiter, r.config.RateLimit, r.logger))
		}

		api.Route("/analyze", func(analyze chi.Router) {
			analyze.Post("/call", r.handlers.Analysis.AnalyzeCall)
			analyze.Post("/sms", r.handlers.Analysis.AnalyzeSMS)
			analyze.Post("/url", r.handlers.Analysis.CheckURL)
			analyze.Post("/url/batch", r.handlers.Analysis.CheckURLBatch)
		})

		api.Post("/assess", r.handlers.Analysis.Assess)
		api.Get("/analyses/{type}", r.handlers.History.Recent)
		api.Get("/statistics", r.handlers.Stats.Get)
		api.Get("/tips", r.handlers.Tips.List)
	})

	router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"Resource not found"}`))
	})

	return router
}
