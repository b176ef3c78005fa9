package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"google.golang.org/grpc"

	"scamshield-lab/internal/api"
	"scamshield-lab/internal/api/handlers"
	apimiddleware "scamshield-lab/internal/api/middleware"
	"scamshield-lab/internal/config"
	"scamshield-lab/internal/domain/models"
	"scamshield-lab/internal/domain/services"
	grpchealth "scamshield-lab/internal/grpc/health"
	"scamshield-lab/internal/infrastructure/cache"
	"scamshield-lab/internal/infrastructure/database"
	"scamshield-lab/internal/infrastructure/database/repository"
	"scamshield-lab/internal/streaming"
	"scamshield-lab/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		TimeFormat: cfg.Logger.TimeFormat,
		Service:    cfg.App.Name,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("scamshield exited")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info().
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting ScamShield")

	db, redisCache := initInfrastructure(ctx, cfg, log)
	if db != nil {
		defer db.Close()
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	var history services.HistoryRepository
	if db != nil && cfg.History.Enabled {
		repo := repository.NewAnalysisRepository(db.Pool(), log)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Error().Err(err).Msg("schema setup failed, history disabled")
		} else {
			history = repo
		}
	}

	var publisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		p, err := streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable, events stay local")
		} else {
			publisher = p
		}
	}
	eventBus := streaming.NewEventBus(publisher, log)
	defer eventBus.Close()
	go streaming.RunAuditLog(ctx, eventBus, &streaming.Subscription{MinLevel: models.RiskLevelCritical}, log)

	rules := services.NewRuleset(cfg.Detection)
	urlAnalyzer := services.NewURLAnalyzer(rules, log)
	service := services.NewAnalysisService(services.AnalysisServiceDeps{
		Calls: services.NewCallAnalyzer(rules,
			services.LoadBackend(cfg.Model.CallModelPath, models.CallFeatureNames, log), log),
		SMS: services.NewSMSAnalyzer(rules, urlAnalyzer,
			services.LoadBackend(cfg.Model.SMSModelPath, models.MessageFeatureNames, log), log),
		URLs:        urlAnalyzer,
		Engine:      services.NewRiskEngine(log),
		History:     history,
		Events:      eventBus,
		ReportLimit: cfg.History.ReportLimit,
		Logger:      log,
	})

	if cfg.History.RetentionDays > 0 {
		go service.RunRetention(ctx, cfg.History.RetentionDays, cfg.History.CleanupInterval)
	}

	// typed nils would pass a nil check inside the handlers, so only live deps go in
	probes := map[string]handlers.Pinger{}
	if db != nil {
		probes["postgres"] = db
	}
	if redisCache != nil {
		probes["redis"] = redisCache
	}
	if publisher != nil {
		probes["nats"] = publisher
	}

	deps := handlers.Dependencies{
		Service:      service,
		CacheTTL:     cfg.Stats.CacheTTL,
		DefaultDays:  cfg.Stats.DefaultDays,
		Dependencies: probes,
		Version:      cfg.App.Version,
		Logger:       log,
	}
	var limiter apimiddleware.RateLimitStore
	if redisCache != nil {
		deps.Cache = redisCache
		limiter = redisCache
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.HTTPPort)),
		Handler:      api.NewRouter(*cfg, handlers.NewHandlers(deps), limiter, log).Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	grpcListener, err := net.Listen("tcp", net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.GRPCPort)))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	grpcServer := grpc.NewServer()
	checker := grpchealth.NewChecker(grpcProbes(probes), log)
	checker.Register(grpcServer)
	go checker.Run(ctx)

	errc := make(chan error, 2)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		log.Info().Str("addr", grpcListener.Addr().String()).Msg("gRPC health listening")
		if err := grpcServer.Serve(grpcListener); err != nil {
			errc <- fmt.Errorf("grpc: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case serveErr = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown")
	}
	return serveErr
}

func grpcProbes(in map[string]handlers.Pinger) map[string]grpchealth.Pinger {
	out := make(map[string]grpchealth.Pinger, len(in))
	for name, p := range in {
		out[name] = p
	}
	return out
}

// initInfrastructure connects to the optional stores. Failures are logged and
// the service runs without that store.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without history")
			db = nil
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache and rate limiting")
			redisCache = nil
		}
	}

	return db, redisCache
}
