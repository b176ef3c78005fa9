package health

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"scamshield-lab/pkg/logger"
)

// ServiceName is the name reported alongside the overall ("") status
const ServiceName = "scamshield.v1.RiskAssessment"

const (
	checkInterval = 10 * time.Second
	pingTimeout   = 2 * time.Second
)

// Pinger is a dependency whose reachability gates the serving status
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker keeps a gRPC health server in sync with its dependencies
type Checker struct {
	server *health.Server
	deps   map[string]Pinger
	logger *logger.Logger
}

// NewChecker creates a checker over the named dependencies. Nil entries are
// skipped so disabled backends do not mark the service unhealthy.
func NewChecker(deps map[string]Pinger, log *logger.Logger) *Checker {
	live := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			live[name] = p
		}
	}

	c := &Checker{
		server: health.NewServer(),
		deps:   live,
		logger: log.WithComponent("grpc-health"),
	}
	c.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	return c
}

// Register attaches the health service to a gRPC server
func (c *Checker) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, c.server)
}

// Server returns the underlying health server
func (c *Checker) Server() *health.Server {
	return c.server
}

// Check pings every dependency once and updates the serving status
func (c *Checker) Check(ctx context.Context) bool {
	healthy := true
	for name, p := range c.deps {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := p.Ping(pingCtx)
		cancel()
		if err != nil {
			c.logger.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			healthy = false
		}
	}

	if healthy {
		c.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	} else {
		c.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	return healthy
}

// Run checks every interval until ctx is done, then reports NOT_SERVING
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	c.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

func (c *Checker) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
}
