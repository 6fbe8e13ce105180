package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name the API reports its health under, next to the
// server-wide "" entry.
const ServiceName = "taskmanager.v1.TaskManager"

// Checker reports whether a dependency is usable.
type Checker func(ctx context.Context) error

// HealthServer serves grpc.health.v1.Health with a status that follows a
// periodic dependency check.
type HealthServer struct {
	server  *health.Server
	check   Checker
	timeout time.Duration
	logger  *slog.Logger
	serving bool
}

// NewHealthServer creates a health server. Status starts as NOT_SERVING until
// the first successful check.
func NewHealthServer(check Checker, timeout time.Duration, logger *slog.Logger) *HealthServer {
	h := &HealthServer{
		server:  health.NewServer(),
		check:   check,
		timeout: timeout,
		logger:  logger,
	}
	h.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service to s.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Probe runs the check once and updates the served status. It is meant to be
// called periodically, e.g. from worker.Pool.Every.
func (h *HealthServer) Probe(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := h.check(checkCtx)
	switch {
	case err == nil && !h.serving:
		h.logger.Info("✅ [Health] Dependencies healthy, serving")
		h.serving = true
		h.setStatus(healthpb.HealthCheckResponse_SERVING)
	case err != nil && h.serving:
		h.logger.Warn("⚠️ [Health] Dependency check failed, not serving", "error", err)
		h.serving = false
		h.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	}
}

// Shutdown marks every service NOT_SERVING and ends open Watch streams.
func (h *HealthServer) Shutdown() {
	h.server.Shutdown()
}

func (h *HealthServer) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}
