package httpapi

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"hrms.org/internal/obs"
)

// HealthService publishes store readiness through grpc.health.v1.Health,
// both for the overall server ("") and for serviceName.
type HealthService struct {
	server *health.Server
	probe  ReadinessChecker
}

// NewHealthService starts in NOT_SERVING until the first Refresh.
func NewHealthService(probe ReadinessChecker) *HealthService {
	h := &HealthService{server: health.NewServer(), probe: probe}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service to s.
func (h *HealthService) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Refresh pings the store and updates the published status.
func (h *HealthService) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.probe != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.probe.Ping(ctx); err != nil {
			obs.Logger().Warn("grpc health: store not ready", "err", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.set(status)
	return status
}

// Run refreshes every interval until ctx is done, then marks the server as
// shutting down so watchers see NOT_SERVING.
func (h *HealthService) Run(ctx context.Context, interval time.Duration) {
	h.Refresh(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-t.C:
			h.Refresh(ctx)
		}
	}
}

func (h *HealthService) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(serviceName, status)
}
