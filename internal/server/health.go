package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DuelServiceName is the health-check service name of the duel engine.
const DuelServiceName = "wasteland.duel"

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

// HealthService serves the standard gRPC health protocol. It reports
// DuelServiceName and the overall server status.
type HealthService struct {
	addr   string
	server *grpc.Server
	health *health.Server
	logger *zap.Logger
}

// NewHealthService creates a HealthService that will listen on addr.
//
// Precondition: logger must be non-nil.
// Postcondition: Both statuses start as NOT_SERVING.
func NewHealthService(addr string, logger *zap.Logger) *HealthService {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(DuelServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	return &HealthService{addr: addr, server: srv, health: hs, logger: logger}
}

// SetServing flips both statuses.
func (h *HealthService) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(DuelServiceName, status)
}

// Serve marks the service SERVING and blocks serving lis.
func (h *HealthService) Serve(lis net.Listener) error {
	h.SetServing(true)
	h.logger.Info("health endpoint listening", zap.String("addr", lis.Addr().String()))
	if err := h.server.Serve(lis); err != nil {
		return fmt.Errorf("serving health: %w", err)
	}
	return nil
}

// Start listens on the configured address and serves until Stop.
func (h *HealthService) Start() error {
	lis, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.addr, err)
	}
	return h.Serve(lis)
}

// Stop reports NOT_SERVING to watchers and drains the server.
func (h *HealthService) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}

// Watch runs probe every interval and mirrors its result into the serving
// status until ctx is done.
//
// Precondition: interval > 0.
func (h *HealthService) Watch(ctx context.Context, interval time.Duration, probe Probe) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		err := probe(ctx)
		switch {
		case err != nil && healthy:
			h.logger.Warn("dependency unhealthy", zap.Error(err))
		case err == nil && !healthy:
			h.logger.Info("dependency recovered")
		}
		healthy = err == nil
		h.SetServing(healthy)
	}
}
