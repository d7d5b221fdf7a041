package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}

// Health exposes grpc.health.v1 with one status for the whole process.
// It starts NOT_SERVING; flip it once dependencies are up.
type Health struct {
	hs *health.Server
}

func NewHealth() *Health {
	h := &Health{hs: health.NewServer()}
	h.hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *Health) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.hs)
}

// SetServing reports the process as (not) ready.
func (h *Health) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.hs.SetServingStatus("", st)
}

// Shutdown marks everything NOT_SERVING and ignores later updates.
func (h *Health) Shutdown() { h.hs.Shutdown() }
