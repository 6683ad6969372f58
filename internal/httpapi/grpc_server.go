package httpapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"fieldtrack.org/internal/obs"
)

// HealthServer exposes the standard gRPC health protocol backed by the same
// readiness probe the HTTP /readyz endpoint uses.
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	readiness readinessChecker
}

func NewHealthServer(rc readinessChecker) *HealthServer {
	return &HealthServer{readiness: rc}
}

// Register attaches the health service to a gRPC server.
func (h *HealthServer) Register(srv *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(srv, h)
}

func (h *HealthServer) Check(ctx context.Context, _ *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if err := h.readiness.Check(ctx); err != nil {
		obs.SetReady(false)
		return &grpc_health_v1.HealthCheckResponse{
			Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
		}, nil
	}
	obs.SetReady(true)
	return &grpc_health_v1.HealthCheckResponse{
		Status: grpc_health_v1.HealthCheckResponse_SERVING,
	}, nil
}

func (h *HealthServer) Watch(_ *grpc_health_v1.HealthCheckRequest, _ grpc_health_v1.Health_WatchServer) error {
	return status.Error(codes.Unimplemented, "watch is not supported")
}
