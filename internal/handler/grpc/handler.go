// Package grpc implements the gRPC surface of the reference cloud server.
//
// The only service exposed is the standard gRPC health service, which the
// client daemon may use as its connectivity probe instead of GET /api/ping.
package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
)

// RecordsServiceName is the health service name reported for the record
// API in addition to the overall ("") status.
const RecordsServiceName = "offline.sync.Records"

// Handler is the root gRPC transport handler.
//
// A handler instance is created once at startup and shared by the gRPC
// server. Its health status starts as SERVING and is flipped to NOT_SERVING
// by [Handler.Shutdown] so probes fail before the listener closes.
type Handler struct {
	services *service.Services
	health   *health.Server

	logger *logger.Logger
}

// NewHandler constructs a [Handler] with the provided service container and
// logger, and returns the initialized instance.
func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(RecordsServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Handler{
		services: services,
		health:   hs,
		logger:   logger,
	}
}

// Register attaches every service of the handler to s.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Shutdown reports NOT_SERVING for all services and ignores later updates.
func (h *Handler) Shutdown() {
	h.logger.Info().Msg("gRPC health switched to NOT_SERVING")
	h.health.Shutdown()
}
