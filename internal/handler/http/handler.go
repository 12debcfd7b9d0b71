package http

import (
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
)

type Handler struct {
	services *service.Services
	hasher   *utils.Hasher

	logger *logger.Logger
}

// NewHandler returns the REST handler. A hasher built from an empty key
// disables the HashSHA256 check.
func NewHandler(services *service.Services, hasher *utils.Hasher, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		hasher:   hasher,
		logger:   logger,
	}
}
