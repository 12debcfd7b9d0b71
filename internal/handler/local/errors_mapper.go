package local

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-offline-sync/internal/service"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided: http.StatusBadRequest,
	service.ErrUnknownCollection:   http.StatusNotFound,
	service.ErrSyncInProgress:      http.StatusConflict,
	service.ErrOffline:             http.StatusServiceUnavailable,
	service.ErrCycleFailed:         http.StatusBadGateway,
	service.ErrCyclePanic:          http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}
