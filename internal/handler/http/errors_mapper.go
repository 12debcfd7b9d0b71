package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrUnknownDevice:           http.StatusForbidden,
	service.ErrUnknownCollection:       http.StatusNotFound,

	store.ErrInvalidRecord:   http.StatusBadRequest,
	store.ErrUnknownAction:   http.StatusBadRequest,
	store.ErrRetryable:       http.StatusServiceUnavailable,
	store.ErrQueueItemExists: http.StatusConflict,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrDecodingRow:          http.StatusInternalServerError,

	ErrIdempotencyKeyMismatch: http.StatusBadRequest,
}

// statusFromError maps err to an HTTP status by matching the sentinel errors
// above with errors.Is. Unknown errors map to 500.
func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
