package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInternalServerError = errors.New("internal server error")

	// ErrUnavailable covers 429, 502, 503 and 504: the remote is up but
	// cannot serve the request now.
	ErrUnavailable = errors.New("remote unavailable")

	// ErrRemoteRejected is returned when the remote answers 2xx with
	// success=false.
	ErrRemoteRejected = errors.New("remote rejected request")

	// ErrNotServing is returned by the gRPC prober for any health status
	// other than SERVING.
	ErrNotServing = errors.New("remote is not serving")
)
