package server

import "context"

// Server runs the enabled transports until ctx is cancelled and then shuts
// them down gracefully.
type Server interface {
	RunServer(ctx context.Context) error
}
