// Package workers runs the long-lived background parts of the client daemon
// under one lifecycle.
//
// A [Worker] blocks until its context ends. [Workers] starts all of them in
// an errgroup; the first failing worker cancels the rest.
package workers

import "context"

// Worker is a background task. Run blocks until ctx is cancelled or the
// task fails. Returning nil on cancellation is expected.
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc adapts a plain function to [Worker].
type WorkerFunc func(ctx context.Context) error

func (f WorkerFunc) Run(ctx context.Context) error {
	return f(ctx)
}
