package workers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

const httpShutdownTimeout = 5 * time.Second

// HTTPWorker serves a handler on address until the worker context ends.
type HTTPWorker struct {
	name    string
	address string
	handler http.Handler

	logger *logger.Logger
}

func NewHTTPWorker(name, address string, handler http.Handler, logger *logger.Logger) *HTTPWorker {
	return &HTTPWorker{
		name:    name,
		address: address,
		handler: handler,
		logger:  logger,
	}
}

func (h *HTTPWorker) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", h.address)
	if err != nil {
		return fmt.Errorf("%s listen %s: %w", h.name, h.address, err)
	}
	return h.serve(ctx, lis)
}

func (h *HTTPWorker) serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           h.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info().Str("worker", h.name).Str("address", lis.Addr().String()).Msg("http worker listening")
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s serve: %w", h.name, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		h.logger.Err(err).Str("func", "HTTPWorker.Run").Str("worker", h.name).Msg("shutdown")
	}
	<-errCh
	return nil
}
