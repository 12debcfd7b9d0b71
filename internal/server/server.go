package server

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/handler"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

type server struct {
	httpServer *httpServer
	gRPCServer *grpcServer
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := &server{logger: logger}

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		s, err := newHTTPServer(handlers.HTTP.Init(), cfg.HTTPAddress, cfg.RequestTimeout, logger)
		if err != nil {
			return nil, err
		}
		servers.httpServer = s
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		s, err := newGRPCServer(handlers.GRPC, cfg.GRPCAddress, logger)
		if err != nil {
			if servers.httpServer != nil {
				servers.httpServer.listener.Close()
			}
			return nil, err
		}
		servers.gRPCServer = s
	}

	if servers.httpServer == nil && servers.gRPCServer == nil {
		return nil, errNoServersAreCreated
	}

	return servers, nil
}

// RunServer serves until ctx is done, then shuts every transport down. The
// first serve error also stops the remaining transports.
func (s *server) RunServer(ctx context.Context) error {
	if s.httpServer == nil && s.gRPCServer == nil {
		return errors.New("no servers to run")
	}

	g, gctx := errgroup.WithContext(ctx)

	if s.httpServer != nil {
		s.logger.Info().Str("address", s.httpServer.Addr()).Msg("Launching HTTP server")
		g.Go(s.httpServer.RunServer)
	}
	if s.gRPCServer != nil {
		s.logger.Info().Str("address", s.gRPCServer.Addr()).Msg("Launching GRPC server")
		g.Go(s.gRPCServer.RunServer)
	}

	g.Go(func() error {
		<-gctx.Done()
		s.close()
		return nil
	})

	err := g.Wait()
	s.logger.Info().Msg("server Shutdown gracefully")
	return err
}

func (s *server) close() {
	if s.httpServer != nil {
		s.httpServer.Shutdown()
	}
	if s.gRPCServer != nil {
		s.gRPCServer.Shutdown()
	}
}
