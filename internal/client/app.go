package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/handler/local"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/metrics"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/workers"
	"github.com/MKhiriev/go-offline-sync/models"
)

// MetricsNamespace prefixes every client metric.
const MetricsNamespace = "offline_client"

type App struct {
	services *service.ClientServices
	monitor  *service.ConnectivityMonitor
	bus      *events.Bus
	workers  *workers.Workers

	closers []io.Closer
	logger  *logger.Logger
}

// NewApp builds the client daemon from cfg. The returned App owns the
// storage and transport connections; call Close when done.
func NewApp(ctx context.Context, cfg *config.ClientConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) (*App, error) {
	app := &App{logger: logger}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	app.closers = append(app.closers, storages)

	remote, err := adapter.NewHTTPRemoteAdapter(cfg.Adapter, cfg.App, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create remote adapter: %w", err)
	}
	pingers := []adapter.Pinger{remote}

	if cfg.Adapter.GRPCAddress != "" {
		grpcPinger, err := adapter.NewGRPCHealthPinger(cfg.Adapter.GRPCAddress)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("create grpc health pinger: %w", err)
		}
		app.closers = append(app.closers, grpcPinger)
		pingers = append(pingers, grpcPinger)
	}

	app.bus = events.NewBus(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry, MetricsNamespace)
	app.bus.Subscribe(collector.Observe)

	app.services, err = service.NewClientServices(storages, remote, app.bus, cfg, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("create client services: %w", err)
	}

	app.monitor = service.NewConnectivityMonitor(app.services.SyncJob, cfg.Workers.ProbeInterval, cfg.Adapter.RequestTimeout, logger, pingers...)

	app.workers = workers.NewWorkers(
		workers.NewSyncJobWorker(app.services.SyncJob),
		app.monitor,
	)
	if cfg.LocalAPI.Address != "" {
		h := local.NewHandler(app.services, cfg.Sync.Collections, collector.Handler(), buildInfo, logger)
		app.workers.Add(workers.NewHTTPWorker("local-api", cfg.LocalAPI.Address, h.Init(), logger))
	}

	return app, nil
}

// Bus exposes the event bus so embedding code can subscribe listeners.
func (a *App) Bus() *events.Bus {
	return a.bus
}

// Run probes connectivity once so the scheduler starts with a known state,
// then runs every worker until ctx is done.
func (a *App) Run(ctx context.Context) error {
	online := a.monitor.Probe(ctx)
	a.services.SyncService.SetOnline(online)

	a.logger.Info().Bool("online", online).Msg("client daemon started")

	err := a.workers.Run(a.logger.WithContext(ctx))
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("client workers: %w", err)
	}

	a.logger.Info().Msg("client daemon stopped")
	return nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
