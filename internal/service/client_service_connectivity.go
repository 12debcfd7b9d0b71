package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// Notifier receives connectivity transitions. [ClientSyncJob] implements it.
type Notifier interface {
	Notify(online bool)
}

// ConnectivityMonitor probes the remote side at a fixed interval and feeds
// the result to a Notifier. The engine is online when every pinger answers.
type ConnectivityMonitor struct {
	pingers  []adapter.Pinger
	notifier Notifier
	interval time.Duration
	timeout  time.Duration

	logger *logger.Logger
}

// NewConnectivityMonitor returns a monitor probing every interval. Each probe
// round is bounded by timeout when it is positive.
func NewConnectivityMonitor(notifier Notifier, interval, timeout time.Duration, logger *logger.Logger, pingers ...adapter.Pinger) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		pingers:  pingers,
		notifier: notifier,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Probe pings every remote endpoint concurrently and reports whether all of
// them answered.
func (m *ConnectivityMonitor) Probe(ctx context.Context) bool {
	if len(m.pingers) == 0 {
		return false
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, p := range m.pingers {
		g.Go(func() error {
			return p.Ping(gCtx)
		})
	}

	if err := g.Wait(); err != nil {
		m.logger.Debug().Err(err).Msg("connectivity probe failed")
		return false
	}
	return true
}

// Run probes immediately and then every interval until ctx is done. It
// always returns nil; probe failures only mean offline.
func (m *ConnectivityMonitor) Run(ctx context.Context) error {
	m.notifier.Notify(m.Probe(ctx))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.notifier.Notify(m.Probe(ctx))
		}
	}
}
