package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

type clientSyncJob struct {
	syncService  ClientSyncService
	emitter      events.Emitter
	interval     time.Duration
	startupDelay time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	kick    chan struct{}
	stopped bool
	wg      sync.WaitGroup

	logger *logger.Logger
}

// NewClientSyncJob creates the scheduler of syncService. The job is idle
// until Start is called. A non-positive SyncInterval defaults to
// config.DefaultSyncInterval.
func NewClientSyncJob(syncService ClientSyncService, emitter events.Emitter, cfg config.ClientWorkers, logger *logger.Logger) ClientSyncJob {
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = config.DefaultSyncInterval
	}

	return &clientSyncJob{
		syncService:  syncService,
		emitter:      emitter,
		interval:     interval,
		startupDelay: cfg.StartupDelay,
		logger:       logger,
	}
}

// Start implements ClientSyncJob. It stops any previously running job, then
// launches the goroutine owning the timers. Every cycle runs on that
// goroutine; a trigger arriving during a cycle is coalesced into at most one
// follow-up. The goroutine exits when ctx is cancelled or Stop is called.
func (j *clientSyncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(j.logger.WithContext(ctx))
	j.cancel = cancel
	j.kick = make(chan struct{}, 1)
	j.stopped = false
	kick := j.kick
	j.wg.Add(1)
	j.mu.Unlock()

	onlineAtStart := j.syncService.State().Online

	go func() {
		defer j.wg.Done()
		j.loop(jobCtx, kick, onlineAtStart)
	}()
}

func (j *clientSyncJob) loop(ctx context.Context, kick <-chan struct{}, onlineAtStart bool) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	var startup <-chan time.Time
	if onlineAtStart {
		timer := time.NewTimer(j.startupDelay)
		defer timer.Stop()
		startup = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-startup:
			startup = nil
			j.trigger(ctx, "startup")
		case <-ticker.C:
			if j.syncService.State().Online {
				j.trigger(ctx, "interval")
			}
		case <-kick:
			j.trigger(ctx, "online")
		}
	}
}

func (j *clientSyncJob) trigger(ctx context.Context, reason string) {
	_, err := j.syncService.RunCycle(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrSyncInProgress), errors.Is(err, ErrOffline):
		logger.FromContext(ctx).Debug().Str("trigger", reason).Err(err).Msg("sync trigger skipped")
	default:
		logger.FromContext(ctx).Err(err).Str("func", "clientSyncJob.trigger").Str("trigger", reason).Msg("sync cycle failed")
	}
}

// Notify implements ClientSyncJob. Before Start the state is updated and the
// event emitted but no cycle is triggered; the startup trigger covers it.
// Listeners run after the job lock is released, so they may call Notify or
// Stop themselves.
func (j *clientSyncJob) Notify(online bool) {
	j.mu.Lock()
	if j.stopped || !j.syncService.SetOnline(online) {
		j.mu.Unlock()
		return
	}
	kick := j.kick
	j.mu.Unlock()

	if !online {
		j.emitter.Emit(models.EventOffline, models.EmptyPayload{})
		return
	}

	j.emitter.Emit(models.EventOnline, models.EmptyPayload{})
	if kick != nil {
		select {
		case kick <- struct{}{}:
		default:
		}
	}
}

// Stop implements ClientSyncJob. It cancels the background goroutine's
// context and blocks until the goroutine has fully exited. Safe to call when
// the job is not running.
//
// Cycle events are emitted on the job goroutine, so a sync-* listener must
// not call Stop; it should cancel the context given to Start instead.
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.kick = nil
	j.stopped = true
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
