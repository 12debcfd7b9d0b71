// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/mock"
	"github.com/MKhiriev/go-offline-sync/models"
)

// spySyncService counts RunCycle calls and honours the single-flight gates
// like the real controller does.
type spySyncService struct {
	calls  atomic.Int64
	online atomic.Bool
}

func (s *spySyncService) RunCycle(_ context.Context) (models.CompletePayload, error) {
	if !s.online.Load() {
		return models.CompletePayload{}, ErrOffline
	}
	s.calls.Add(1)
	return models.CompletePayload{Success: true}, nil
}

func (s *spySyncService) SetOnline(online bool) bool {
	return s.online.Swap(online) != online
}

func (s *spySyncService) State() models.SyncState {
	return models.SyncState{Online: s.online.Load()}
}

func newTestJob(t *testing.T, spy ClientSyncService, interval, startup time.Duration) (ClientSyncJob, *eventRecorder) {
	t.Helper()
	rec := newEventRecorder(t)
	job := NewClientSyncJob(spy, rec, config.ClientWorkers{SyncInterval: interval, StartupDelay: startup}, logger.Nop())
	t.Cleanup(job.Stop)
	return job, rec
}

// ── NewClientSyncJob ─────────────────────────────────────────────────────────

func TestNewClientSyncJob_DefaultInterval(t *testing.T) {
	job := NewClientSyncJob(&spySyncService{}, newEventRecorder(t), config.ClientWorkers{}, logger.Nop())
	require.NotNil(t, job)
	assert.Equal(t, config.DefaultSyncInterval, job.(*clientSyncJob).interval)
}

// ── timers ───────────────────────────────────────────────────────────────────

func TestClientSyncJob_StartupTriggerWhenOnline(t *testing.T) {
	spy := &spySyncService{}
	spy.online.Store(true)
	job, _ := newTestJob(t, spy, time.Hour, 10*time.Millisecond)

	job.Start(context.Background())

	assert.Eventually(t, func() bool { return spy.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestClientSyncJob_PeriodicTriggerWhenOnline(t *testing.T) {
	spy := &spySyncService{}
	spy.online.Store(true)
	job, _ := newTestJob(t, spy, 10*time.Millisecond, time.Hour)

	job.Start(context.Background())

	assert.Eventually(t, func() bool { return spy.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestClientSyncJob_OfflineAtStartupNeverTriggers(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncSvc := mock.NewMockClientSyncService(ctrl)
	syncSvc.EXPECT().State().Return(models.SyncState{Online: false}).AnyTimes()
	syncSvc.EXPECT().RunCycle(gomock.Any()).Times(0)

	job, _ := newTestJob(t, syncSvc, 5*time.Millisecond, time.Millisecond)
	job.Start(context.Background())

	// several periodic intervals and the startup delay elapse
	time.Sleep(60 * time.Millisecond)
	job.Stop()
}

func TestClientSyncJob_Stop_StopsGoroutine(t *testing.T) {
	spy := &spySyncService{}
	spy.online.Store(true)
	job, _ := newTestJob(t, spy, 10*time.Millisecond, time.Hour)

	job.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, callsAfterStop, spy.calls.Load(), "no cycles after Stop")
}

func TestClientSyncJob_Stop_BeforeStart_NoPanic(t *testing.T) {
	job, _ := newTestJob(t, &spySyncService{}, time.Hour, time.Hour)
	assert.NotPanics(t, func() { job.Stop() })
	assert.NotPanics(t, func() { job.Stop() })
}

func TestClientSyncJob_ContextCancelStopsJob(t *testing.T) {
	spy := &spySyncService{}
	spy.online.Store(true)
	job, _ := newTestJob(t, spy, 5*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx)
	cancel()

	time.Sleep(20 * time.Millisecond)
	calls := spy.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, spy.calls.Load())
}

// ── Notify ───────────────────────────────────────────────────────────────────

func TestClientSyncJob_NotifyOnlineTriggersCycle(t *testing.T) {
	spy := &spySyncService{}
	job, rec := newTestJob(t, spy, time.Hour, time.Hour)

	job.Start(context.Background())
	job.Notify(true)

	assert.Eventually(t, func() bool { return spy.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []models.EventKind{models.EventOnline}, rec.kinds())
	assert.True(t, spy.State().Online)
}

func TestClientSyncJob_NotifyOfflineDoesNotTrigger(t *testing.T) {
	spy := &spySyncService{}
	spy.online.Store(true)
	job, rec := newTestJob(t, spy, time.Hour, time.Hour)

	job.Start(context.Background())
	job.Notify(false)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, spy.calls.Load())
	assert.Equal(t, []models.EventKind{models.EventOffline}, rec.kinds())
}

func TestClientSyncJob_NotifyWithoutTransitionIsSilent(t *testing.T) {
	spy := &spySyncService{}
	job, rec := newTestJob(t, spy, time.Hour, time.Hour)
	job.Start(context.Background())

	job.Notify(false)
	job.Notify(true)
	job.Notify(true)
	job.Notify(true)

	assert.Eventually(t, func() bool { return spy.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), spy.calls.Load())
	assert.Equal(t, []models.EventKind{models.EventOnline}, rec.kinds())
}

func TestClientSyncJob_NotifyBeforeStartUpdatesStateOnly(t *testing.T) {
	spy := &spySyncService{}
	job, rec := newTestJob(t, spy, time.Hour, 10*time.Millisecond)

	job.Notify(true)
	assert.True(t, spy.State().Online)
	assert.Equal(t, []models.EventKind{models.EventOnline}, rec.kinds())
	assert.Zero(t, spy.calls.Load())

	// online at start: the startup trigger runs the first cycle
	job.Start(context.Background())
	assert.Eventually(t, func() bool { return spy.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestClientSyncJob_NotifyAfterStopIsIgnored(t *testing.T) {
	spy := &spySyncService{}
	job, rec := newTestJob(t, spy, time.Hour, time.Hour)

	job.Start(context.Background())
	job.Stop()
	job.Notify(true)

	time.Sleep(20 * time.Millisecond)
	assert.False(t, spy.State().Online)
	assert.Zero(t, spy.calls.Load())
	assert.Empty(t, rec.kinds())
}

func TestClientSyncJob_WithRealController(t *testing.T) {
	f := newSyncFixture(t, config.ClientSync{})
	f.svc.SetOnline(false)
	enqueueIDs(t, f.queue, "a")

	f.remote.EXPECT().Fetch(gomock.Any(), "orders").Return(nil, nil).MinTimes(1)
	f.remote.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	job := NewClientSyncJob(f.svc, f.events, config.ClientWorkers{SyncInterval: time.Hour, StartupDelay: time.Hour}, logger.Nop())
	job.Start(context.Background())
	defer job.Stop()

	job.Notify(true)

	assert.Eventually(t, func() bool {
		_, ok := f.events.last(models.EventSyncComplete)
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, pendingIDs(t, f.queue))
	assert.Equal(t, models.EventOnline, f.events.kinds()[0])
}

func TestClientSyncJob_ListenerMayCallNotifyAndStop(t *testing.T) {
	spy := &spySyncService{}
	job, rec := newTestJob(t, spy, time.Hour, time.Hour)
	rec.Subscribe(func(e models.Event) {
		switch e.Kind {
		case models.EventOnline:
			job.Notify(false)
		case models.EventOffline:
			job.Stop()
		}
	})
	job.Start(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		job.Notify(true)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked while a listener re-entered the job")
	}
	assert.Equal(t, []models.EventKind{models.EventOnline, models.EventOffline}, rec.kinds())
	assert.False(t, spy.State().Online)
}
