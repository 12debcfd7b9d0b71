// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
)

// clientSyncService is the sync cycle controller. It is Idle until RunCycle
// wins the inProgress flag, and returns to Idle on every exit path.
type clientSyncService struct {
	queue     store.QueueRepository
	snapshots store.SnapshotRepository
	remote    adapter.RemoteAdapter
	emitter   events.Emitter

	collections []string
	resolver    ConflictResolver
	backoff     Backoff
	locks       *collectionLocks
	now         func() time.Time

	online     atomic.Bool
	inProgress atomic.Bool

	logger *logger.Logger
}

// NewClientSyncService builds the controller from the reconciliation policy
// in cfg. The engine starts offline.
func NewClientSyncService(queue store.QueueRepository, snapshots store.SnapshotRepository, remote adapter.RemoteAdapter, emitter events.Emitter, cfg config.ClientSync, logger *logger.Logger) (ClientSyncService, error) {
	return newClientSyncService(queue, snapshots, remote, emitter, cfg, newCollectionLocks(), logger)
}

func newClientSyncService(queue store.QueueRepository, snapshots store.SnapshotRepository, remote adapter.RemoteAdapter, emitter events.Emitter, cfg config.ClientSync, locks *collectionLocks, logger *logger.Logger) (*clientSyncService, error) {
	resolver, err := NewConflictResolver(cfg.ConflictPolicy, cfg.TimestampField)
	if err != nil {
		return nil, err
	}

	return &clientSyncService{
		queue:       queue,
		snapshots:   snapshots,
		remote:      remote,
		emitter:     emitter,
		collections: append([]string(nil), cfg.Collections...),
		resolver:    resolver,
		backoff:     NewBackoff(cfg.BackoffBase, cfg.BackoffMax),
		locks:       locks,
		now:         time.Now,
		logger:      logger,
	}, nil
}

func (s *clientSyncService) SetOnline(online bool) bool {
	return s.online.Swap(online) != online
}

func (s *clientSyncService) State() models.SyncState {
	return models.SyncState{
		Online:         s.online.Load(),
		SyncInProgress: s.inProgress.Load(),
	}
}

// RunCycle implements ClientSyncService.
//
// Collections are pulled one by one; a failed fetch or merge is logged and
// counted, the next collection proceeds. Then every pending item is sent in
// queue order; a delivered item is removed, a failed one is marked and stays
// queued. Items still inside their backoff window are skipped.
//
// sync-complete is emitted once both phases ran. A cycle that cannot read
// the queue, is cancelled or panics emits sync-error instead.
func (s *clientSyncService) RunCycle(ctx context.Context) (result models.CompletePayload, err error) {
	log := logger.FromContextOr(ctx, s.logger)

	if !s.online.Load() {
		return result, ErrOffline
	}
	if !s.inProgress.CompareAndSwap(false, true) {
		return result, ErrSyncInProgress
	}
	defer s.inProgress.Store(false)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCyclePanic, r)
			log.Error().Str("func", "clientSyncService.RunCycle").Any("panic", r).Bytes("stack", debug.Stack()).Msg("sync cycle panicked")
			s.emitter.Emit(models.EventSyncError, models.ErrorPayload{Error: err.Error()})
		}
	}()

	s.emitter.Emit(models.EventSyncStart, models.EmptyPayload{})
	start := s.now()

	if err = s.pull(ctx, &result); err == nil {
		err = s.push(ctx, &result)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrCycleFailed, err)
		log.Err(err).Str("func", "clientSyncService.RunCycle").Msg("sync cycle aborted")
		s.emitter.Emit(models.EventSyncError, models.ErrorPayload{Error: err.Error()})
		return result, err
	}

	result.Success = true
	log.Info().
		Int("pulled", result.Pulled).
		Int("pushed", result.Pushed).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Dur("took", s.now().Sub(start)).
		Msg("sync cycle complete")
	s.emitter.Emit(models.EventSyncComplete, result)
	return result, nil
}

func (s *clientSyncService) pull(ctx context.Context, result *models.CompletePayload) error {
	log := logger.FromContextOr(ctx, s.logger)

	for _, collection := range s.collections {
		if err := ctx.Err(); err != nil {
			return err
		}

		snapshot, err := s.pullCollection(ctx, collection)
		if err != nil {
			result.Failed++
			log.Err(err).Str("func", "clientSyncService.pull").Str("collection", collection).Msg("pull failed, continuing with next collection")
			continue
		}

		result.Pulled++
		s.emitter.Emit(models.EventDataUpdated, models.DataPayload{Collection: collection, Data: snapshot})
	}
	return nil
}

func (s *clientSyncService) pullCollection(ctx context.Context, collection string) (models.Snapshot, error) {
	remote, err := s.remote.Fetch(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	unlock := s.locks.lock(collection)
	defer unlock()

	deleted, err := s.pendingDeletes(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("read pending deletes: %w", err)
	}
	if len(deleted) > 0 {
		remote = withoutIDs(remote, deleted)
	}

	local, err := s.snapshots.Get(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("read local snapshot: %w", err)
	}

	merged := Merge(local, remote, s.resolver)
	if err = s.snapshots.Put(ctx, collection, merged); err != nil {
		return nil, fmt.Errorf("write merged snapshot: %w", err)
	}
	return merged, nil
}

// pendingDeletes returns the ids of collection records deleted locally whose
// delete has not been delivered yet. The remote still serves them until then.
func (s *clientSyncService) pendingDeletes(ctx context.Context, collection string) (map[string]struct{}, error) {
	items, err := s.queue.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{})
	for _, item := range items {
		if item.Payload.Collection != collection || item.Payload.Action != models.ActionDelete {
			continue
		}
		if id, ok := item.Payload.Record.ID(); ok {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func withoutIDs(records []models.Record, ids map[string]struct{}) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if id, ok := rec.ID(); ok {
			if _, drop := ids[id]; drop {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

func (s *clientSyncService) push(ctx context.Context, result *models.CompletePayload) error {
	log := logger.FromContextOr(ctx, s.logger)

	items, err := s.queue.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("list pending queue items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	now := s.now()
	for _, item := range items {
		if err = ctx.Err(); err != nil {
			return err
		}

		if !s.backoff.Ready(item, now) {
			result.Skipped++
			continue
		}

		if err = s.remote.Send(ctx, item); err != nil {
			result.Failed++
			log.Err(err).Str("func", "clientSyncService.push").Str("id", item.ID).Int("attempts", item.Attempts+1).Msg("send failed, item stays queued")
			if markErr := s.queue.MarkFailed(ctx, item.ID, s.now().UTC(), err.Error()); markErr != nil {
				log.Err(markErr).Str("func", "clientSyncService.push").Str("id", item.ID).Msg("error recording failed attempt")
			}
			continue
		}

		// a delivered item that cannot be removed is sent again next cycle
		if err = s.queue.Remove(ctx, item.ID); err != nil {
			result.Failed++
			log.Err(err).Str("func", "clientSyncService.push").Str("id", item.ID).Msg("delivered item could not be removed")
			continue
		}
		result.Pushed++
	}

	if result.Pushed > 0 {
		n, err := s.queue.Count(ctx)
		if err != nil {
			log.Err(err).Str("func", "clientSyncService.push").Msg("error counting queue items")
			return nil
		}
		s.emitter.Emit(models.EventQueueUpdated, models.QueuePayload{Count: n})
	}
	return nil
}
