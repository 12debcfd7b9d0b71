package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

type clientRecordService struct {
	snapshots   store.SnapshotRepository
	queue       ClientQueueService
	emitter     events.Emitter
	locks       *collectionLocks
	collections map[string]struct{}
	ids         *utils.UUIDGenerator

	logger *logger.Logger
}

// NewClientRecordService returns the local edit service for the given
// collections.
func NewClientRecordService(snapshots store.SnapshotRepository, queue ClientQueueService, emitter events.Emitter, collections []string, logger *logger.Logger) ClientRecordService {
	return newClientRecordService(snapshots, queue, emitter, collections, newCollectionLocks(), logger)
}

func newClientRecordService(snapshots store.SnapshotRepository, queue ClientQueueService, emitter events.Emitter, collections []string, locks *collectionLocks, logger *logger.Logger) *clientRecordService {
	known := make(map[string]struct{}, len(collections))
	for _, c := range collections {
		known[c] = struct{}{}
	}

	return &clientRecordService{
		snapshots:   snapshots,
		queue:       queue,
		emitter:     emitter,
		locks:       locks,
		collections: known,
		ids:         utils.NewUUIDGenerator(),
		logger:      logger,
	}
}

func (s *clientRecordService) List(ctx context.Context, collection string) (models.Snapshot, error) {
	if err := s.checkCollection(collection); err != nil {
		return nil, err
	}

	snapshot, err := s.snapshots.Get(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("get snapshot of %s: %w", collection, err)
	}
	return snapshot, nil
}

func (s *clientRecordService) Upsert(ctx context.Context, collection string, record models.Record) (models.Record, error) {
	log := logger.FromContextOr(ctx, s.logger)

	if err := s.checkCollection(collection); err != nil {
		return nil, err
	}

	rec := record.Clone()
	id, ok := rec.ID()
	if !ok {
		id = s.ids.Generate()
		rec[models.FieldID] = id
	}

	// the intent is made durable before the local view changes
	if _, err := s.queue.Enqueue(ctx, models.Mutation{Collection: collection, Action: models.ActionUpsert, Record: rec}); err != nil {
		return nil, err
	}
	rec[models.FieldSynced] = false

	snapshot, err := s.modify(ctx, collection, func(snapshot models.Snapshot) models.Snapshot {
		for i, existing := range snapshot {
			if existingID, ok := existing.ID(); ok && existingID == id {
				snapshot[i] = overlay(existing, rec)
				return snapshot
			}
		}
		return append(snapshot, rec)
	})
	if err != nil {
		log.Err(err).Str("func", "clientRecordService.Upsert").Str("collection", collection).Str("id", id).Msg("queued upsert but failed to update local snapshot")
		return nil, err
	}

	s.emitter.Emit(models.EventDataUpdated, models.DataPayload{Collection: collection, Data: snapshot})
	return rec, nil
}

func (s *clientRecordService) Delete(ctx context.Context, collection, id string) error {
	log := logger.FromContextOr(ctx, s.logger)

	if err := s.checkCollection(collection); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: empty record id", ErrInvalidDataProvided)
	}

	if _, err := s.queue.Enqueue(ctx, models.Mutation{Collection: collection, Action: models.ActionDelete, Record: models.Record{models.FieldID: id}}); err != nil {
		return err
	}

	snapshot, err := s.modify(ctx, collection, func(snapshot models.Snapshot) models.Snapshot {
		out := snapshot[:0]
		for _, existing := range snapshot {
			if existingID, ok := existing.ID(); ok && existingID == id {
				continue
			}
			out = append(out, existing)
		}
		return out
	})
	if err != nil {
		log.Err(err).Str("func", "clientRecordService.Delete").Str("collection", collection).Str("id", id).Msg("queued delete but failed to update local snapshot")
		return err
	}

	s.emitter.Emit(models.EventDataUpdated, models.DataPayload{Collection: collection, Data: snapshot})
	return nil
}

// modify applies fn to the snapshot of collection under the collection lock
// and stores the result.
func (s *clientRecordService) modify(ctx context.Context, collection string, fn func(models.Snapshot) models.Snapshot) (models.Snapshot, error) {
	unlock := s.locks.lock(collection)
	defer unlock()

	snapshot, err := s.snapshots.Get(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("get snapshot of %s: %w", collection, err)
	}

	snapshot = fn(snapshot)
	if err = s.snapshots.Put(ctx, collection, snapshot); err != nil {
		return nil, fmt.Errorf("put snapshot of %s: %w", collection, err)
	}
	return snapshot, nil
}

func (s *clientRecordService) checkCollection(collection string) error {
	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return nil
}
