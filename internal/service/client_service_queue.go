package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/internal/validators"
	"github.com/MKhiriev/go-offline-sync/models"
)

type clientQueueService struct {
	queue     store.QueueRepository
	emitter   events.Emitter
	validator validators.Validator
	ids       *utils.UUIDGenerator
	now       func() time.Time

	logger *logger.Logger
}

// NewClientQueueService returns a queue service accepting mutations of the
// given collections.
func NewClientQueueService(queue store.QueueRepository, emitter events.Emitter, collections []string, logger *logger.Logger) ClientQueueService {
	return &clientQueueService{
		queue:     queue,
		emitter:   emitter,
		validator: validators.NewMutationValidator(collections...),
		ids:       utils.NewUUIDGenerator(),
		now:       time.Now,
		logger:    logger,
	}
}

func (s *clientQueueService) Enqueue(ctx context.Context, m models.Mutation) (models.QueueItem, error) {
	log := logger.FromContextOr(ctx, s.logger)

	if err := s.validator.Validate(ctx, m); err != nil {
		log.Err(err).Str("func", "clientQueueService.Enqueue").Str("collection", m.Collection).Msg("invalid mutation")
		return models.QueueItem{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	item := models.QueueItem{
		ID:        s.ids.Generate(),
		Payload:   models.Mutation{Collection: m.Collection, Action: m.Action, Record: m.Record.Clone()},
		Timestamp: s.now().UTC(),
	}
	delete(item.Payload.Record, models.FieldSynced)

	if err := s.queue.Enqueue(ctx, item); err != nil {
		log.Err(err).Str("func", "clientQueueService.Enqueue").Str("id", item.ID).Msg("error persisting queue item")
		return models.QueueItem{}, fmt.Errorf("enqueue mutation: %w", err)
	}

	s.emitQueueUpdated(ctx)
	return item, nil
}

func (s *clientQueueService) Pending(ctx context.Context) ([]models.QueueItem, error) {
	items, err := s.queue.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending queue items: %w", err)
	}
	return items, nil
}

func (s *clientQueueService) Count(ctx context.Context) (int, error) {
	n, err := s.queue.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count queue items: %w", err)
	}
	return n, nil
}

// emitQueueUpdated publishes the queue length. A failing count is logged and
// the event skipped; the enqueue itself already succeeded.
func (s *clientQueueService) emitQueueUpdated(ctx context.Context) {
	n, err := s.queue.Count(ctx)
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Err(err).Str("func", "clientQueueService.emitQueueUpdated").Msg("error counting queue items")
		return
	}
	s.emitter.Emit(models.EventQueueUpdated, models.QueuePayload{Count: n})
}
