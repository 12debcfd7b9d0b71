package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
)

type recordService struct {
	records store.RecordRepository

	logger *logger.Logger
}

// NewRecordService returns the server record service backed by records.
func NewRecordService(records store.RecordRepository, logger *logger.Logger) RecordService {
	return &recordService{records: records, logger: logger}
}

func (s *recordService) List(ctx context.Context, collection string) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	records, err := s.records.ListRecords(ctx, collection)
	if err != nil {
		log.Err(err).Str("func", "recordService.List").Str("collection", collection).Msg("error listing records")
		return nil, fmt.Errorf("list records of %s: %w", collection, err)
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

func (s *recordService) Apply(ctx context.Context, item models.QueueItem) (bool, error) {
	log := logger.FromContext(ctx)

	duplicate, err := s.records.ApplyMutation(ctx, item.ID, item.Payload)
	if err != nil {
		log.Err(err).Str("func", "recordService.Apply").Str("id", item.ID).Str("collection", item.Payload.Collection).Msg("error applying mutation")
		return false, fmt.Errorf("apply mutation %s: %w", item.ID, err)
	}

	if duplicate {
		log.Debug().Str("id", item.ID).Msg("mutation already applied")
	}
	return duplicate, nil
}
