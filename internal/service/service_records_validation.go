package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/validators"
	"github.com/MKhiriev/go-offline-sync/models"
)

// RecordServiceWrapper defines middleware composition for RecordService.
// Implementations wrap an existing RecordService to add behavior such as
// validation.
type RecordServiceWrapper interface {
	Wrap(RecordService) RecordService
}

// RecordValidationService rejects malformed requests before they reach the
// wrapped RecordService.
type RecordValidationService struct {
	inner     RecordService
	validator validators.Validator
}

func NewRecordValidationService() RecordServiceWrapper {
	return &RecordValidationService{
		validator: validators.NewMutationValidator(),
	}
}

func (v *RecordValidationService) List(ctx context.Context, collection string) ([]models.Record, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, validators.ErrEmptyCollection)
	}
	return v.inner.List(ctx, collection)
}

func (v *RecordValidationService) Apply(ctx context.Context, item models.QueueItem) (bool, error) {
	if err := v.validator.Validate(ctx, item); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.Apply(ctx, item)
}

func (v *RecordValidationService) Wrap(inner RecordService) RecordService {
	v.inner = inner
	return v
}
