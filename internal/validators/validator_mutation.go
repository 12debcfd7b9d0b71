package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldID targets the queue item id (the idempotency key).
	FieldID = "id"

	// FieldTimestamp targets the queue item creation time.
	FieldTimestamp = "timestamp"

	// FieldAttempts targets the failed send counter.
	FieldAttempts = "attempts"

	// FieldPayload targets the whole mutation carried by a queue item.
	FieldPayload = "payload"

	// FieldCollection targets the mutation collection name.
	FieldCollection = "collection"

	// FieldAction targets the mutation action.
	FieldAction = "action"

	// FieldRecord targets the mutation record and its id.
	FieldRecord = "record"
)

// MutationValidator implements [Validator] for models.Mutation and
// models.QueueItem, by value or by pointer.
type MutationValidator struct {
	collections map[string]struct{}
}

// NewMutationValidator returns a validator accepting mutations of the given
// collections. With no collections every non-empty name is accepted.
func NewMutationValidator(collections ...string) Validator {
	v := &MutationValidator{}
	if len(collections) > 0 {
		v.collections = make(map[string]struct{}, len(collections))
		for _, c := range collections {
			v.collections[c] = struct{}{}
		}
	}
	return v
}

// Validate dispatches on the dynamic type of obj.
func (v *MutationValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Mutation:
		return v.validateMutation(ctx, value, fields...)
	case *models.Mutation:
		return v.validateMutation(ctx, *value, fields...)

	case models.QueueItem:
		return v.validateQueueItem(ctx, value, fields...)
	case *models.QueueItem:
		return v.validateQueueItem(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateMutation validates a single mutation body.
//
// Default validated fields: collection, action, record.
func (v *MutationValidator) validateMutation(_ context.Context, m models.Mutation, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCollection, FieldAction, FieldRecord}
	}

	for _, f := range fields {
		switch f {
		case FieldCollection:
			if m.Collection == "" {
				return ErrEmptyCollection
			}
			if v.collections != nil {
				if _, ok := v.collections[m.Collection]; !ok {
					return fmt.Errorf("%w: %q", ErrUnknownCollection, m.Collection)
				}
			}
		case FieldAction:
			if m.Action != models.ActionUpsert && m.Action != models.ActionDelete {
				return fmt.Errorf("%w: %q", ErrInvalidAction, m.Action)
			}
		case FieldRecord:
			if len(m.Record) == 0 {
				return ErrEmptyRecord
			}
			if _, ok := m.Record.ID(); !ok {
				return ErrMissingRecordID
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateQueueItem validates an item as it arrives at the remote side.
//
// Default validated fields: id, timestamp, attempts, payload.
func (v *MutationValidator) validateQueueItem(ctx context.Context, item models.QueueItem, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldTimestamp, FieldAttempts, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if item.ID == "" {
				return ErrEmptyQueueItemID
			}
		case FieldTimestamp:
			if item.Timestamp.IsZero() {
				return ErrZeroTimestamp
			}
		case FieldAttempts:
			if item.Attempts < 0 {
				return ErrNegativeAttempts
			}
		case FieldPayload:
			if err := v.validateMutation(ctx, item.Payload); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
