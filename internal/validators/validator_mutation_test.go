// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/models"
)

func validMutation() models.Mutation {
	return models.Mutation{
		Collection: "orders",
		Action:     models.ActionUpsert,
		Record:     models.Record{"id": 1, "total": 10},
	}
}

func validQueueItem() models.QueueItem {
	return models.QueueItem{
		ID:        "q-1",
		Payload:   validMutation(),
		Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

// ── dispatch ──

func TestNewMutationValidator(t *testing.T) {
	require.NotNil(t, NewMutationValidator())
}

func TestValidate_UnsupportedType(t *testing.T) {
	v := NewMutationValidator()
	assert.ErrorIs(t, v.Validate(context.Background(), "nope"), ErrUnsupportedType)
	assert.ErrorIs(t, v.Validate(context.Background(), 42), ErrUnsupportedType)
}

func TestValidate_PointerAndValue(t *testing.T) {
	v := NewMutationValidator()
	m := validMutation()
	item := validQueueItem()

	assert.NoError(t, v.Validate(context.Background(), m))
	assert.NoError(t, v.Validate(context.Background(), &m))
	assert.NoError(t, v.Validate(context.Background(), item))
	assert.NoError(t, v.Validate(context.Background(), &item))
}

// ── mutation ──

func TestValidate_Mutation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *models.Mutation)
		want   error
	}{
		{name: "valid upsert", mutate: func(m *models.Mutation) {}},
		{name: "valid delete", mutate: func(m *models.Mutation) {
			m.Action = models.ActionDelete
			m.Record = models.Record{"id": "x"}
		}},
		{name: "empty collection", mutate: func(m *models.Mutation) { m.Collection = "" }, want: ErrEmptyCollection},
		{name: "bad action", mutate: func(m *models.Mutation) { m.Action = "merge" }, want: ErrInvalidAction},
		{name: "empty action", mutate: func(m *models.Mutation) { m.Action = "" }, want: ErrInvalidAction},
		{name: "nil record", mutate: func(m *models.Mutation) { m.Record = nil }, want: ErrEmptyRecord},
		{name: "record without id", mutate: func(m *models.Mutation) { m.Record = models.Record{"name": "a"} }, want: ErrMissingRecordID},
		{name: "record with empty id", mutate: func(m *models.Mutation) { m.Record = models.Record{"id": ""} }, want: ErrMissingRecordID},
	}

	v := NewMutationValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMutation()
			tt.mutate(&m)
			err := v.Validate(context.Background(), m)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_Mutation_KnownCollections(t *testing.T) {
	v := NewMutationValidator("customers", "orders")

	assert.NoError(t, v.Validate(context.Background(), validMutation()))

	m := validMutation()
	m.Collection = "invoices"
	err := v.Validate(context.Background(), m)
	assert.ErrorIs(t, err, ErrUnknownCollection)
	assert.Contains(t, err.Error(), "invoices")
}

func TestValidate_Mutation_FieldScoping(t *testing.T) {
	v := NewMutationValidator()
	m := models.Mutation{Collection: "orders"}

	assert.NoError(t, v.Validate(context.Background(), m, FieldCollection))
	assert.ErrorIs(t, v.Validate(context.Background(), m, FieldAction), ErrInvalidAction)
	assert.ErrorIs(t, v.Validate(context.Background(), m, "bogus"), ErrUnknownField)
}

// ── queue item ──

func TestValidate_QueueItem(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(i *models.QueueItem)
		want   error
	}{
		{name: "valid", mutate: func(i *models.QueueItem) {}},
		{name: "retried item", mutate: func(i *models.QueueItem) { i.Attempts = 3 }},
		{name: "empty id", mutate: func(i *models.QueueItem) { i.ID = "" }, want: ErrEmptyQueueItemID},
		{name: "zero timestamp", mutate: func(i *models.QueueItem) { i.Timestamp = time.Time{} }, want: ErrZeroTimestamp},
		{name: "negative attempts", mutate: func(i *models.QueueItem) { i.Attempts = -1 }, want: ErrNegativeAttempts},
		{name: "invalid payload", mutate: func(i *models.QueueItem) { i.Payload.Collection = "" }, want: ErrEmptyCollection},
	}

	v := NewMutationValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validQueueItem()
			tt.mutate(&item)
			err := v.Validate(context.Background(), item)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_QueueItem_FieldScoping(t *testing.T) {
	v := NewMutationValidator()
	item := models.QueueItem{ID: "q-1"}

	assert.NoError(t, v.Validate(context.Background(), item, FieldID))
	assert.ErrorIs(t, v.Validate(context.Background(), item, FieldPayload), ErrEmptyCollection)
	assert.ErrorIs(t, v.Validate(context.Background(), item, FieldCollection), ErrUnknownField)
}
