package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/mock"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/validators"
	"github.com/MKhiriev/go-offline-sync/models"
)

var testCollections = []string{"customers", "maintenance", "orders"}

func TestClientQueueService_Enqueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockQueueRepository(ctrl)
	rec := newEventRecorder(t)

	svc := NewClientQueueService(repo, rec, testCollections, logger.Nop()).(*clientQueueService)
	fixed := time.Date(2026, 4, 1, 9, 30, 0, 0, time.FixedZone("X", 3600))
	svc.now = func() time.Time { return fixed }

	var stored models.QueueItem
	gomock.InOrder(
		repo.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, item models.QueueItem) error {
			stored = item
			return nil
		}),
		repo.EXPECT().Count(gomock.Any()).Return(3, nil),
	)

	record := models.Record{"id": 7, "total": 12.5, "synced": false}
	item, err := svc.Enqueue(context.Background(), models.Mutation{Collection: "orders", Action: models.ActionUpsert, Record: record})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, stored, item)
	assert.Equal(t, fixed.UTC(), item.Timestamp)
	assert.Zero(t, item.Attempts)
	assert.Equal(t, models.Record{"id": 7, "total": 12.5}, item.Payload.Record)
	assert.Equal(t, false, record["synced"], "caller record must not be modified")

	ev, ok := rec.last(models.EventQueueUpdated)
	require.True(t, ok)
	assert.Equal(t, models.QueuePayload{Count: 3}, ev.Payload)
}

func TestClientQueueService_Enqueue_UniqueIDs(t *testing.T) {
	svc := NewClientQueueService(store.NewMemoryQueueRepository(), newEventRecorder(t), testCollections, logger.Nop())
	m := models.Mutation{Collection: "customers", Action: models.ActionDelete, Record: models.Record{"id": "c"}}

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		item, err := svc.Enqueue(context.Background(), m)
		require.NoError(t, err)
		require.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}

	n, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}

func TestClientQueueService_Enqueue_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockQueueRepository(ctrl)
	rec := newEventRecorder(t)
	svc := NewClientQueueService(repo, rec, testCollections, logger.Nop())

	_, err := svc.Enqueue(context.Background(), models.Mutation{Collection: "invoices", Action: models.ActionUpsert, Record: models.Record{"id": 1}})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
	assert.ErrorIs(t, err, validators.ErrUnknownCollection)

	_, err = svc.Enqueue(context.Background(), models.Mutation{Collection: "orders", Action: models.ActionUpsert, Record: models.Record{"total": 1}})
	assert.ErrorIs(t, err, validators.ErrMissingRecordID)

	assert.Empty(t, rec.all())
}

func TestClientQueueService_Enqueue_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockQueueRepository(ctrl)
	rec := newEventRecorder(t)
	svc := NewClientQueueService(repo, rec, testCollections, logger.Nop())

	boom := errors.New("disk full")
	repo.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(boom)

	_, err := svc.Enqueue(context.Background(), models.Mutation{Collection: "orders", Action: models.ActionUpsert, Record: models.Record{"id": 1}})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rec.all())
}

func TestClientQueueService_Enqueue_CountErrorStillSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockQueueRepository(ctrl)
	rec := newEventRecorder(t)
	svc := NewClientQueueService(repo, rec, testCollections, logger.Nop())

	repo.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().Count(gomock.Any()).Return(0, errors.New("locked"))

	_, err := svc.Enqueue(context.Background(), models.Mutation{Collection: "orders", Action: models.ActionUpsert, Record: models.Record{"id": 1}})
	assert.NoError(t, err)
	assert.Empty(t, rec.all())
}

func TestClientQueueService_Pending(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockQueueRepository(ctrl)
	svc := NewClientQueueService(repo, newEventRecorder(t), testCollections, logger.Nop())

	items := []models.QueueItem{{ID: "a"}, {ID: "b"}}
	repo.EXPECT().ListPending(gomock.Any()).Return(items, nil)
	got, err := svc.Pending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, items, got)

	repo.EXPECT().ListPending(gomock.Any()).Return(nil, errors.New("boom"))
	_, err = svc.Pending(context.Background())
	assert.Error(t, err)
}
