package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

func newTestQueueRepo(t *testing.T) (QueueRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := logger.Nop()
	return NewQueueRepository(newSQLiteDB(db, l), l), mock
}

func newSQLiteStorages(t *testing.T) *ClientStorages {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "nested", "client.db")
	s, err := NewClientStorages(context.Background(), config.ClientStorage{DB: config.ClientDB{DSN: dsn}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func queueItem(id, collection string, ts time.Time) models.QueueItem {
	return models.QueueItem{
		ID: id,
		Payload: models.Mutation{
			Collection: collection,
			Action:     models.ActionUpsert,
			Record:     models.Record{"id": id, "name": "n-" + id},
		},
		Timestamp: ts,
	}
}

// ── sqlmock ──

func TestQueueRepository_Enqueue_Success(t *testing.T) {
	repo, mock := newTestQueueRepo(t)
	item := queueItem("a", "orders", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sync_queue").
		WithArgs("a", sqlmock.AnyArg(), "2026-01-02T03:04:05Z", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Enqueue(context.Background(), item))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_Enqueue_ExecError(t *testing.T) {
	repo, mock := newTestQueueRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sync_queue").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := repo.Enqueue(context.Background(), queueItem("a", "orders", time.Now()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutingStatement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_Enqueue_BeginError(t *testing.T) {
	repo, mock := newTestQueueRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("db closed"))

	err := repo.Enqueue(context.Background(), queueItem("a", "orders", time.Now()))
	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

func TestQueueRepository_Enqueue_CommitError(t *testing.T) {
	repo, mock := newTestQueueRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sync_queue").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err := repo.Enqueue(context.Background(), queueItem("a", "orders", time.Now()))
	assert.ErrorIs(t, err, ErrCommitingTransaction)
}

func TestQueueRepository_Enqueue_EmptyID(t *testing.T) {
	repo, mock := newTestQueueRepo(t)

	err := repo.Enqueue(context.Background(), models.QueueItem{})
	assert.ErrorIs(t, err, ErrInvalidQueueItem)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_ListPending_QueryError(t *testing.T) {
	repo, mock := newTestQueueRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM sync_queue ORDER BY seq ASC").
		WillReturnError(errors.New("no such table"))

	_, err := repo.ListPending(context.Background())
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestQueueRepository_ListPending_BadTimestamp(t *testing.T) {
	repo, mock := newTestQueueRepo(t)

	rows := sqlmock.NewRows(queueColumns).
		AddRow("a", `{"collection":"orders","action":"upsert","record":{"id":"a"}}`, "yesterday", 0, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM sync_queue").WillReturnRows(rows)

	_, err := repo.ListPending(context.Background())
	assert.ErrorIs(t, err, ErrDecodingRow)
}

func TestQueueRepository_MarkFailed(t *testing.T) {
	repo, mock := newTestQueueRepo(t)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sync_queue SET attempts = attempts + 1, last_attempt_at = ?, last_error = ? WHERE id = ?")).
		WithArgs("2026-05-01T10:00:00Z", "timeout", "a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkFailed(context.Background(), "a", at, "timeout"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_Remove_AbsentIsNotError(t *testing.T) {
	repo, mock := newTestQueueRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM sync_queue WHERE id = ?").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.Remove(context.Background(), "missing"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_Count(t *testing.T) {
	repo, mock := newTestQueueRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sync_queue")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestQueueRepository_Count_Error(t *testing.T) {
	repo, mock := newTestQueueRepo(t)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(sql.ErrConnDone)

	_, err := repo.Count(context.Background())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

// ── sqlite ──

func TestQueueRepository_SQLite_Lifecycle(t *testing.T) {
	s := newSQLiteStorages(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

	require.NoError(t, s.Queue.Enqueue(ctx, queueItem("b", "orders", base)))
	require.NoError(t, s.Queue.Enqueue(ctx, queueItem("a", "customers", base.Add(time.Second))))
	require.NoError(t, s.Queue.Enqueue(ctx, queueItem("c", "orders", base.Add(2*time.Second))))

	err := s.Queue.Enqueue(ctx, queueItem("a", "customers", base))
	assert.ErrorIs(t, err, ErrQueueItemExists)

	items, err := s.Queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	// insertion order, not id order
	assert.Equal(t, []string{"b", "a", "c"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.True(t, base.Equal(items[0].Timestamp))
	assert.Equal(t, "orders", items[0].Payload.Collection)
	assert.Equal(t, "n-b", items[0].Payload.Record["name"])
	assert.Nil(t, items[0].LastAttemptAt)

	failedAt := base.Add(time.Minute)
	require.NoError(t, s.Queue.MarkFailed(ctx, "a", failedAt, "503"))
	require.NoError(t, s.Queue.MarkFailed(ctx, "a", failedAt, "503"))
	require.NoError(t, s.Queue.MarkFailed(ctx, "missing", failedAt, "503"))

	require.NoError(t, s.Queue.Remove(ctx, "b"))
	require.NoError(t, s.Queue.Remove(ctx, "b"))

	items, err = s.Queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, 2, items[0].Attempts)
	require.NotNil(t, items[0].LastAttemptAt)
	assert.True(t, failedAt.Equal(*items[0].LastAttemptAt))
	assert.Equal(t, "503", items[0].LastError)

	count, err := s.Queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestQueueRepository_SQLite_SurvivesReopen(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "client.db")
	cfg := config.ClientStorage{DB: config.ClientDB{DSN: dsn}}
	ctx := context.Background()

	first, err := NewClientStorages(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, first.Queue.Enqueue(ctx, queueItem("x", "orders", time.Now())))
	require.NoError(t, first.Close())

	second, err := NewClientStorages(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer second.Close()

	items, err := second.Queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "x", items[0].ID)
}

func TestQueueRepository_SQLite_EmptyQueue(t *testing.T) {
	s := newSQLiteStorages(t)

	items, err := s.Queue.ListPending(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
