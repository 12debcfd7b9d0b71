package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

type queueRepository struct {
	*DB
	logger *logger.Logger
}

// NewQueueRepository returns the SQLite-backed [QueueRepository].
func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
	}
}

func (q *queueRepository) Enqueue(ctx context.Context, item models.QueueItem) error {
	log := logger.FromContext(ctx)

	if item.ID == "" {
		return ErrInvalidQueueItem
	}

	query, args, err := buildInsertQueueItemQuery(q.builder, item)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = q.inTx(ctx, "queueRepository.Enqueue", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
	if isUniqueViolation(err) {
		log.Warn().Str("func", "queueRepository.Enqueue").Str("id", item.ID).Msg("queue item already exists")
		return fmt.Errorf("%w: %s", ErrQueueItemExists, item.ID)
	}
	if err != nil {
		return q.wrap(err)
	}

	log.Debug().
		Str("func", "queueRepository.Enqueue").
		Str("id", item.ID).
		Str("collection", item.Payload.Collection).
		Msg("mutation enqueued")
	return nil
}

func (q *queueRepository) ListPending(ctx context.Context) ([]models.QueueItem, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListQueueQuery(q.builder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "queueRepository.ListPending").Msg("failed to query pending queue items")
		return nil, q.wrap(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	items := make([]models.QueueItem, 0)
	for rows.Next() {
		item, scanErr := scanQueueItem(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "queueRepository.ListPending").Msg("failed to scan queue item row")
			return nil, scanErr
		}
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "queueRepository.ListPending").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, rowsErr)
	}

	return items, nil
}

func (q *queueRepository) Remove(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteQueueItemQuery(q.builder, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var affected int64
	err = q.inTx(ctx, "queueRepository.Remove", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return q.wrap(err)
	}

	log.Debug().
		Str("func", "queueRepository.Remove").
		Str("id", id).
		Int64("removed", affected).
		Msg("queue item removed")
	return nil
}

func (q *queueRepository) MarkFailed(ctx context.Context, id string, at time.Time, reason string) error {
	query, args, err := buildMarkFailedQuery(q.builder, id, at, reason)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = q.inTx(ctx, "queueRepository.MarkFailed", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return q.wrap(err)
	}
	return nil
}

func (q *queueRepository) Count(ctx context.Context) (int, error) {
	query, args, err := buildCountQueueQuery(q.builder)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if err := q.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "queueRepository.Count").Msg("failed to count queue items")
		return 0, q.wrap(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	return count, nil
}

// inTx runs fn in its own transaction and commits it.
func (q *queueRepository) inTx(ctx context.Context, fn string, exec func(tx *sql.Tx) error) error {
	log := logger.FromContext(ctx)

	tx, err := q.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if err = exec(tx); err != nil {
		log.Err(err).Str("func", fn).Msg("failed to execute statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", fn).Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return nil
}

func (q *queueRepository) wrap(err error) error {
	if q.Retryable(err) {
		return fmt.Errorf("%w: %w", ErrRetryable, err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueueItem(row rowScanner) (models.QueueItem, error) {
	var (
		item          models.QueueItem
		createdAt     string
		lastAttemptAt sql.NullString
		lastError     sql.NullString
	)

	if err := row.Scan(&item.ID, &item.Payload, &createdAt, &item.Attempts, &lastAttemptAt, &lastError); err != nil {
		return models.QueueItem{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return models.QueueItem{}, fmt.Errorf("%w: created_at: %w", ErrDecodingRow, err)
	}
	item.Timestamp = ts

	if lastAttemptAt.Valid {
		at, err := time.Parse(timeLayout, lastAttemptAt.String)
		if err != nil {
			return models.QueueItem{}, fmt.Errorf("%w: last_attempt_at: %w", ErrDecodingRow, err)
		}
		item.LastAttemptAt = &at
	}
	item.LastError = lastError.String

	return item, nil
}
