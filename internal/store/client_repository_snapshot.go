package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

type snapshotRepository struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

// NewSnapshotRepository returns the SQLite-backed [SnapshotRepository].
// A snapshot is one JSON document per collection, so Put replaces it in a
// single statement.
func NewSnapshotRepository(db *DB, logger *logger.Logger) SnapshotRepository {
	return &snapshotRepository{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *snapshotRepository) Get(ctx context.Context, collection string) (models.Snapshot, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetSnapshotQuery(s.builder, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var snapshot models.Snapshot
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "snapshotRepository.Get").
			Str("collection", collection).
			Msg("failed to read snapshot")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return snapshot, nil
}

func (s *snapshotRepository) Put(ctx context.Context, collection string, snapshot models.Snapshot) error {
	log := logger.FromContext(ctx)

	query, args, err := buildPutSnapshotQuery(s.builder, collection, snapshot, s.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "snapshotRepository.Put").
			Str("collection", collection).
			Msg("failed to write snapshot")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Debug().
		Str("func", "snapshotRepository.Put").
		Str("collection", collection).
		Int("records", len(snapshot)).
		Msg("snapshot stored")
	return nil
}
