package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

type recordRepository struct {
	*DB
	logger *logger.Logger
}

// NewRecordRepository returns the PostgreSQL-backed [RecordRepository].
func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	return &recordRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *recordRepository) ListRecords(ctx context.Context, collection string) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListRecordsQuery(r.builder, collection)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ListRecords").
			Str("collection", collection).
			Msg("failed to query records")
		return nil, r.wrap(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			log.Err(err).Str("func", "recordRepository.ListRecords").Msg("failed to scan record row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		var record models.Record
		if err := json.Unmarshal(raw, &record); err != nil {
			log.Err(err).Str("func", "recordRepository.ListRecords").Msg("failed to decode record")
			return nil, fmt.Errorf("%w: %w", ErrDecodingRow, err)
		}
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "recordRepository.ListRecords").Msg("error occurred during rows iteration")
		return nil, r.wrap(fmt.Errorf("%w: %w", ErrScanningRow, rowsErr))
	}

	return records, nil
}

func (r *recordRepository) ApplyMutation(ctx context.Context, mutationID string, m models.Mutation) (bool, error) {
	log := logger.FromContext(ctx).With().
		Str("func", "recordRepository.ApplyMutation").
		Str("mutation_id", mutationID).
		Str("collection", m.Collection).
		Logger()

	recordID, ok := m.Record.ID()
	if !ok {
		return false, ErrInvalidRecord
	}

	var applyQuery string
	var applyArgs []any
	var err error
	switch m.Action {
	case models.ActionUpsert:
		data, marshalErr := json.Marshal(m.Record)
		if marshalErr != nil {
			return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, marshalErr)
		}
		applyQuery, applyArgs, err = buildUpsertRecordQuery(r.builder, m.Collection, recordID, data)
	case models.ActionDelete:
		applyQuery, applyArgs, err = buildDeleteRecordQuery(r.builder, m.Collection, recordID)
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, m.Action)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	markQuery, markArgs, err := buildMarkAppliedQuery(r.builder, mutationID, m.Collection)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin transaction")
		return false, r.wrap(fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, markQuery, markArgs...)
	if err != nil {
		log.Error().Err(err).Msg("failed to record mutation id")
		return false, r.wrap(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		log.Info().Msg("mutation was applied before, skipping")
		return true, nil
	}

	if _, err = tx.ExecContext(ctx, applyQuery, applyArgs...); err != nil {
		log.Error().Err(err).Str("record_id", recordID).Msg("failed to apply mutation")
		return false, r.wrap(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit transaction")
		return false, r.wrap(fmt.Errorf("%w: %w", ErrCommitingTransaction, err))
	}

	log.Debug().Str("record_id", recordID).Str("action", string(m.Action)).Msg("mutation applied")
	return false, nil
}

func (r *recordRepository) wrap(err error) error {
	if r.Retryable(err) {
		return fmt.Errorf("%w: %w", ErrRetryable, err)
	}
	return err
}

