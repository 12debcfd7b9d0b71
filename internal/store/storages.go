package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// Storages groups the reference server repositories.
type Storages struct {
	Records RecordRepository

	db *DB
}

// NewStorages connects to PostgreSQL, migrates it and builds the server
// repositories.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	return &Storages{
		Records: NewRecordRepository(db, logger),
		db:      db,
	}, nil
}

// Close releases the database connection.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
