package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// ClientStorages groups the client-side repositories.
type ClientStorages struct {
	// Queue is the durable outbound mutation log.
	Queue QueueRepository
	// Snapshots holds the merged local view of every collection.
	Snapshots SnapshotRepository

	db *DB
}

// NewClientStorages opens the client storage layer. A DSN of ":memory:" or
// "memory" selects the in-memory repositories; anything else is a SQLite
// file path, created and migrated when needed.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Str("dsn", cfg.DB.DSN).Msg("creating new client storages...")

	if IsMemoryDSN(cfg.DB.DSN) {
		logger.Warn().Msg("using in-memory storage: queued mutations will not survive a restart")
		return &ClientStorages{
			Queue:     NewMemoryQueueRepository(),
			Snapshots: NewMemorySnapshotRepository(),
		}, nil
	}

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	return &ClientStorages{
		Queue:     NewQueueRepository(db, logger),
		Snapshots: NewSnapshotRepository(db, logger),
		db:        db,
	}, nil
}

// Close releases the database connection, if any.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
