package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// DB wraps a *sql.DB with the dialect-specific pieces the repositories need:
// a squirrel statement builder using the right placeholder format and an
// error classifier deciding which driver errors are transient.
type DB struct {
	*sql.DB
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Retryable reports whether err was classified as transient by the driver
// specific classifier. A DB without classifier never retries.
func (db *DB) Retryable(err error) bool {
	if db.errorClassificator == nil {
		return false
	}
	return db.errorClassificator.Classify(err) == Retryable
}
