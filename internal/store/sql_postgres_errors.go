package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells whether a failed database operation may
// succeed when attempted again.
type ErrorClassification int

const (
	// NonRetryable is the default for unrecognised errors, constraint
	// violations, syntax errors and data exceptions.
	NonRetryable ErrorClassification = iota

	// Retryable marks transient failures: lost connections, serialization
	// failures, deadlocks, a server that is still starting up.
	Retryable
)

// retryablePgCodes lists the PostgreSQL codes worth another attempt.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html.
var retryablePgCodes = map[string]struct{}{
	// Class 08
	pgerrcode.ConnectionException:    {},
	pgerrcode.ConnectionDoesNotExist: {},
	pgerrcode.ConnectionFailure:      {},
	// Class 40
	pgerrcode.TransactionRollback:  {},
	pgerrcode.SerializationFailure: {},
	pgerrcode.DeadlockDetected:     {},
	// Class 57
	pgerrcode.CannotConnectNow: {},
}

// PostgresErrorClassifier implements [ErrorClassificator] for errors coming
// from the pgx driver.
type PostgresErrorClassifier struct{}

// NewPostgresErrorClassifier constructs a [PostgresErrorClassifier].
func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator]. Errors that are not
// *pgconn.PgError are [NonRetryable].
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	code := postgresErrorCode(err)
	if code == "" {
		return NonRetryable
	}
	return ClassifyPgCode(code)
}

// ClassifyPgCode maps a SQLSTATE code to an [ErrorClassification].
func ClassifyPgCode(code string) ErrorClassification {
	if _, ok := retryablePgCodes[code]; ok {
		return Retryable
	}
	return NonRetryable
}

func postgresErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
