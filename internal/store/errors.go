package store

import "errors"

// Sentinel errors returned by repositories. Callers match them with
// [errors.Is].
var (
	// ErrQueueItemExists is returned by Enqueue when an item with the same
	// id is already queued.
	ErrQueueItemExists = errors.New("queue item already exists")

	// ErrInvalidQueueItem is returned by Enqueue for items without id.
	ErrInvalidQueueItem = errors.New("queue item has no id")

	// ErrInvalidRecord is returned by the server repository for mutations
	// whose record carries no id.
	ErrInvalidRecord = errors.New("record has no id")

	// ErrUnknownAction is returned for mutation actions other than upsert
	// and delete.
	ErrUnknownAction = errors.New("unknown mutation action")

	// ErrRetryable wraps driver errors classified as transient.
	ErrRetryable = errors.New("transient storage error")
)

// Low-level database operation errors, wrapped together with the driver
// error.
var (
	ErrBuildingSQLQuery     = errors.New("error building sql query")
	ErrExecutingQuery       = errors.New("error executing sql query")
	ErrBeginningTransaction = errors.New("failed to begin transaction")
	ErrCommitingTransaction = errors.New("failed to commit transaction")
	ErrExecutingStatement   = errors.New("failed to executing statement")
	ErrScanningRow          = errors.New("failed to scan row")
	ErrDecodingRow          = errors.New("failed to decode row")
)
