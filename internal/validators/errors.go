package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyQueueItemID  = errors.New("queue item id is required")
	ErrEmptyCollection   = errors.New("collection is required")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidAction     = errors.New("invalid mutation action")
	ErrEmptyRecord       = errors.New("record is required")
	ErrMissingRecordID   = errors.New("record id is required")
	ErrZeroTimestamp     = errors.New("timestamp is required")
	ErrNegativeAttempts  = errors.New("attempts cannot be negative")
)
