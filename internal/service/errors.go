package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrSyncInProgress is returned by RunCycle when another cycle holds the
	// single-flight flag. The call has no effect.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrOffline is returned by RunCycle while the engine is offline. The call
	// has no effect.
	ErrOffline = errors.New("sync skipped: offline")
	// ErrCycleFailed wraps the cause of a cycle that could not finish.
	ErrCycleFailed = errors.New("sync cycle failed")
	// ErrCyclePanic wraps a panic recovered inside a cycle.
	ErrCyclePanic = errors.New("sync cycle panicked")

	ErrUnknownCollection     = errors.New("unknown collection")
	ErrUnknownConflictPolicy = errors.New("unknown conflict policy")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrAuthDisabled            = errors.New("token authentication is disabled")
	ErrUnknownDevice           = errors.New("unknown device")
)
