package service

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_service_mock.go -package=mock

// ClientQueueService turns local changes into durable queue items.
type ClientQueueService interface {
	// Enqueue validates mutation, assigns a fresh id and the current time and
	// persists the resulting item. It emits queue-updated with the new
	// queue length.
	Enqueue(ctx context.Context, mutation models.Mutation) (models.QueueItem, error)

	// Pending returns the queued items in insertion order.
	Pending(ctx context.Context) ([]models.QueueItem, error)

	// Count returns the number of queued items.
	Count(ctx context.Context) (int, error)
}

// ClientRecordService is the local edit path: changes land in the local
// snapshot immediately and are queued for delivery.
type ClientRecordService interface {
	// List returns the local snapshot of collection.
	List(ctx context.Context, collection string) (models.Snapshot, error)

	// Upsert writes record into the local snapshot flagged as not synced
	// and queues an upsert. A record without an id gets a generated one.
	Upsert(ctx context.Context, collection string, record models.Record) (models.Record, error)

	// Delete removes the record from the local snapshot and queues a
	// delete. Deleting an unknown id still queues the delete.
	Delete(ctx context.Context, collection, id string) error
}

// ClientSyncService is the sync cycle controller.
type ClientSyncService interface {
	// RunCycle performs one pull-then-push pass over every collection.
	// It returns ErrOffline or ErrSyncInProgress, without any effect, when
	// the engine is offline or another cycle is running.
	RunCycle(ctx context.Context) (models.CompletePayload, error)

	// SetOnline records connectivity and reports whether it changed.
	SetOnline(online bool) (changed bool)

	// State returns a snapshot of the engine state.
	State() models.SyncState
}

// ClientSyncJob drives the controller from connectivity signals and timers.
type ClientSyncJob interface {
	// Start arms the periodic trigger and, when the engine is online at
	// that moment, the one-shot startup trigger.
	Start(ctx context.Context)

	// Stop cancels every timer and blocks until the job goroutine exits.
	// Signals received after Stop are ignored.
	Stop()

	// Notify feeds a connectivity signal. A transition to online emits
	// online and triggers a cycle; a transition to offline emits offline.
	Notify(online bool)
}
