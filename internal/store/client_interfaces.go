package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// QueueRepository is the durable, ordered log of outbound mutations.
// Every method is atomic on its own; no method spans another.
type QueueRepository interface {
	// Enqueue durably appends item. It returns only after the item is
	// persisted.
	Enqueue(ctx context.Context, item models.QueueItem) error
	// ListPending returns all queued items in insertion order.
	ListPending(ctx context.Context) ([]models.QueueItem, error)
	// Remove deletes the item with the given id. Removing an absent id is
	// not an error.
	Remove(ctx context.Context, id string) error
	// MarkFailed increments the attempt counter of the item and records
	// the failure time and reason. Absent ids are ignored.
	MarkFailed(ctx context.Context, id string, at time.Time, reason string) error
	// Count returns the number of queued items.
	Count(ctx context.Context) (int, error)
}

// SnapshotRepository keeps the merged local view of every collection.
type SnapshotRepository interface {
	// Get returns the stored snapshot, or an empty one when the collection
	// was never written.
	Get(ctx context.Context, collection string) (models.Snapshot, error)
	// Put atomically replaces the snapshot of collection.
	Put(ctx context.Context, collection string, snapshot models.Snapshot) error
}
