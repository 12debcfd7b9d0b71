package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/models"
)

// IsMemoryDSN reports whether dsn selects the non-durable in-memory store.
func IsMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || dsn == "memory"
}

// memoryQueue is a process-local [QueueRepository]. Contents are lost on
// exit; it backs tests and throwaway runs.
type memoryQueue struct {
	mu    sync.Mutex
	items []models.QueueItem
}

// NewMemoryQueueRepository returns an empty in-memory [QueueRepository].
func NewMemoryQueueRepository() QueueRepository {
	return &memoryQueue{}
}

func (m *memoryQueue) Enqueue(_ context.Context, item models.QueueItem) error {
	if item.ID == "" {
		return ErrInvalidQueueItem
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(item.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrQueueItemExists, item.ID)
	}
	m.items = append(m.items, cloneQueueItem(item))
	return nil
}

func (m *memoryQueue) ListPending(_ context.Context) ([]models.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.QueueItem, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, cloneQueueItem(item))
	}
	return out, nil
}

func (m *memoryQueue) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx := m.indexOf(id); idx >= 0 {
		m.items = append(m.items[:idx], m.items[idx+1:]...)
	}
	return nil
}

func (m *memoryQueue) MarkFailed(_ context.Context, id string, at time.Time, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx := m.indexOf(id); idx >= 0 {
		item := &m.items[idx]
		item.Attempts++
		item.LastAttemptAt = &at
		item.LastError = reason
	}
	return nil
}

func (m *memoryQueue) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *memoryQueue) indexOf(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneQueueItem(item models.QueueItem) models.QueueItem {
	if item.Payload.Record != nil {
		item.Payload.Record = item.Payload.Record.Clone()
	}
	if item.LastAttemptAt != nil {
		at := *item.LastAttemptAt
		item.LastAttemptAt = &at
	}
	return item
}

// memorySnapshots is a process-local [SnapshotRepository].
type memorySnapshots struct {
	mu        sync.RWMutex
	snapshots map[string]models.Snapshot
}

// NewMemorySnapshotRepository returns an empty in-memory [SnapshotRepository].
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshots{snapshots: make(map[string]models.Snapshot)}
}

func (m *memorySnapshots) Get(_ context.Context, collection string) (models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSnapshot(m.snapshots[collection]), nil
}

func (m *memorySnapshots) Put(_ context.Context, collection string, snapshot models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[collection] = cloneSnapshot(snapshot)
	return nil
}

func cloneSnapshot(s models.Snapshot) models.Snapshot {
	out := make(models.Snapshot, 0, len(s))
	for _, r := range s {
		out = append(out, r.Clone())
	}
	return out
}
