package service

import (
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
)

type ClientServices struct {
	QueueService  ClientQueueService
	RecordService ClientRecordService
	SyncService   ClientSyncService
	SyncJob       ClientSyncJob
}

// NewClientServices wires the client services around one event emitter. The
// record service and the sync controller share the snapshot locks.
func NewClientServices(storages *store.ClientStorages, remote adapter.RemoteAdapter, emitter events.Emitter, cfg *config.ClientConfig, logger *logger.Logger) (*ClientServices, error) {
	locks := newCollectionLocks()

	syncSvc, err := newClientSyncService(storages.Queue, storages.Snapshots, remote, emitter, cfg.Sync, locks, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating sync service: %w", err)
	}

	queueSvc := NewClientQueueService(storages.Queue, emitter, cfg.Sync.Collections, logger)

	return &ClientServices{
		QueueService:  queueSvc,
		RecordService: newClientRecordService(storages.Snapshots, queueSvc, emitter, cfg.Sync.Collections, locks, logger),
		SyncService:   syncSvc,
		SyncJob:       NewClientSyncJob(syncSvc, emitter, cfg.Workers, logger),
	}, nil
}
