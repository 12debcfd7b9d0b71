package workers

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/internal/service"
)

// SyncJobWorker ties the scheduler lifecycle to the worker group: the job
// is started with the group context and stopped when it ends.
type SyncJobWorker struct {
	job service.ClientSyncJob
}

func NewSyncJobWorker(job service.ClientSyncJob) *SyncJobWorker {
	return &SyncJobWorker{job: job}
}

func (s *SyncJobWorker) Run(ctx context.Context) error {
	s.job.Start(ctx)
	<-ctx.Done()
	s.job.Stop()
	return nil
}
