package store

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// RecordRepository is the reference server's copy of every collection.
type RecordRepository interface {
	// ListRecords returns all records of collection.
	ListRecords(ctx context.Context, collection string) ([]models.Record, error)
	// ApplyMutation applies m once per mutationID. It reports duplicate=true
	// and changes nothing when mutationID was applied before.
	ApplyMutation(ctx context.Context, mutationID string, m models.Mutation) (duplicate bool, err error)
}

// ErrorClassificator decides whether a driver error is transient.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
