package service

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// RecordService is the reference server's view of every collection.
type RecordService interface {
	// List returns the server copy of collection.
	List(ctx context.Context, collection string) ([]models.Record, error)

	// Apply applies the mutation carried by item once per item id. A
	// redelivered item reports duplicate=true and changes nothing.
	Apply(ctx context.Context, item models.QueueItem) (duplicate bool, err error)
}

// AuthService issues and checks device tokens.
type AuthService interface {
	// Enabled reports whether a token sign key is configured.
	Enabled() bool
	IssueToken(ctx context.Context, deviceID string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// AppInfoService exposes build metadata of the running binary.
type AppInfoService interface {
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}
