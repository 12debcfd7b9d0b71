package service

import (
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
)

type Services struct {
	AuthService    AuthService
	RecordService  RecordService
	AppInfoService AppInfoService
}

func NewServices(storages *store.Storages, cfg *config.ServerConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) *Services {
	return &Services{
		AuthService:    NewAuthService(cfg.App, logger),
		RecordService:  NewRecordValidationService().Wrap(NewRecordService(storages.Records, logger)),
		AppInfoService: NewAppInfoService(buildInfo),
	}
}
