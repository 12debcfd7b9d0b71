package service

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

type appInfoService struct {
	buildInfo models.AppBuildInfo
}

func NewAppInfoService(buildInfo models.AppBuildInfo) AppInfoService {
	return &appInfoService{buildInfo: buildInfo}
}

func (s *appInfoService) GetBuildInfo(ctx context.Context) models.AppBuildInfo {
	return s.buildInfo
}
