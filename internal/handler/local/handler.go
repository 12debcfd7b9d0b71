// Package local implements the loopback HTTP API of the client daemon.
//
// Host applications read snapshots, make local edits, trigger a manual sync
// and inspect engine status through it. The API never talks to the remote
// side directly; edits land in the durable queue and are delivered by the
// next sync cycle.
//
// Routes:
//
//	GET    /local/collections/{collection}
//	POST   /local/collections/{collection}
//	DELETE /local/collections/{collection}/{id}
//	GET    /local/queue
//	POST   /local/sync
//	GET    /local/status
//	GET    /metrics
package local

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httphandler "github.com/MKhiriev/go-offline-sync/internal/handler/http"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/models"
)

type Handler struct {
	services    *service.ClientServices
	collections []string
	metrics     http.Handler
	buildInfo   models.AppBuildInfo

	logger *logger.Logger
}

// NewHandler returns the local API handler. A nil metrics handler leaves
// /metrics unrouted.
func NewHandler(services *service.ClientServices, collections []string, metrics http.Handler, buildInfo models.AppBuildInfo, logger *logger.Logger) *Handler {
	logger.Info().Msg("local api handler created")
	return &Handler{
		services:    services,
		collections: collections,
		metrics:     metrics,
		buildInfo:   buildInfo,
		logger:      logger,
	}
}

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(httphandler.WithTraceID(h.logger), httphandler.WithLogging)

	router.Route("/local", func(r chi.Router) {
		r.Get("/collections/{collection}", h.listRecords)
		r.Post("/collections/{collection}", h.upsertRecord)
		r.Delete("/collections/{collection}/{id}", h.deleteRecord)
		r.Get("/queue", h.listQueue)
		r.Post("/sync", h.runSync)
		r.Get("/status", h.status)
	})

	if h.metrics != nil {
		router.Method(http.MethodGet, "/metrics", h.metrics)
	}

	router.MethodNotAllowed(httphandler.CheckHTTPMethod(router))

	return router
}
