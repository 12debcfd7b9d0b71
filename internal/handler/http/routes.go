package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(WithTraceID(h.logger), WithLogging, WithGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/ping", h.ping)
		r.Get("/api/version", h.getServerVersion)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/api/collections/{collection}", h.fetchCollection)
		r.With(h.bodyHashing).Post("/api/mutations", h.applyMutation)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
