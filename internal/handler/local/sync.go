// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package local

import (
	"net/http"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// runSync runs one cycle on the request goroutine and returns its summary.
// A cycle already running answers 409 and an offline engine 503; neither
// starts a cycle.
func (h *Handler) runSync(w http.ResponseWriter, r *http.Request) {
	summary, err := h.services.SyncService.RunCycle(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.runSync").Msg("manual sync not completed")
		utils.WriteJSON(w, errorResponse{Error: err.Error()}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, summary, http.StatusOK)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	pending, err := h.services.QueueService.Count(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.status").Msg("error counting queue")
		utils.WriteJSON(w, errorResponse{Error: err.Error()}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.StatusResponse{
		State:       h.services.SyncService.State(),
		Pending:     pending,
		Collections: h.collections,
		Build:       h.buildInfo,
	}, http.StatusOK)
}
