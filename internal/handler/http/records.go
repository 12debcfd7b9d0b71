// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// fetchCollection returns the server copy of a collection as a
// FetchResponse. Failures keep the envelope so clients can read Error.
func (h *Handler) fetchCollection(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	records, err := h.services.RecordService.List(r.Context(), collection)
	if err != nil {
		log.Err(err).Str("func", "*Handler.fetchCollection").Str("collection", collection).Msg("error listing records")
		utils.WriteJSON(w, models.FetchResponse{Error: err.Error()}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.FetchResponse{Success: true, Data: records}, http.StatusOK)
}

// applyMutation applies one queued mutation. A mutation id seen before is
// acknowledged with Duplicate=true and not applied again.
func (h *Handler) applyMutation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var item models.QueueItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		log.Err(err).Str("func", "*Handler.applyMutation").Msg("Invalid JSON was passed")
		utils.WriteJSON(w, models.SendResponse{Error: "invalid JSON"}, http.StatusBadRequest)
		return
	}

	if key := r.Header.Get(utils.IdempotencyKeyHeader); key != "" {
		if item.ID == "" {
			item.ID = key
		} else if item.ID != key {
			log.Error().Str("func", "*Handler.applyMutation").Str("key", key).Str("id", item.ID).Msg("idempotency key mismatch")
			utils.WriteJSON(w, models.SendResponse{Error: ErrIdempotencyKeyMismatch.Error()}, statusFromError(ErrIdempotencyKeyMismatch))
			return
		}
	}

	duplicate, err := h.services.RecordService.Apply(r.Context(), item)
	if err != nil {
		log.Err(err).Str("func", "*Handler.applyMutation").Str("id", item.ID).Msg("error applying mutation")
		utils.WriteJSON(w, models.SendResponse{Error: err.Error()}, statusFromError(err))
		return
	}

	if deviceID, ok := utils.GetDeviceIDFromContext(r.Context()); ok {
		log.Debug().Str("device", deviceID).Str("id", item.ID).Bool("duplicate", duplicate).Msg("mutation applied")
	}
	utils.WriteJSON(w, models.SendResponse{Success: true, Duplicate: duplicate}, http.StatusOK)
}
