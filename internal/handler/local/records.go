package local

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	snapshot, err := h.services.RecordService.List(r.Context(), collection)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listRecords").Str("collection", collection).Msg("error reading snapshot")
		utils.WriteJSON(w, errorResponse{Error: err.Error()}, statusFromError(err))
		return
	}
	if snapshot == nil {
		snapshot = models.Snapshot{}
	}

	utils.WriteJSON(w, snapshot, http.StatusOK)
}

// upsertRecord writes a record locally and queues it for delivery. The
// stored record, with a generated id when none was sent, is echoed back.
func (h *Handler) upsertRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	var record models.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil || record == nil {
		log.Error().Err(err).Str("func", "*Handler.upsertRecord").Msg("Invalid JSON was passed")
		utils.WriteJSON(w, errorResponse{Error: "invalid JSON"}, http.StatusBadRequest)
		return
	}

	stored, err := h.services.RecordService.Upsert(r.Context(), collection, record)
	if err != nil {
		log.Err(err).Str("func", "*Handler.upsertRecord").Str("collection", collection).Msg("error saving record")
		utils.WriteJSON(w, errorResponse{Error: err.Error()}, statusFromError(err))
		return
	}

	utils.WriteJSON(w, stored, http.StatusOK)
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")

	if err := h.services.RecordService.Delete(r.Context(), collection, id); err != nil {
		log.Err(err).Str("func", "*Handler.deleteRecord").Str("collection", collection).Str("id", id).Msg("error deleting record")
		utils.WriteJSON(w, errorResponse{Error: err.Error()}, statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listQueue(w http.ResponseWriter, r *http.Request) {
	items, err := h.services.QueueService.Pending(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.listQueue").Msg("error listing queue")
		utils.WriteJSON(w, errorResponse{Error: err.Error()}, statusFromError(err))
		return
	}
	if items == nil {
		items = []models.QueueItem{}
	}

	utils.WriteJSON(w, items, http.StatusOK)
}
