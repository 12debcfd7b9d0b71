package http

import (
	"net/http"

	"github.com/MKhiriev/go-offline-sync/internal/utils"
)

// ping is the reachability probe used by client connectivity monitors.
func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.services.AppInfoService.GetBuildInfo(r.Context()), http.StatusOK)
}
