package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
)

// bodyHashing checks the HashSHA256 header against the HMAC of the raw
// body. It is a no-op when the server has no hash key.
func (h *Handler) bodyHashing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.hasher.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Handler.bodyHashing").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		hash := r.Header.Get(utils.HashHeader)
		if hash == "" || !h.hasher.Verify(body, hash) {
			log.Error().Str("func", "*Handler.bodyHashing").
				Str("hash from request", hash).
				Msg("hashes are not equal")
			http.Error(w, ErrIntegrityCheckFailed.Error(), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
