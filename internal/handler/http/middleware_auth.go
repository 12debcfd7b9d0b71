package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
)

// auth enforces device JWT authentication when the server has a token sign
// key. On success the device id is stored under [utils.DeviceIDCtxKey].
//
// Requests are rejected with 401 when the header is missing or malformed or
// the token is invalid, and with 403 when the device is not on the
// allow-list.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.services.AuthService.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUnknownDevice):
				log.Err(err).Msg("device is not allowed")
				http.Error(w, service.ErrUnknownDevice.Error(), http.StatusForbidden)
			default:
				log.Err(err).Msg("error occurred during parsing token")
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			}
			return
		}

		ctx = context.WithValue(ctx, utils.DeviceIDCtxKey, token.DeviceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
