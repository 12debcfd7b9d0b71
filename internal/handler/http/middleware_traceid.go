package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

const traceIDHeader = "X-Trace-ID"

// WithTraceID attaches a child of base carrying a trace_id field to the
// request context. The id is taken from X-Trace-ID or generated, and echoed
// back in the response header.
func WithTraceID(base *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(traceIDHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			l := base.GetChildLogger()
			l.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("trace_id", traceID)
			})
			r = r.WithContext(l.WithContext(r.Context()))

			w.Header().Set(traceIDHeader, traceID)
			next.ServeHTTP(w, r)
		})
	}
}
