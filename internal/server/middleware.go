package server

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pfrederiksen/acta-lineup/internal/logger"
)

// requestLogger stores a logger tagged with the chi request id in the request
// context and logs one entry per request with it
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := log.With(logger.Fields{"request_id": chimiddleware.GetReqID(r.Context())})
			r = r.WithContext(logger.NewContext(r.Context(), reqLog))

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			logger.IncrCounter("http.requests")
			logger.RecordTiming("http.request", elapsed)

			reqLog.Info("request", logger.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": elapsed.Milliseconds(),
			})
		})
	}
}
