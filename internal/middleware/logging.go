// Package middleware provides the HTTP middleware shared by the API routes
package middleware

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/logger"
)

// RequestLogger stores a request-scoped logger in the context and logs each
// completed request. Server errors log at Error, client errors at Warn.
func RequestLogger(base *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := base.With("method", r.Method, "path", r.URL.Path)
			if id := chimw.GetReqID(r.Context()); id != "" {
				l = l.With("requestId", id)
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			kv := []any{"status", status, "bytes", ww.BytesWritten(), "duration", time.Since(start)}
			switch {
			case status >= 500:
				l.Error("request failed", kv...)
			case status >= 400:
				l.Warn("request rejected", kv...)
			default:
				l.Info("request", kv...)
			}
		})
	}
}
