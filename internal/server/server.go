// Package server wires the import API routes
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/handlers"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/importer"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/middleware"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/registry"
)

// Options configures the server
type Options struct {
	Addr           string
	AllowedOrigin  string
	MaxUploadBytes int64
	PreviewTTL     time.Duration
	Logger         *log.Logger
}

// Server represents the kakeibo import API server
type Server struct {
	router chi.Router
	http   *http.Server
	logger *log.Logger
}

// New creates a server instance
func New(svc *importer.Service, reg *registry.Registry, opts Options) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: opts.Logger,
	}
	s.setupRoutes(handlers.New(svc, reg, opts.MaxUploadBytes, opts.PreviewTTL), opts)

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(h *handlers.Handler, opts Options) {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.Recoverer)
	s.router.Use(middleware.RequestLogger(s.logger))
	s.router.Use(middleware.CORS(opts.AllowedOrigin))

	s.router.Get("/health", handlers.HealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/formats", h.Formats)
		r.Get("/entries", h.ListEntries)

		r.Route("/import", func(r chi.Router) {
			r.Post("/bank/preview", h.PreviewBank)
			r.Post("/card/preview", h.PreviewCard)
			r.Post("/commit/{previewId}", h.Commit)
			r.Post("/bank", h.ImportBank)
			r.Post("/card", h.ImportCard)
		})
	})
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return s.http.Shutdown(shutdownCtx)
	}
}
