// Package server exposes the line-up importer and a live match session over HTTP.
//
// Routes:
//
//	POST /api/scrape-lineup        {url} -> roster
//	GET  /api/match                current match snapshot
//	PUT  /api/match/lineup         load both teams (pre-match only)
//	POST /api/match/{command}      start, pause, resume, switch-half, end, reset
//	GET  /api/match/events         event log, filtered by ?team= &type= &player= &half= &minutes=
//	POST /api/match/events         record an event
//	GET  /api/match/stats          per-team tallies and score
//	GET  /api/match/export         download as json or csv (?format=, same filters as events)
//	POST /api/match/save           write the export to the data directory
//	GET  /health, GET /api/metrics
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pfrederiksen/acta-lineup/internal/export"
	"github.com/pfrederiksen/acta-lineup/internal/lineup"
	"github.com/pfrederiksen/acta-lineup/internal/logger"
	"github.com/pfrederiksen/acta-lineup/internal/match"
)

const (
	ServiceName     = "acta-lineup"
	shutdownTimeout = 10 * time.Second
)

// RosterSource imports a roster from a match report URL
type RosterSource interface {
	FetchRoster(ctx context.Context, url string) (*lineup.Roster, error)
}

// ExportStore persists match exports
type ExportStore interface {
	SaveExport(doc export.Document, format export.Format) (string, error)
}

// Server holds the HTTP handlers and their dependencies
type Server struct {
	source         RosterSource
	store          ExportStore
	match          *match.Match
	log            *logger.Logger
	allowedOrigins []string
}

// Option configures a Server
type Option func(*Server)

// WithStore enables POST /api/match/save
func WithStore(store ExportStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMatch replaces the match session, mainly for tests with a fake clock
func WithMatch(m *match.Match) Option {
	return func(s *Server) {
		s.match = m
	}
}

// WithLogger sets the request and handler logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithAllowedOrigins sets the CORS origins. The default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// New creates a Server importing rosters from source
func New(source RosterSource, opts ...Option) *Server {
	s := &Server{
		source:         source,
		log:            logger.Default(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.match == nil {
		s.match = match.New()
	}
	return s
}

// Handler builds the router with middleware and all routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", s.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/metrics", s.Metrics)

		r.Post("/scrape-lineup", s.ScrapeLineup)
		r.Options("/scrape-lineup", s.ScrapeLineupOptions)

		r.Route("/match", func(r chi.Router) {
			r.Get("/", s.GetMatch)
			r.Put("/lineup", s.SetLineup)
			r.Get("/events", s.ListEvents)
			r.Post("/events", s.RecordEvent)
			r.Get("/stats", s.GetStats)
			r.Get("/export", s.ExportMatch)
			r.Post("/save", s.SaveMatch)
			r.Post("/{command}", s.ApplyCommand)
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server started", logger.Fields{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
