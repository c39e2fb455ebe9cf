// Package server exposes the scheduler simulator over a JSON REST API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/gosched/internal/config"
	"github.com/me/gosched/internal/logging"
	"github.com/me/gosched/internal/policy"
	"github.com/me/gosched/internal/store"
)

// Version is reported by the health and discovery endpoints.
const Version = "0.1.0"

// Server is the gosched REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	base      *slog.Logger // untagged logger handed to the engine
	config    config.ServerConfig
	startTime time.Time
	store     store.Store // optional; nil disables run history
	registry  *policy.Registry
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithRegistry replaces the default policy registry.
func WithRegistry(reg *policy.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// New creates a new Server with all routes registered.
// st may be nil, in which case simulations are not recorded and the run
// history endpoints answer 503.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger, opts ...Option) *Server {
	logger = logging.OrDiscard(logger)
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	if cfg.MaxTotalBurst <= 0 {
		cfg.MaxTotalBurst = config.DefaultMaxTotalBurst
	}
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		base:      logger,
		config:    cfg,
		startTime: time.Now(),
		store:     st,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = policy.DefaultRegistry(logger)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)

		r.Route("/simulations", func(r chi.Router) {
			r.Post("/", s.handleCreateSimulation)
			r.Get("/{id}", s.handleGetSimulation)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRun)
				r.Delete("/", s.handleDeleteRun)
			})
		})
	})
}
