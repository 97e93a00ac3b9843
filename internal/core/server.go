// Package core provides the API chassis: a chi router with the cross-cutting
// middleware (panic recovery, request IDs, logging, CORS, timeouts), the
// JSON response envelope, and the health endpoint. Domain handlers are
// mounted by the entry point via route registrars so core never imports the
// handler packages.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"airwatch/internal/config"
)

// Pinger is the minimal health-check contract the server needs from the
// database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouteRegistrar mounts a group of domain routes on the versioned router.
type RouteRegistrar func(r chi.Router)

// Server encapsulates the HTTP dependencies, allowing injection during
// testing and distinct configuration per environment.
type Server struct {
	Config *config.Config
	Logger *slog.Logger
	DB     Pinger

	// V1RouteRegistrars are applied under /v1 by MountRoutes. Populated by
	// the entry point; the indirection avoids import cycles.
	V1RouteRegistrars []RouteRegistrar

	router *chi.Mux
}

// NewServer prepares the server for route mounting, failing fast on missing
// dependencies.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration in tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
