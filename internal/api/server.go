// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mkowalczyk/grimoire/internal/asset"
	"github.com/mkowalczyk/grimoire/internal/auth"
	"github.com/mkowalczyk/grimoire/internal/catalog"
	"github.com/mkowalczyk/grimoire/internal/platform/config"
	"github.com/mkowalczyk/grimoire/internal/platform/constants"
	"github.com/mkowalczyk/grimoire/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles authentication routes (login, logout).
	Auth *auth.Handler

	// Catalog handles the public listing and the admin catalog surface.
	Catalog *catalog.Handler

	// Asset handles upload and mirror ingestion.
	Asset *asset.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// The admin route group is created exactly once here, with [middleware.RequireAuth]
// applied before any domain handler registers into it.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Static Assets
	// Uploaded and mirrored files are served verbatim from the upload dir.
	mount := strings.TrimSuffix(cfg.UploadMount, "/")
	fileServer := http.StripPrefix(mount, http.FileServer(http.Dir(cfg.UploadDir)))
	r.Get(mount+"/*", fileServer.ServeHTTP)

	// # Application API
	r.Route("/api", func(api chi.Router) {
		h.Catalog.RegisterPublicRoutes(api)

		api.Mount("/auth", h.Auth.Routes())

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireAuth)
			h.Catalog.RegisterAdminRoutes(admin)
			h.Asset.RegisterAdminRoutes(admin)
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
