// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

// Command api is the entry point for the Grimoire HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the catalog document store.
//  4. Prepare the asset upload directory.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkowalczyk/grimoire/internal/api"
	"github.com/mkowalczyk/grimoire/internal/asset"
	"github.com/mkowalczyk/grimoire/internal/auth"
	"github.com/mkowalczyk/grimoire/internal/catalog"
	"github.com/mkowalczyk/grimoire/internal/platform/config"
	"github.com/mkowalczyk/grimoire/internal/platform/constants"
	"github.com/mkowalczyk/grimoire/internal/platform/sec"
	"github.com/mkowalczyk/grimoire/pkg/srcref"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "grimoire"))
	slog.SetDefault(log)

	log.Info("[Grimoire] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "grimoire"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for background middleware workers (rate limiter cleanup).
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// ── 3. Catalog Store ──────────────────────────────────────────────────
	store, err := catalog.NewFileStore(cfg.DataFile)
	must(log, err, "open catalog store")

	// ── 4. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(cfg.AdminUser, cfg.AdminPass, jwtSvc, log)
	authHandler := auth.NewHandler(authService)

	normalizer := srcref.New(cfg.UploadMount)
	catalogService := catalog.NewService(store, normalizer, log)
	catalogHandler := catalog.NewHandler(catalogService)

	assetService, err := asset.NewService(cfg.UploadDir, cfg.UploadMount, cfg.SourceBase, http.DefaultClient, log)
	must(log, err, "prepare upload directory")
	assetHandler := asset.NewHandler(assetService)

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckStore: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return store.Ping(ctx)
		},
		CheckUploadDir: func() error {
			_, statErr := os.Stat(cfg.UploadDir)
			return statErr
		},
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Catalog:   catalogHandler,
		Asset:     assetHandler,
	}

	server := api.NewServer(rootCtx, cfg, log, authService, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
