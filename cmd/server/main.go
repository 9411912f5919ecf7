// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package main is the entry point for the Watchly addon server.
//
// Watchly is a Stremio catalog addon that turns a user's library into
// personalized recommendation catalogs. Loved items seed similarity
// queries against TMDB, results are deduplicated and ranked by an
// additive relevance score, and already-watched titles are filtered
// out. The addon also derives dynamic "Because you loved/watched X"
// and genre-combination catalogs and publishes them back to the user's
// Stremio account.
//
// Startup order:
//
//  1. Configuration: koanf layered sources (defaults, YAML file, env)
//  2. Logging: zerolog, level/format from config
//  3. TMDB client: rate limited, wrapped in a circuit breaker
//  4. HTTP server: chi router with graceful shutdown on SIGINT/SIGTERM
//
// User credentials are never configured server-side; they arrive
// base64url-encoded in the request path and scope a Stremio client to
// that single request.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/watchly/watchly/internal/api"
	"github.com/watchly/watchly/internal/cache"
	"github.com/watchly/watchly/internal/catalog"
	"github.com/watchly/watchly/internal/config"
	"github.com/watchly/watchly/internal/logging"
	"github.com/watchly/watchly/internal/recommend"
	"github.com/watchly/watchly/internal/tmdb"
)

// shutdownTimeout bounds how long in-flight requests may drain.
const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addon_id", cfg.Addon.ID).
		Str("version", cfg.Addon.Version).
		Int("port", cfg.Server.Port).
		Msg("Starting Watchly")

	provider := tmdb.NewBreakerClient(&cfg.TMDB)
	engine := recommend.NewEngine(provider)
	builder := catalog.NewBuilder(provider, cfg.Recommend.GenreSeedItems)

	var respCache *cache.ResponseCache
	if cfg.Cache.Enabled {
		respCache = cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}

	handler := api.NewHandler(cfg, engine, builder, respCache)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(cfg, handler),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}
