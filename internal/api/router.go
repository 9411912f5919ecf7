// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/watchly/watchly/internal/config"
	"github.com/watchly/watchly/internal/middleware"
)

// NewRouter assembles the addon's HTTP surface.
func NewRouter(cfg *config.Config, handler *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.Prometheus)

	r.Get("/", handler.Root)
	r.Get("/configure", handler.Configure)
	r.Get("/manifest.json", handler.Manifest)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	// Credential-scoped addon routes. Rate limited per client IP; the
	// catalog pipeline fans out to upstream APIs, so unbounded
	// request rates would amplify.
	r.Route("/{credentials}", func(r chi.Router) {
		if !cfg.RateLimit.Disabled {
			r.Use(httprate.LimitByIP(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}

		r.Get("/manifest.json", handler.Manifest)
		r.Get("/configure", handler.Configure)
		r.Get("/catalog/update", handler.UpdateCatalogs)
		r.Get("/catalog/{contentType}/{id}", handler.Catalog)
	})

	return r
}
