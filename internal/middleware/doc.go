// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package middleware contains the HTTP middleware used by the addon's
// chi router: request ID propagation and Prometheus instrumentation.
// Rate limiting, CORS, real-IP extraction and panic recovery come from
// the chi ecosystem and are wired directly in internal/api.
package middleware
