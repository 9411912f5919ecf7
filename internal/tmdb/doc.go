// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package tmdb provides the TMDB API and TMDB Stremio addon clients
// used to resolve external IDs, fetch recommendation candidates and
// enrich catalog metas. The raw client carries a client-side rate
// limiter; BreakerClient adds circuit breaker protection on top.
package tmdb
