// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package recommend implements the recommendation pipeline: identifier
// parsing, per-seed candidate fetching, score aggregation with watched
// exclusion, and genre frequency analysis for the dynamic catalogs.
//
// The pipeline fans out upstream calls concurrently and merges results
// in a single sequential step, so no shared state needs locking. All
// state is request-scoped; upstream policy (timeouts, retries,
// breakers) lives in the transport clients.
package recommend
