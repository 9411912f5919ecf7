// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package models defines the domain types shared across the addon:
// library snapshots, recommendation candidates, enriched metadata records,
// catalog descriptors, and the manifest served to Stremio clients.
//
// All entities are request-scoped values. Nothing in this package owns
// state or performs I/O; the collaborator clients in internal/stremio and
// internal/tmdb produce these types and the pipeline in internal/recommend
// consumes them.
package models
