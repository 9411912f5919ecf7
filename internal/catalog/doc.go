// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package catalog builds the dynamic catalog descriptors published to
// a user's Stremio account: per-type "Because you loved/watched X"
// entries and genre-combination catalogs derived from recent loved
// items.
package catalog
