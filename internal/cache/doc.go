// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package cache provides a bounded in-memory TTL cache for built
// catalog responses, keyed by a hash of the requesting credentials
// plus the catalog type and id.
package cache
