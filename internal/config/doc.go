// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package config loads and validates the addon configuration using
// koanf v2 with layered sources: struct defaults, an optional YAML file,
// and environment variable overrides (highest priority).
//
// Environment variables use an explicit mapping table (TMDB_API_KEY,
// PORT, LOG_LEVEL, ...) so unrelated variables never pollute the config.
package config
