// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package api provides the addon HTTP surface: manifest, catalog and
// catalog-update endpoints plus health probes and Prometheus metrics.
// Credentials arrive as a base64url path segment and scope a Stremio
// client to the requesting user for the duration of one request.
package api
