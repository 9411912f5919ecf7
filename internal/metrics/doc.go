// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

// Package metrics defines the Prometheus collectors for the addon:
// HTTP request counts and latencies, upstream call outcomes, circuit
// breaker state, and recommendation pipeline result sizes. Collectors
// are registered with the default registry via promauto and exposed on
// the /metrics endpoint.
package metrics
