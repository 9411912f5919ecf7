// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface metrics, recorded by the Prometheus middleware.

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchly_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchly_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Upstream collaborator metrics (TMDB API, TMDB addon, Stremio API).

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchly_upstream_requests_total",
			Help: "Total number of upstream API requests by service and outcome",
		},
		[]string{"service", "outcome"}, // outcome: "success", "failure", "rejected"
	)

	// Circuit breaker state per upstream: 0=closed, 1=half-open, 2=open.

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchly_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchly_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Recommendation pipeline metrics.

	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchly_catalog_requests_total",
			Help: "Total number of catalog requests by content type and catalog kind",
		},
		[]string{"type", "kind"}, // kind: "library", "item", "genre"
	)

	CatalogResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchly_catalog_result_size",
			Help:    "Number of metas returned per catalog request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"type"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchly_response_cache_hits_total",
			Help: "Total number of catalog response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchly_response_cache_misses_total",
			Help: "Total number of catalog response cache misses",
		},
	)
)

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUpstream records the outcome of one upstream API call.
func RecordUpstream(service string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
}
