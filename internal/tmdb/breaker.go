// Watchly - Stremio Recommendation Catalog Addon
// Copyright 2026 Watchly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchly/watchly

package tmdb

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/watchly/watchly/internal/config"
	"github.com/watchly/watchly/internal/logging"
	"github.com/watchly/watchly/internal/metrics"
	"github.com/watchly/watchly/internal/models"
)

// BreakerClient wraps Client with a circuit breaker so a failing or
// slow TMDB upstream cannot stall every catalog request.
//
// The breaker uses real time for its interval and timeout. Unit tests
// exercise the wrapped Client directly and leave breaker timing alone.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewBreakerClient creates a TMDB client protected by a circuit
// breaker. The breaker opens at a 60% failure rate over at least 10
// requests, allows 3 probes in half-open state and waits 2 minutes
// before probing an open circuit.
func NewBreakerClient(cfg *config.TMDBConfig) *BreakerClient {
	client := NewClient(cfg)
	cbName := "tmdb-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute runs one upstream call through the breaker and records the
// rejected outcome when the circuit refuses the call.
func (b *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.UpstreamRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		}
		return nil, err
	}
	return result, nil
}

// FindByIMDBID resolves an IMDB ID through the breaker.
func (b *BreakerClient) FindByIMDBID(ctx context.Context, imdbID string) (int, string, error) {
	type found struct {
		id        int
		mediaType string
	}
	result, err := b.execute(func() (interface{}, error) {
		id, mediaType, err := b.client.FindByIMDBID(ctx, imdbID)
		if err != nil {
			return nil, err
		}
		return found{id: id, mediaType: mediaType}, nil
	})
	if err != nil {
		return 0, "", err
	}
	f := result.(found)
	return f.id, f.mediaType, nil
}

// GetRecommendations fetches candidates through the breaker.
func (b *BreakerClient) GetRecommendations(ctx context.Context, tmdbID int, mediaType string) ([]models.Candidate, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.GetRecommendations(ctx, tmdbID, mediaType)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Candidate), nil
}

// DiscoverByGenres fetches genre matches through the breaker.
func (b *BreakerClient) DiscoverByGenres(ctx context.Context, mediaType string, genreIDs []int, limit int) ([]models.Candidate, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.DiscoverByGenres(ctx, mediaType, genreIDs, limit)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Candidate), nil
}

// GetAddonMeta fetches an enriched meta through the breaker.
func (b *BreakerClient) GetAddonMeta(ctx context.Context, stremioType, id string) (*models.Meta, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.client.GetAddonMeta(ctx, stremioType, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Meta), nil
}

// stateToString converts a gobreaker state to a metrics label.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// stateToFloat converts a gobreaker state to its gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
