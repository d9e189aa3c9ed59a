// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/rs/zerolog"

	"github.com/kidscreen/kidscreen/internal/metrics"
	"github.com/kidscreen/kidscreen/internal/models"
)

// CircuitBreakerClient wraps a VideoSource with a circuit breaker so a
// broken upstream fails fast instead of burning quota and sync time.
//
// The breaker uses real time for its interval and timeout windows. Unit
// tests exercise the wrapped client directly.
type CircuitBreakerClient struct {
	source VideoSource
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
	logger zerolog.Logger
}

// NewCircuitBreakerClient wraps source. The breaker opens after a 60%
// failure rate across at least 10 requests, stays open for 2 minutes,
// and allows 3 probes in half-open state.
func NewCircuitBreakerClient(source VideoSource, logger zerolog.Logger) *CircuitBreakerClient {
	cbName := "youtube-api"
	cbLogger := logger.With().Str("component", "circuit_breaker").Logger()

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
				cbLogger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			cbLogger.Info().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &CircuitBreakerClient{
		source: source,
		cb:     cb,
		name:   cbName,
		logger: cbLogger,
	}
}

func (c *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.APIRequests.WithLabelValues(c.name, "rejected").Inc()
		} else {
			metrics.APIRequests.WithLabelValues(c.name, "failure").Inc()
		}
		// Pass the result through; the source may return partial data
		// alongside the error.
		return result, err
	}
	metrics.APIRequests.WithLabelValues(c.name, "success").Inc()
	return result, nil
}

// castResult type-asserts the breaker's untyped result, preserving partial
// results carried alongside an error.
func castResult[T any](result interface{}, err error) (T, error) {
	typed, ok := result.(T)
	if !ok {
		var zero T
		if err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, err
}

// ResolveUploadsPlaylist delegates with breaker protection.
func (c *CircuitBreakerClient) ResolveUploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	return castResult[string](c.execute(func() (interface{}, error) {
		return c.source.ResolveUploadsPlaylist(ctx, channelID)
	}))
}

// ListPlaylistVideoIDs delegates with breaker protection.
func (c *CircuitBreakerClient) ListPlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	return castResult[[]string](c.execute(func() (interface{}, error) {
		return c.source.ListPlaylistVideoIDs(ctx, playlistID)
	}))
}

// FetchVideos delegates with breaker protection.
func (c *CircuitBreakerClient) FetchVideos(ctx context.Context, channelID string, ids []string) ([]models.Video, error) {
	return castResult[[]models.Video](c.execute(func() (interface{}, error) {
		return c.source.FetchVideos(ctx, channelID, ids)
	}))
}

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
