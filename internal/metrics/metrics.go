// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package metrics defines the Prometheus instrumentation for the server:
// HTTP latency and throughput, watch event accounting, daily limit
// state, catalog size, and ingest health.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Viewing session metrics

	WatchEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_events_total",
			Help: "Total number of logged watch events by kind",
		},
		[]string{"kind"},
	)

	WatchSecondsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watch_seconds_total",
			Help: "Total seconds of logged viewing by kind",
		},
		[]string{"kind"},
	)

	// LimitStateGauge reports the current daily limit state as a number:
	// 0 normal, 1 wind_down, 2 grace, 3 locked.
	LimitStateGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daily_limit_state",
			Help: "Current daily limit state (0=normal 1=wind_down 2=grace 3=locked)",
		},
	)

	MinutesRemainingGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "daily_limit_minutes_remaining",
			Help: "Minutes remaining in today's viewing budget",
		},
	)

	GridRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grid_requests_total",
			Help: "Total grid requests by limit state at serve time",
		},
		[]string{"state"},
	)

	// Catalog and ingest metrics

	CatalogVideos = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_videos",
			Help: "Number of available videos per channel after last sync",
		},
		[]string{"channel_id"},
	)

	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_runs_total",
			Help: "Total per-channel sync attempts by outcome",
		},
		[]string{"outcome"},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_api_requests_total",
			Help: "Total upstream API requests by client and outcome",
		},
		[]string{"client", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed 1=half-open 2=open)",
		},
		[]string{"name"},
	)

	// Database metrics

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}

// RecordWatchEvent records a logged watch event.
func RecordWatchEvent(kind string, seconds int) {
	WatchEventsTotal.WithLabelValues(kind).Inc()
	WatchSecondsTotal.WithLabelValues(kind).Add(float64(seconds))
}

// RecordLimitState publishes the most recently computed limit state.
func RecordLimitState(state string, minutesRemaining int) {
	var v float64
	switch state {
	case "normal":
		v = 0
	case "wind_down":
		v = 1
	case "grace":
		v = 2
	case "locked":
		v = 3
	default:
		v = -1
	}
	LimitStateGauge.Set(v)
	MinutesRemainingGauge.Set(float64(minutesRemaining))
}

// RecordDBQuery records a storage layer query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
