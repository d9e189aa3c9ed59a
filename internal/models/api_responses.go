// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP endpoints.
//
// Status is "success" or "error". Data carries the payload for successful
// responses; Error is populated only when Status is "error".
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "duration_watched_seconds must be >= 0"
//	  },
//	  "metadata": {"timestamp": "2026-01-03T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError carries structured error details.
//
// Error codes used by the API layer:
//   - VALIDATION_ERROR: malformed or out-of-range input; reject, do not retry
//   - NO_VIDEOS_AVAILABLE: eligible catalog is empty; parent must add channels
//   - STORAGE_UNAVAILABLE: transient store failure; caller may retry
//   - UNAUTHORIZED: missing or invalid parent credentials
//   - NOT_FOUND: unknown resource
//   - INTERNAL_ERROR: unexpected server failure
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes returned by the API layer.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNoVideosAvailable  = "NO_VIDEOS_AVAILABLE"
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeSyncDisabled       = "SYNC_DISABLED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// GridResponse is the payload for GET /api/v1/grid.
type GridResponse struct {
	Videos     []Video         `json:"videos"`
	DailyLimit DailyLimitState `json:"daily_limit"`
}

// StatusResponse is the payload for GET /api/v1/status and POST /api/v1/watch.
type StatusResponse struct {
	DailyLimit DailyLimitState `json:"daily_limit"`
}

// InterruptCheckResponse is the payload for GET /api/v1/interrupt-check.
type InterruptCheckResponse struct {
	ShouldInterrupt bool `json:"should_interrupt"`
}
