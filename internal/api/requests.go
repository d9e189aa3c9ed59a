// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package api

// watchRequest is the body of POST /api/v1/watch.
type watchRequest struct {
	VideoID                string `json:"video_id" validate:"required,max=64"`
	Completed              bool   `json:"completed"`
	DurationWatchedSeconds int    `json:"duration_watched_seconds" validate:"min=0,max=86400"`
	Kind                   string `json:"kind" validate:"required,watchkind"`
}

// interruptCheckRequest carries the query parameters of
// GET /api/v1/interrupt-check.
type interruptCheckRequest struct {
	VideoDurationSeconds int `validate:"min=0,max=86400"`
}

// loginRequest is the body of POST /api/v1/auth/login.
type loginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// createChannelRequest is the body of POST /api/v1/admin/channels.
type createChannelRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=channel playlist"`
	ExternalID string `json:"external_id" validate:"required,max=64"`
	Title      string `json:"title" validate:"required,max=256"`
	Enabled    *bool  `json:"enabled"`
}

// updateChannelRequest is the body of PUT /api/v1/admin/channels/{id}.
// Absent fields keep their current values.
type updateChannelRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=256"`
	Enabled *bool   `json:"enabled"`
}

// historyRequest carries the date query parameter of
// GET /api/v1/admin/history.
type historyRequest struct {
	Date string `validate:"required,utcdate"`
}

// resetRequest is the body of POST /api/v1/admin/reset.
type resetRequest struct {
	Date string `json:"date" validate:"required,utcdate"`
}
