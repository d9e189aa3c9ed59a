// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package models defines data structures shared across the Kidscreen
// application: videos and channels from the parent-approved catalog, watch
// events in the append-only viewing log, the computed daily limit state, and
// the API response envelope.
//
// Watch events are immutable facts. The daily limit state is never stored; it
// is recomputed from the watch log on every request (see internal/session).
package models
