// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// LimitState is the child's current position in the daily-limit lifecycle.
//
// The state is a pure function of the watch log and configuration. It is
// recomputed on every request and never persisted, so it cannot drift from
// the log across restarts.
type LimitState int

const (
	// StateNormal means more than ten minutes remain.
	StateNormal LimitState = iota
	// StateWindDown means ten or fewer minutes remain; offers are
	// duration-constrained to fit the remaining time.
	StateWindDown
	// StateGrace means the limit is spent but the day's single bonus video
	// has not yet been consumed or declined.
	StateGrace
	// StateLocked is terminal for the day: no further scheduled viewing
	// until the next UTC midnight.
	StateLocked
)

// String returns the wire name for the state.
func (s LimitState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateWindDown:
		return "wind_down"
	case StateGrace:
		return "grace"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the state as its wire name.
func (s LimitState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses the wire name form.
func (s *LimitState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "normal":
		*s = StateNormal
	case "wind_down":
		*s = StateWindDown
	case "grace":
		*s = StateGrace
	case "locked":
		*s = StateLocked
	default:
		return fmt.Errorf("unknown limit state %q", name)
	}
	return nil
}

// DailyLimitState is the computed view of today's viewing budget.
type DailyLimitState struct {
	// Date is the UTC calendar date this state describes, YYYY-MM-DD.
	Date string `json:"date"`

	// MinutesWatched is the floor-minute sum of scheduled watch seconds for
	// Date. Manual and grace events are excluded by construction.
	MinutesWatched int `json:"minutes_watched"`

	// MinutesRemaining is max(0, dailyLimitMinutes - MinutesWatched).
	MinutesRemaining int `json:"minutes_remaining"`

	State LimitState `json:"state"`

	// ResetAt is the next UTC midnight, when the day rolls over.
	ResetAt time.Time `json:"reset_at"`
}
