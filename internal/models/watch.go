// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// WatchKind classifies a watch event for limit accounting.
//
// The three kinds form a closed set: Scheduled watches come from the child's
// normal grid selection and are the only kind that counts toward the daily
// limit; Manual watches are parent-triggered replays; Grace is the single
// bonus video after the limit is reached. A zero-duration Grace event records
// a declined grace offer.
type WatchKind int

const (
	// WatchScheduled counts toward the daily limit.
	WatchScheduled WatchKind = iota
	// WatchManual is a parent-triggered replay. Never counts.
	WatchManual
	// WatchGrace is the one bonus video per UTC day. Never counts.
	WatchGrace
)

// String returns the wire name for the kind.
func (k WatchKind) String() string {
	switch k {
	case WatchScheduled:
		return "scheduled"
	case WatchManual:
		return "manual"
	case WatchGrace:
		return "grace"
	default:
		return "unknown"
	}
}

// Countable reports whether events of this kind count toward the daily limit.
func (k WatchKind) Countable() bool {
	return k == WatchScheduled
}

// Valid reports whether the kind is one of the three known values.
func (k WatchKind) Valid() bool {
	switch k {
	case WatchScheduled, WatchManual, WatchGrace:
		return true
	default:
		return false
	}
}

// ParseWatchKind converts a wire name into a WatchKind.
func ParseWatchKind(s string) (WatchKind, error) {
	switch s {
	case "scheduled":
		return WatchScheduled, nil
	case "manual":
		return WatchManual, nil
	case "grace":
		return WatchGrace, nil
	default:
		return WatchScheduled, fmt.Errorf("unknown watch kind %q", s)
	}
}

// MarshalJSON serializes the kind as its wire name.
func (k WatchKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid watch kind %d", int(k))
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON parses the wire name form.
func (k *WatchKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseWatchKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// WatchEvent is an immutable record of a single playback session.
//
// Events are created exactly once per playback: on completion, on
// interruption or back-navigation, or on grace consumption/decline. They are
// never mutated; the admin "reset day" operation deletes by date, outside the
// core engine.
type WatchEvent struct {
	ID uuid.UUID `json:"id"`

	VideoID string `json:"video_id"`

	// WatchedAt is the UTC instant the event was recorded. The UTC calendar
	// date of this field decides which day the event belongs to.
	WatchedAt time.Time `json:"watched_at"`

	Completed bool `json:"completed"`

	// DurationWatchedSeconds is how long the child actually watched. May
	// exceed the video duration slightly due to player rounding; that is
	// tolerated, not rejected.
	DurationWatchedSeconds int `json:"duration_watched_seconds"`

	Kind WatchKind `json:"kind"`
}

// UTCDate returns the event's UTC calendar date in YYYY-MM-DD form.
func (e WatchEvent) UTCDate() string {
	return e.WatchedAt.UTC().Format(time.DateOnly)
}
