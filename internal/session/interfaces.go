// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package session

import (
	"context"
	"time"

	"github.com/kidscreen/kidscreen/internal/models"
)

// WatchLog is the append-only record of watch events, queryable by UTC date.
// Implemented by *database.DB.
//
// Appends must be atomic per event. Scheduled and manual events are not
// deduplicated here; at-most-once delivery of completion calls is the
// caller's responsibility. Grace uniqueness is enforced by the orchestrator
// via HasGraceEventOn.
type WatchLog interface {
	// AppendWatchEvent stores one immutable event.
	AppendWatchEvent(ctx context.Context, ev models.WatchEvent) error

	// SumCountableSeconds returns the total scheduled (countable) seconds
	// watched on the given UTC date (YYYY-MM-DD).
	SumCountableSeconds(ctx context.Context, utcDate string) (int, error)

	// HasGraceEventOn reports whether any grace event (consumed or declined)
	// exists on the given UTC date.
	HasGraceEventOn(ctx context.Context, utcDate string) (bool, error)

	// RecentlyWatchedVideoIDs returns the IDs of videos with at least one
	// scheduled watch event at or after since.
	RecentlyWatchedVideoIDs(ctx context.Context, since time.Time) (map[string]struct{}, error)
}

// Catalog supplies the offerable video set. Implemented by *database.DB.
type Catalog interface {
	// ListEligibleVideos returns available, non-banned videos.
	ListEligibleVideos(ctx context.Context) ([]models.Video, error)
}

// Limits is the slice of configuration the engine consumes.
type Limits struct {
	// DailyLimitMinutes is the child's daily budget (5-180).
	DailyLimitMinutes int

	// GridSize is the number of videos offered in a normal grid (4-15).
	GridSize int
}

// ConfigProvider yields the current limit configuration. Reads happen on
// every operation so admin changes take effect without restart.
type ConfigProvider interface {
	Limits() Limits
}
