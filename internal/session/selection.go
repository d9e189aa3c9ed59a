// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package session

import (
	"github.com/kidscreen/kidscreen/internal/models"
)

// novelPercent is the share of each grid drawn from videos the child has not
// watched in the trailing 24 hours. Fixed at 70 (the middle of the intended
// 60-80 band); the remainder comes from familiar videos so the grid mixes
// discovery with comfort rewatching.
const novelPercent = 70

// Randomizer is the injectable randomness source for selection. *rand.Rand
// satisfies it; tests pass a seeded instance for deterministic draws.
type Randomizer interface {
	Shuffle(n int, swap func(i, j int))
}

// Engine selects which eligible videos to offer, weighted toward novelty.
// It is stateless; the same seeded Randomizer yields the same selection.
type Engine struct{}

// NewEngine creates a selection engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Select returns up to count videos drawn without replacement from catalog.
//
// Eligibility: banned and unavailable videos are always excluded, and when
// maxDurationSeconds > 0 so are videos longer than it. Select never relaxes
// its own duration constraint; the orchestrator owns the fallback when the
// constrained set is empty.
//
// Videos with no scheduled watch in recentlyWatched are "novel"; the draw
// targets novelPercent of count from the novel pool and backfills from the
// other pool when one runs dry. If fewer eligible videos exist than count,
// all of them are returned - never padded, never duplicated.
func (e *Engine) Select(catalog []models.Video, count int, maxDurationSeconds int, recentlyWatched map[string]struct{}, rng Randomizer) []models.Video {
	if count <= 0 {
		return nil
	}

	eligible := make([]models.Video, 0, len(catalog))
	for _, v := range catalog {
		if v.Banned || !v.Available {
			continue
		}
		if maxDurationSeconds > 0 && v.DurationSeconds > maxDurationSeconds {
			continue
		}
		eligible = append(eligible, v)
	}
	if len(eligible) == 0 {
		return nil
	}

	if len(eligible) <= count {
		rng.Shuffle(len(eligible), func(i, j int) {
			eligible[i], eligible[j] = eligible[j], eligible[i]
		})
		return eligible
	}

	var novel, familiar []models.Video
	for _, v := range eligible {
		if _, seen := recentlyWatched[v.ID]; seen {
			familiar = append(familiar, v)
		} else {
			novel = append(novel, v)
		}
	}
	rng.Shuffle(len(novel), func(i, j int) {
		novel[i], novel[j] = novel[j], novel[i]
	})
	rng.Shuffle(len(familiar), func(i, j int) {
		familiar[i], familiar[j] = familiar[j], familiar[i]
	})

	// Round to nearest so small grids stay inside the 60-80 band; truncation
	// would put a 4-video grace grid at 50% novel.
	novelQuota := (count*novelPercent + 50) / 100
	if novelQuota > len(novel) {
		novelQuota = len(novel)
	}
	familiarQuota := count - novelQuota
	if familiarQuota > len(familiar) {
		// Familiar pool exhausted; backfill from novel.
		familiarQuota = len(familiar)
		if extra := count - novelQuota - familiarQuota; extra > 0 {
			novelQuota += min(extra, len(novel)-novelQuota)
		}
	}

	picked := make([]models.Video, 0, count)
	picked = append(picked, novel[:novelQuota]...)
	picked = append(picked, familiar[:familiarQuota]...)

	// Interleave the pools so novel videos do not cluster at the top.
	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked
}
