// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package session

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kidscreen/kidscreen/internal/models"
)

// graceMaxDurationSeconds caps the bonus-video offer at five minutes.
const graceMaxDurationSeconds = 300

// recencyWindow is the trailing window used to tag videos novel or familiar.
const recencyWindow = 24 * time.Hour

// Orchestrator is the facade over the limit calculator, selection engine and
// watch log serving the three operations consumed by the HTTP layer.
//
// Every operation is a synchronous read-compute-(optionally write)-return
// cycle; no state is held between calls.
type Orchestrator struct {
	log      WatchLog
	catalog  Catalog
	cfg      ConfigProvider
	calc     *Calculator
	selector *Engine
	rng      Randomizer
	logger   zerolog.Logger
}

// NewOrchestrator wires the session engine together. The Randomizer feeds
// video selection; production passes a time-seeded rand.Rand, tests a fixed
// seed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOrchestrator(log WatchLog, catalog Catalog, cfg ConfigProvider, rng Randomizer, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		log:      log,
		catalog:  catalog,
		cfg:      cfg,
		calc:     NewCalculator(log, cfg),
		selector: NewEngine(),
		rng:      rng,
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

// GetVideosForGrid computes the current limit state and selects count videos
// appropriate to it.
//
// Locked returns an empty grid with the Locked state so the caller can route
// to the terminal screen. Grace constrains offers to graceMaxDurationSeconds
// and WindDown to the remaining minutes; in both modes, when nothing fits the
// constraint the shortest count videos from the unconstrained eligible set
// are offered instead - showing something short beats showing nothing.
//
// Returns ErrNoVideosAvailable when the eligible catalog is empty in any
// non-Locked state.
func (o *Orchestrator) GetVideosForGrid(ctx context.Context, now time.Time, count int) ([]models.Video, models.DailyLimitState, error) {
	if err := o.validateCount(count); err != nil {
		return nil, models.DailyLimitState{}, err
	}

	state, err := o.calc.Compute(ctx, now)
	if err != nil {
		return nil, models.DailyLimitState{}, err
	}

	if state.State == models.StateLocked {
		return []models.Video{}, state, nil
	}

	eligible, err := o.catalog.ListEligibleVideos(ctx)
	if err != nil {
		return nil, models.DailyLimitState{}, storageErr("list eligible videos", err)
	}
	if len(eligible) == 0 {
		return nil, models.DailyLimitState{}, ErrNoVideosAvailable
	}

	recent, err := o.log.RecentlyWatchedVideoIDs(ctx, now.UTC().Add(-recencyWindow))
	if err != nil {
		return nil, models.DailyLimitState{}, storageErr("load recent watches", err)
	}

	maxDuration := 0
	switch state.State {
	case models.StateWindDown:
		maxDuration = state.MinutesRemaining * 60
	case models.StateGrace:
		maxDuration = graceMaxDurationSeconds
	}

	videos := o.selector.Select(eligible, count, maxDuration, recent, o.rng)
	if len(videos) == 0 && maxDuration > 0 {
		// Nothing fits the duration cap. Re-select unconstrained over the
		// whole eligible set and keep the shortest ones.
		videos = o.selector.Select(eligible, len(eligible), 0, recent, o.rng)
		sort.Slice(videos, func(i, j int) bool {
			return videos[i].DurationSeconds < videos[j].DurationSeconds
		})
		if len(videos) > count {
			videos = videos[:count]
		}
		o.logger.Debug().
			Str("state", state.State.String()).
			Int("max_duration_seconds", maxDuration).
			Int("offered", len(videos)).
			Msg("No videos fit duration cap, falling back to shortest available")
	}

	return videos, state, nil
}

// LogWatchAndUpdate validates and appends a watch event, then recomputes and
// returns the resulting limit state. The returned state always reflects the
// just-appended event.
//
// A grace event is logged at most once per UTC date: a second grace
// submission is a no-op success returning the current state, which makes
// double-submission of the bonus video safe. Scheduled and manual events are
// not deduplicated; at-most-once delivery is the caller's contract.
func (o *Orchestrator) LogWatchAndUpdate(ctx context.Context, now time.Time, videoID string, completed bool, durationWatchedSeconds int, kind models.WatchKind) (models.DailyLimitState, error) {
	if videoID == "" {
		return models.DailyLimitState{}, &ValidationError{Field: "video_id", Reason: "must not be empty"}
	}
	if durationWatchedSeconds < 0 {
		return models.DailyLimitState{}, &ValidationError{Field: "duration_watched_seconds", Reason: "must be >= 0"}
	}
	if !kind.Valid() {
		return models.DailyLimitState{}, &ValidationError{Field: "kind", Reason: "must be scheduled, manual or grace"}
	}

	now = now.UTC()
	date := now.Format(time.DateOnly)

	if kind == models.WatchGrace {
		exists, err := o.log.HasGraceEventOn(ctx, date)
		if err != nil {
			return models.DailyLimitState{}, storageErr("check grace event", err)
		}
		if exists {
			o.logger.Info().Str("video_id", videoID).Msg("Duplicate grace event ignored")
			return o.calc.Compute(ctx, now)
		}
	}

	ev := models.WatchEvent{
		ID:                     uuid.New(),
		VideoID:                videoID,
		WatchedAt:              now,
		Completed:              completed,
		DurationWatchedSeconds: durationWatchedSeconds,
		Kind:                   kind,
	}
	if err := o.log.AppendWatchEvent(ctx, ev); err != nil {
		return models.DailyLimitState{}, storageErr("append watch event", err)
	}

	state, err := o.calc.Compute(ctx, now)
	if err != nil {
		return models.DailyLimitState{}, err
	}

	o.logger.Info().
		Str("video_id", videoID).
		Str("kind", kind.String()).
		Bool("completed", completed).
		Int("seconds", durationWatchedSeconds).
		Int("minutes_remaining", state.MinutesRemaining).
		Str("state", state.State.String()).
		Msg("Watch event logged")

	return state, nil
}

// GetStatus returns the current limit state without selecting any videos.
func (o *Orchestrator) GetStatus(ctx context.Context, now time.Time) (models.DailyLimitState, error) {
	return o.calc.Compute(ctx, now)
}

// validateCount bounds the requested grid size. The lower bound rejects
// nonsensical requests; the upper bound tracks the configured maximum so the
// grace grid (smaller, caller-chosen) stays valid.
func (o *Orchestrator) validateCount(count int) error {
	if count < 1 {
		return &ValidationError{Field: "count", Reason: "must be >= 1"}
	}
	if max := o.cfg.Limits().GridSize; count > max {
		return &ValidationError{Field: "count", Reason: "exceeds configured grid size"}
	}
	return nil
}
