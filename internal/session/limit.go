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

// windDownThresholdMinutes is the remaining-minutes boundary at and below
// which the engine enters WindDown. Exactly 10 remaining is WindDown.
const windDownThresholdMinutes = 10

// Calculator derives the current DailyLimitState from the watch log.
//
// Compute has no side effects and no hidden clock: the caller passes now, and
// "today" is the UTC calendar date of that instant.
type Calculator struct {
	log WatchLog
	cfg ConfigProvider
}

// NewCalculator creates a limit calculator over the given log and config.
func NewCalculator(log WatchLog, cfg ConfigProvider) *Calculator {
	return &Calculator{log: log, cfg: cfg}
}

// Compute returns today's daily limit state as of now.
//
// Minutes watched is the truncating integer division of the scheduled-second
// sum: 90 watched seconds is 1 minute. Storage failures surface as
// StorageUnavailableError; they are never treated as zero usage.
func (c *Calculator) Compute(ctx context.Context, now time.Time) (models.DailyLimitState, error) {
	now = now.UTC()
	date := now.Format(time.DateOnly)
	limits := c.cfg.Limits()

	seconds, err := c.log.SumCountableSeconds(ctx, date)
	if err != nil {
		return models.DailyLimitState{}, storageErr("sum countable seconds", err)
	}
	watched := seconds / 60

	remaining := limits.DailyLimitMinutes - watched
	if remaining < 0 {
		remaining = 0
	}

	state := models.StateNormal
	switch {
	case remaining == 0:
		graceUsed, err := c.log.HasGraceEventOn(ctx, date)
		if err != nil {
			return models.DailyLimitState{}, storageErr("check grace event", err)
		}
		if graceUsed {
			state = models.StateLocked
		} else {
			state = models.StateGrace
		}
	case remaining <= windDownThresholdMinutes:
		state = models.StateWindDown
	}

	return models.DailyLimitState{
		Date:             date,
		MinutesWatched:   watched,
		MinutesRemaining: remaining,
		State:            state,
		ResetAt:          nextUTCMidnight(now),
	}, nil
}

// nextUTCMidnight returns the start of the next UTC calendar day.
func nextUTCMidnight(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
