// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package session

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kidscreen/kidscreen/internal/models"
)

func newTestOrchestrator(log *fakeLog, catalog *fakeCatalog, limits Limits) *Orchestrator {
	return NewOrchestrator(log, catalog, staticConfig{limits: limits},
		rand.New(rand.NewSource(42)), zerolog.Nop())
}

func TestGetVideosForGridNormal(t *testing.T) {
	// Twenty eligible videos, a 30 minute limit and no history: full grid in
	// Normal state with the whole budget remaining.
	log := &fakeLog{}
	catalog := &fakeCatalog{videos: makeCatalog(20, 300)}
	orch := newTestOrchestrator(log, catalog, Limits{DailyLimitMinutes: 30, GridSize: 9})

	videos, state, err := orch.GetVideosForGrid(context.Background(), testNow, 9)
	if err != nil {
		t.Fatalf("GetVideosForGrid() error: %v", err)
	}
	if len(videos) != 9 {
		t.Errorf("len(videos) = %d, want 9", len(videos))
	}
	if state.State != models.StateNormal {
		t.Errorf("State = %v, want Normal", state.State)
	}
	if state.MinutesRemaining != 30 {
		t.Errorf("MinutesRemaining = %d, want 30", state.MinutesRemaining)
	}
}

func TestGetVideosForGridWindDownConstrainsDuration(t *testing.T) {
	// 22 of 30 minutes used: 8 remaining, so only videos of 480 seconds or
	// less may be offered.
	log := &fakeLog{events: []models.WatchEvent{
		scheduledEvent(testNow.Add(-time.Hour), 22*60),
	}}
	catalog := &fakeCatalog{videos: makeCatalog(10, 300)}
	for i := 5; i < 10; i++ {
		catalog.videos[i].DurationSeconds = 600
	}
	orch := newTestOrchestrator(log, catalog, Limits{DailyLimitMinutes: 30, GridSize: 9})

	videos, state, err := orch.GetVideosForGrid(context.Background(), testNow, 9)
	if err != nil {
		t.Fatalf("GetVideosForGrid() error: %v", err)
	}
	if state.State != models.StateWindDown {
		t.Fatalf("State = %v, want WindDown", state.State)
	}
	if len(videos) != 5 {
		t.Errorf("len(videos) = %d, want the 5 short videos", len(videos))
	}
	for _, v := range videos {
		if v.DurationSeconds > state.MinutesRemaining*60 {
			t.Errorf("video %s duration %d exceeds remaining budget", v.ID, v.DurationSeconds)
		}
	}
}

func TestGetVideosForGridWindDownFallbackShortest(t *testing.T) {
	// Nothing fits the 5 remaining minutes, so the orchestrator falls back
	// to the shortest videos from the unconstrained set.
	log := &fakeLog{events: []models.WatchEvent{
		scheduledEvent(testNow.Add(-time.Hour), 25*60),
	}}
	catalog := &fakeCatalog{videos: makeCatalog(10, 0)}
	for i := range catalog.videos {
		catalog.videos[i].DurationSeconds = 600 + i*60
	}
	orch := newTestOrchestrator(log, catalog, Limits{DailyLimitMinutes: 30, GridSize: 9})

	videos, state, err := orch.GetVideosForGrid(context.Background(), testNow, 4)
	if err != nil {
		t.Fatalf("GetVideosForGrid() error: %v", err)
	}
	if state.State != models.StateWindDown {
		t.Fatalf("State = %v, want WindDown", state.State)
	}
	if len(videos) != 4 {
		t.Fatalf("len(videos) = %d, want 4 (shortest available, never empty)", len(videos))
	}
	for i := 1; i < len(videos); i++ {
		if videos[i].DurationSeconds < videos[i-1].DurationSeconds {
			t.Errorf("fallback videos not sorted ascending at %d", i)
		}
	}
	if videos[0].DurationSeconds != 600 {
		t.Errorf("shortest video duration = %d, want 600", videos[0].DurationSeconds)
	}
}

func TestGetVideosForGridGraceCapsAtFiveMinutes(t *testing.T) {
	log := &fakeLog{events: []models.WatchEvent{
		scheduledEvent(testNow.Add(-time.Hour), 30*60),
	}}
	catalog := &fakeCatalog{videos: makeCatalog(10, 240)}
	for i := 5; i < 10; i++ {
		catalog.videos[i].DurationSeconds = 420
	}
	orch := newTestOrchestrator(log, catalog, Limits{DailyLimitMinutes: 30, GridSize: 9})

	videos, state, err := orch.GetVideosForGrid(context.Background(), testNow, 3)
	if err != nil {
		t.Fatalf("GetVideosForGrid() error: %v", err)
	}
	if state.State != models.StateGrace {
		t.Fatalf("State = %v, want Grace", state.State)
	}
	for _, v := range videos {
		if v.DurationSeconds > graceMaxDurationSeconds {
			t.Errorf("grace offer %s duration %d exceeds %d", v.ID, v.DurationSeconds, graceMaxDurationSeconds)
		}
	}
	if len(videos) != 3 {
		t.Errorf("len(videos) = %d, want 3", len(videos))
	}
}

func TestGetVideosForGridLockedReturnsEmptyGrid(t *testing.T) {
	log := &fakeLog{events: []models.WatchEvent{
		scheduledEvent(testNow.Add(-time.Hour), 30*60),
		eventOfKind(testNow.Add(-30*time.Minute), 300, models.WatchGrace),
	}}
	catalog := &fakeCatalog{videos: makeCatalog(10, 240)}
	orch := newTestOrchestrator(log, catalog, Limits{DailyLimitMinutes: 30, GridSize: 9})

	videos, state, err := orch.GetVideosForGrid(context.Background(), testNow, 9)
	if err != nil {
		t.Fatalf("GetVideosForGrid() error: %v", err)
	}
	if state.State != models.StateLocked {
		t.Fatalf("State = %v, want Locked", state.State)
	}
	if len(videos) != 0 {
		t.Errorf("len(videos) = %d, want 0 while locked", len(videos))
	}
}

func TestGetVideosForGridEmptyCatalog(t *testing.T) {
	orch := newTestOrchestrator(&fakeLog{}, &fakeCatalog{}, Limits{DailyLimitMinutes: 30, GridSize: 9})

	_, _, err := orch.GetVideosForGrid(context.Background(), testNow, 9)
	if !errors.Is(err, ErrNoVideosAvailable) {
		t.Errorf("error = %v, want ErrNoVideosAvailable", err)
	}
}

func TestGetVideosForGridCountValidation(t *testing.T) {
	orch := newTestOrchestrator(&fakeLog{}, &fakeCatalog{videos: makeCatalog(5, 120)},
		Limits{DailyLimitMinutes: 30, GridSize: 9})

	for _, count := range []int{0, -1, 10} {
		_, _, err := orch.GetVideosForGrid(context.Background(), testNow, count)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("count %d: error = %v, want *ValidationError", count, err)
		}
	}
}

func TestLogWatchAndUpdateScheduled(t *testing.T) {
	log := &fakeLog{}
	catalog := &fakeCatalog{videos: makeCatalog(5, 120)}
	orch := newTestOrchestrator(log, catalog, Limits{DailyLimitMinutes: 30, GridSize: 9})

	state, err := orch.LogWatchAndUpdate(context.Background(), testNow, "v1", true, 25*60, models.WatchScheduled)
	if err != nil {
		t.Fatalf("LogWatchAndUpdate() error: %v", err)
	}
	if state.MinutesWatched != 25 {
		t.Errorf("MinutesWatched = %d, want 25", state.MinutesWatched)
	}
	if state.MinutesRemaining != 5 {
		t.Errorf("MinutesRemaining = %d, want 5", state.MinutesRemaining)
	}
	if state.State != models.StateWindDown {
		t.Errorf("State = %v, want WindDown", state.State)
	}

	// GetStatus agrees with the state returned from the write.
	status, err := orch.GetStatus(context.Background(), testNow)
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}
	if status != state {
		t.Errorf("GetStatus() = %+v, want %+v", status, state)
	}
}

func TestLogWatchAndUpdateValidation(t *testing.T) {
	orch := newTestOrchestrator(&fakeLog{}, &fakeCatalog{}, Limits{DailyLimitMinutes: 30, GridSize: 9})

	tests := []struct {
		name    string
		videoID string
		seconds int
		kind    models.WatchKind
	}{
		{name: "empty video id", videoID: "", seconds: 60, kind: models.WatchScheduled},
		{name: "negative duration", videoID: "v1", seconds: -1, kind: models.WatchScheduled},
		{name: "unknown kind", videoID: "v1", seconds: 60, kind: models.WatchKind(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orch.LogWatchAndUpdate(context.Background(), testNow, tt.videoID, false, tt.seconds, tt.kind)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error = %v, want *ValidationError", err)
			}
		})
	}
}

func TestLogWatchAndUpdateGraceIdempotent(t *testing.T) {
	log := &fakeLog{events: []models.WatchEvent{
		scheduledEvent(testNow.Add(-time.Hour), 30*60),
	}}
	catalog := &fakeCatalog{videos: makeCatalog(5, 120)}
	orch := newTestOrchestrator(log, catalog, Limits{DailyLimitMinutes: 30, GridSize: 9})

	first, err := orch.LogWatchAndUpdate(context.Background(), testNow, "v1", true, 240, models.WatchGrace)
	if err != nil {
		t.Fatalf("first grace LogWatchAndUpdate() error: %v", err)
	}
	if first.State != models.StateLocked {
		t.Errorf("state after grace = %v, want Locked", first.State)
	}

	second, err := orch.LogWatchAndUpdate(context.Background(), testNow, "v1", true, 240, models.WatchGrace)
	if err != nil {
		t.Fatalf("second grace LogWatchAndUpdate() error: %v", err)
	}
	if second != first {
		t.Errorf("duplicate grace returned %+v, want current state %+v", second, first)
	}
	if n := log.graceEventCount("2025-01-03"); n != 1 {
		t.Errorf("stored grace events = %d, want exactly 1", n)
	}
}

func TestLogWatchAndUpdateGraceDeclineLocks(t *testing.T) {
	log := &fakeLog{events: []models.WatchEvent{
		scheduledEvent(testNow.Add(-time.Hour), 30*60),
	}}
	orch := newTestOrchestrator(log, &fakeCatalog{videos: makeCatalog(5, 120)},
		Limits{DailyLimitMinutes: 30, GridSize: 9})

	// Declining the offer logs a zero-duration uncompleted grace event.
	state, err := orch.LogWatchAndUpdate(context.Background(), testNow, "v1", false, 0, models.WatchGrace)
	if err != nil {
		t.Fatalf("LogWatchAndUpdate() error: %v", err)
	}
	if state.State != models.StateLocked {
		t.Errorf("state after declined grace = %v, want Locked", state.State)
	}
	if state.MinutesWatched != 30 {
		t.Errorf("MinutesWatched = %d, want 30 (grace never counts)", state.MinutesWatched)
	}
}

func TestLogWatchAndUpdateManualNeverCounts(t *testing.T) {
	log := &fakeLog{}
	orch := newTestOrchestrator(log, &fakeCatalog{videos: makeCatalog(5, 120)},
		Limits{DailyLimitMinutes: 30, GridSize: 9})

	state, err := orch.LogWatchAndUpdate(context.Background(), testNow, "v1", true, 3600, models.WatchManual)
	if err != nil {
		t.Fatalf("LogWatchAndUpdate() error: %v", err)
	}
	if state.MinutesWatched != 0 {
		t.Errorf("MinutesWatched = %d, want 0", state.MinutesWatched)
	}
	if state.State != models.StateNormal {
		t.Errorf("State = %v, want Normal", state.State)
	}
}

func TestLogWatchAndUpdateStorageFailure(t *testing.T) {
	log := &fakeLog{fail: true}
	orch := newTestOrchestrator(log, &fakeCatalog{}, Limits{DailyLimitMinutes: 30, GridSize: 9})

	_, err := orch.LogWatchAndUpdate(context.Background(), testNow, "v1", true, 60, models.WatchScheduled)
	var unavailable *StorageUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("error = %v, want *StorageUnavailableError", err)
	}
}

func TestMidnightRolloverResetsBudget(t *testing.T) {
	log := &fakeLog{events: []models.WatchEvent{
		scheduledEvent(time.Date(2025, 1, 3, 23, 59, 59, 0, time.UTC), 30*60),
		eventOfKind(time.Date(2025, 1, 3, 23, 59, 59, 0, time.UTC), 300, models.WatchGrace),
	}}
	orch := newTestOrchestrator(log, &fakeCatalog{videos: makeCatalog(5, 120)},
		Limits{DailyLimitMinutes: 30, GridSize: 9})

	// One second later it is January 4th and yesterday's events no longer
	// count, including the grace consumption.
	state, err := orch.GetStatus(context.Background(), time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetStatus() error: %v", err)
	}
	if state.Date != "2025-01-04" {
		t.Errorf("Date = %q, want 2025-01-04", state.Date)
	}
	if state.MinutesWatched != 0 {
		t.Errorf("MinutesWatched = %d, want 0 after rollover", state.MinutesWatched)
	}
	if state.State != models.StateNormal {
		t.Errorf("State = %v, want Normal after rollover", state.State)
	}
}
