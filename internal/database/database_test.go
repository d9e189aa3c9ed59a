// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kidscreen/kidscreen/internal/config"
	"github.com/kidscreen/kidscreen/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedChannel(t *testing.T, db *DB, id string, enabled bool) {
	t.Helper()
	now := time.Now().UTC()
	err := db.CreateChannel(context.Background(), models.Channel{
		ID:         id,
		Kind:       models.ChannelKindChannel,
		ExternalID: "UC" + id,
		Title:      "Channel " + id,
		Enabled:    enabled,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("failed to seed channel: %v", err)
	}
}

func seedVideo(t *testing.T, db *DB, id, channelID string, durationSeconds int, available bool) {
	t.Helper()
	now := time.Now().UTC()
	err := db.UpsertVideos(context.Background(), []models.Video{{
		ID:              id,
		ChannelID:       channelID,
		Title:           "Video " + id,
		DurationSeconds: durationSeconds,
		Available:       available,
		PublishedAt:     now,
		FetchedAt:       now,
	}})
	if err != nil {
		t.Fatalf("failed to seed video: %v", err)
	}
}

func appendEvent(t *testing.T, db *DB, videoID string, at time.Time, seconds int, kind models.WatchKind) {
	t.Helper()
	err := db.AppendWatchEvent(context.Background(), models.WatchEvent{
		ID:                     uuid.New(),
		VideoID:                videoID,
		WatchedAt:              at,
		Completed:              true,
		DurationWatchedSeconds: seconds,
		Kind:                   kind,
	})
	if err != nil {
		t.Fatalf("failed to append event: %v", err)
	}
}

func TestSumCountableSeconds(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC)

	appendEvent(t, db, "v1", day, 600, models.WatchScheduled)
	appendEvent(t, db, "v2", day.Add(time.Hour), 300, models.WatchScheduled)
	// Non-countable kinds and other days must not contribute.
	appendEvent(t, db, "v3", day, 1000, models.WatchManual)
	appendEvent(t, db, "v4", day, 1000, models.WatchGrace)
	appendEvent(t, db, "v5", day.AddDate(0, 0, -1), 1000, models.WatchScheduled)
	appendEvent(t, db, "v6", time.Date(2025, 1, 3, 23, 59, 59, 0, time.UTC), 60, models.WatchScheduled)

	got, err := db.SumCountableSeconds(context.Background(), "2025-01-03")
	if err != nil {
		t.Fatalf("SumCountableSeconds() error: %v", err)
	}
	if got != 960 {
		t.Errorf("SumCountableSeconds = %d, want 960", got)
	}

	// The 23:59:59 event belongs to the 3rd, not the 4th.
	got, err = db.SumCountableSeconds(context.Background(), "2025-01-04")
	if err != nil {
		t.Fatalf("SumCountableSeconds() error: %v", err)
	}
	if got != 0 {
		t.Errorf("SumCountableSeconds for next day = %d, want 0", got)
	}
}

func TestHasGraceEventOn(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2025, 1, 3, 20, 0, 0, 0, time.UTC)

	has, err := db.HasGraceEventOn(context.Background(), "2025-01-03")
	if err != nil {
		t.Fatalf("HasGraceEventOn() error: %v", err)
	}
	if has {
		t.Error("HasGraceEventOn = true before any grace event")
	}

	// A zero-duration declined grace still counts as the day's grace.
	appendEvent(t, db, "v1", day, 0, models.WatchGrace)

	has, err = db.HasGraceEventOn(context.Background(), "2025-01-03")
	if err != nil {
		t.Fatalf("HasGraceEventOn() error: %v", err)
	}
	if !has {
		t.Error("HasGraceEventOn = false after grace event")
	}

	has, err = db.HasGraceEventOn(context.Background(), "2025-01-04")
	if err != nil {
		t.Fatalf("HasGraceEventOn() error: %v", err)
	}
	if has {
		t.Error("grace event leaked into the next day")
	}
}

func TestRecentlyWatchedVideoIDs(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)

	appendEvent(t, db, "recent", now.Add(-2*time.Hour), 300, models.WatchScheduled)
	appendEvent(t, db, "old", now.Add(-30*time.Hour), 300, models.WatchScheduled)
	appendEvent(t, db, "manual", now.Add(-time.Hour), 300, models.WatchManual)

	ids, err := db.RecentlyWatchedVideoIDs(context.Background(), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("RecentlyWatchedVideoIDs() error: %v", err)
	}
	if _, ok := ids["recent"]; !ok {
		t.Error("recent scheduled watch missing")
	}
	if _, ok := ids["old"]; ok {
		t.Error("watch outside the window included")
	}
	if _, ok := ids["manual"]; ok {
		t.Error("manual watch included in novelty tagging")
	}
}

func TestListEligibleVideos(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedChannel(t, db, "ch1", true)
	seedChannel(t, db, "ch2", false)
	seedVideo(t, db, "ok", "ch1", 300, true)
	seedVideo(t, db, "unavailable", "ch1", 300, false)
	seedVideo(t, db, "banned", "ch1", 300, true)
	seedVideo(t, db, "disabled-channel", "ch2", 300, true)

	if err := db.BanVideo(ctx, "banned", time.Now()); err != nil {
		t.Fatalf("BanVideo() error: %v", err)
	}

	videos, err := db.ListEligibleVideos(ctx)
	if err != nil {
		t.Fatalf("ListEligibleVideos() error: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != "ok" {
		t.Errorf("ListEligibleVideos = %+v, want only \"ok\"", videos)
	}

	// Unban restores eligibility.
	if err := db.UnbanVideo(ctx, "banned"); err != nil {
		t.Fatalf("UnbanVideo() error: %v", err)
	}
	videos, err = db.ListEligibleVideos(ctx)
	if err != nil {
		t.Fatalf("ListEligibleVideos() error: %v", err)
	}
	if len(videos) != 2 {
		t.Errorf("after unban, eligible count = %d, want 2", len(videos))
	}
}

func TestUpsertVideosCollapsesDuplicates(t *testing.T) {
	db := newTestDB(t)
	seedChannel(t, db, "ch1", true)
	seedVideo(t, db, "v1", "ch1", 300, true)
	// Second upsert updates in place rather than duplicating.
	seedVideo(t, db, "v1", "ch1", 450, false)

	videos, err := db.ListVideos(context.Background())
	if err != nil {
		t.Fatalf("ListVideos() error: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("len = %d, want 1", len(videos))
	}
	if videos[0].DurationSeconds != 450 || videos[0].Available {
		t.Errorf("upsert did not update row: %+v", videos[0])
	}
}

func TestChannelCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedChannel(t, db, "ch1", true)

	ch, err := db.GetChannel(ctx, "ch1")
	if err != nil {
		t.Fatalf("GetChannel() error: %v", err)
	}
	if ch.Title != "Channel ch1" || !ch.Enabled {
		t.Errorf("GetChannel = %+v", ch)
	}

	ch.Title = "Renamed"
	ch.Enabled = false
	ch.UpdatedAt = time.Now().UTC()
	if err := db.UpdateChannel(ctx, ch); err != nil {
		t.Fatalf("UpdateChannel() error: %v", err)
	}

	ch, err = db.GetChannel(ctx, "ch1")
	if err != nil {
		t.Fatalf("GetChannel() after update error: %v", err)
	}
	if ch.Title != "Renamed" || ch.Enabled {
		t.Errorf("update not applied: %+v", ch)
	}

	enabled, err := db.ListEnabledChannels(ctx)
	if err != nil {
		t.Fatalf("ListEnabledChannels() error: %v", err)
	}
	if len(enabled) != 0 {
		t.Errorf("disabled channel listed as enabled")
	}

	if err := db.DeleteChannel(ctx, "ch1"); err != nil {
		t.Fatalf("DeleteChannel() error: %v", err)
	}
	if _, err := db.GetChannel(ctx, "ch1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetChannel after delete = %v, want ErrNotFound", err)
	}
	if err := db.UpdateChannel(ctx, ch); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateChannel on missing = %v, want ErrNotFound", err)
	}
}

func TestDeleteWatchEventsOn(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC)

	appendEvent(t, db, "v1", day, 600, models.WatchScheduled)
	appendEvent(t, db, "v2", day.Add(time.Hour), 300, models.WatchGrace)
	appendEvent(t, db, "v3", day.AddDate(0, 0, 1), 300, models.WatchScheduled)

	n, err := db.DeleteWatchEventsOn(context.Background(), "2025-01-03")
	if err != nil {
		t.Fatalf("DeleteWatchEventsOn() error: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d events, want 2", n)
	}

	sum, err := db.SumCountableSeconds(context.Background(), "2025-01-04")
	if err != nil {
		t.Fatalf("SumCountableSeconds() error: %v", err)
	}
	if sum != 300 {
		t.Errorf("other day's events affected by reset: sum = %d", sum)
	}
}

func TestListWatchEventsOnRoundTrip(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC)

	appendEvent(t, db, "v1", day, 600, models.WatchScheduled)
	appendEvent(t, db, "v2", day.Add(time.Hour), 0, models.WatchGrace)

	events, err := db.ListWatchEventsOn(context.Background(), "2025-01-03")
	if err != nil {
		t.Fatalf("ListWatchEventsOn() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	// Newest first.
	if events[0].VideoID != "v2" || events[0].Kind != models.WatchGrace {
		t.Errorf("first event = %+v, want the grace event", events[0])
	}
	if events[1].Kind != models.WatchScheduled {
		t.Errorf("second event kind = %v, want scheduled", events[1].Kind)
	}
}

func TestLimitsSettingsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.LoadLimits(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadLimits with no override = %v, want ErrNotFound", err)
	}

	want := config.LimitsConfig{DailyLimitMinutes: 45, GridSize: 12, GraceGridSize: 3}
	if err := db.SaveLimits(ctx, want); err != nil {
		t.Fatalf("SaveLimits() error: %v", err)
	}
	got, err := db.LoadLimits(ctx)
	if err != nil {
		t.Fatalf("LoadLimits() error: %v", err)
	}
	if got != want {
		t.Errorf("LoadLimits = %+v, want %+v", got, want)
	}

	// Overwrite keeps a single row.
	want.DailyLimitMinutes = 90
	if err := db.SaveLimits(ctx, want); err != nil {
		t.Fatalf("second SaveLimits() error: %v", err)
	}
	got, err = db.LoadLimits(ctx)
	if err != nil {
		t.Fatalf("LoadLimits() error: %v", err)
	}
	if got.DailyLimitMinutes != 90 {
		t.Errorf("LoadLimits after overwrite = %+v", got)
	}
}
