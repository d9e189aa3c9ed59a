// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kidscreen/kidscreen/internal/models"
)

// errStoreDown simulates an unreachable store in tests.
var errStoreDown = errors.New("store down")

// fakeLog is an in-memory WatchLog.
type fakeLog struct {
	mu     sync.Mutex
	events []models.WatchEvent

	// fail forces every method to return errStoreDown.
	fail bool
}

func (f *fakeLog) AppendWatchEvent(_ context.Context, ev models.WatchEvent) error {
	if f.fail {
		return errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeLog) SumCountableSeconds(_ context.Context, utcDate string) (int, error) {
	if f.fail {
		return 0, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, ev := range f.events {
		if ev.Kind.Countable() && ev.UTCDate() == utcDate {
			total += ev.DurationWatchedSeconds
		}
	}
	return total, nil
}

func (f *fakeLog) HasGraceEventOn(_ context.Context, utcDate string) (bool, error) {
	if f.fail {
		return false, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range f.events {
		if ev.Kind == models.WatchGrace && ev.UTCDate() == utcDate {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLog) RecentlyWatchedVideoIDs(_ context.Context, since time.Time) (map[string]struct{}, error) {
	if f.fail {
		return nil, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[string]struct{})
	for _, ev := range f.events {
		if ev.Kind == models.WatchScheduled && !ev.WatchedAt.Before(since) {
			ids[ev.VideoID] = struct{}{}
		}
	}
	return ids, nil
}

func (f *fakeLog) graceEventCount(utcDate string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ev := range f.events {
		if ev.Kind == models.WatchGrace && ev.UTCDate() == utcDate {
			n++
		}
	}
	return n
}

// fakeCatalog is a static Catalog.
type fakeCatalog struct {
	videos []models.Video
	fail   bool
}

func (f *fakeCatalog) ListEligibleVideos(_ context.Context) ([]models.Video, error) {
	if f.fail {
		return nil, errStoreDown
	}
	out := make([]models.Video, 0, len(f.videos))
	for _, v := range f.videos {
		if v.Available && !v.Banned {
			out = append(out, v)
		}
	}
	return out, nil
}

// staticConfig is a fixed ConfigProvider.
type staticConfig struct {
	limits Limits
}

func (s staticConfig) Limits() Limits { return s.limits }
