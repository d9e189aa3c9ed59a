// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package api

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/kidscreen/kidscreen/internal/config"
	"github.com/kidscreen/kidscreen/internal/database"
	"github.com/kidscreen/kidscreen/internal/logging"
	"github.com/kidscreen/kidscreen/internal/models"
)

// fakeEngine returns canned responses for the session operations.
type fakeEngine struct {
	gridVideos []models.Video
	gridState  models.DailyLimitState
	gridErr    error
	gridCount  int

	watchState models.DailyLimitState
	watchErr   error
	watchCalls []watchCall

	statusState models.DailyLimitState
	statusErr   error
}

type watchCall struct {
	videoID   string
	completed bool
	seconds   int
	kind      models.WatchKind
}

func (f *fakeEngine) GetVideosForGrid(_ context.Context, _ time.Time, count int) ([]models.Video, models.DailyLimitState, error) {
	f.gridCount = count
	if f.gridErr != nil {
		return nil, models.DailyLimitState{}, f.gridErr
	}
	return f.gridVideos, f.gridState, nil
}

func (f *fakeEngine) LogWatchAndUpdate(_ context.Context, _ time.Time, videoID string, completed bool, seconds int, kind models.WatchKind) (models.DailyLimitState, error) {
	f.watchCalls = append(f.watchCalls, watchCall{videoID, completed, seconds, kind})
	if f.watchErr != nil {
		return models.DailyLimitState{}, f.watchErr
	}
	return f.watchState, nil
}

func (f *fakeEngine) GetStatus(_ context.Context, _ time.Time) (models.DailyLimitState, error) {
	if f.statusErr != nil {
		return models.DailyLimitState{}, f.statusErr
	}
	return f.statusState, nil
}

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu       sync.Mutex
	channels map[string]models.Channel
	videos   []models.Video
	banned   map[string]bool
	events   map[string][]models.WatchEvent

	pingErr error
	failAll bool
}

var errStoreDown = errors.New("store down")

func newFakeStore() *fakeStore {
	return &fakeStore{
		channels: make(map[string]models.Channel),
		banned:   make(map[string]bool),
		events:   make(map[string][]models.WatchEvent),
	}
}

func (f *fakeStore) CreateChannel(_ context.Context, ch models.Channel) error {
	if f.failAll {
		return errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[ch.ID] = ch
	return nil
}

func (f *fakeStore) GetChannel(_ context.Context, id string) (models.Channel, error) {
	if f.failAll {
		return models.Channel{}, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[id]
	if !ok {
		return models.Channel{}, database.ErrNotFound
	}
	return ch, nil
}

func (f *fakeStore) ListChannels(_ context.Context) ([]models.Channel, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Channel, 0, len(f.channels))
	for _, ch := range f.channels {
		out = append(out, ch)
	}
	return out, nil
}

func (f *fakeStore) UpdateChannel(_ context.Context, ch models.Channel) error {
	if f.failAll {
		return errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[ch.ID]; !ok {
		return database.ErrNotFound
	}
	f.channels[ch.ID] = ch
	return nil
}

func (f *fakeStore) DeleteChannel(_ context.Context, id string) error {
	if f.failAll {
		return errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.channels, id)
	return nil
}

func (f *fakeStore) ListVideos(_ context.Context) ([]models.Video, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	return f.videos, nil
}

func (f *fakeStore) BanVideo(_ context.Context, videoID string, _ time.Time) error {
	if f.failAll {
		return errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned[videoID] = true
	return nil
}

func (f *fakeStore) UnbanVideo(_ context.Context, videoID string) error {
	if f.failAll {
		return errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.banned, videoID)
	return nil
}

func (f *fakeStore) ListWatchEventsOn(_ context.Context, utcDate string) ([]models.WatchEvent, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[utcDate], nil
}

func (f *fakeStore) DeleteWatchEventsOn(_ context.Context, utcDate string) (int64, error) {
	if f.failAll {
		return 0, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.events[utcDate]))
	delete(f.events, utcDate)
	return n, nil
}

func (f *fakeStore) Ping(_ context.Context) error {
	return f.pingErr
}

// fakeAuth records login and logout calls.
type fakeAuth struct {
	token     string
	expiresAt time.Time
	loginErr  error
	logoutErr error

	loggedOut []string
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (string, time.Time, error) {
	if f.loginErr != nil {
		return "", time.Time{}, f.loginErr
	}
	return f.token, f.expiresAt, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return f.logoutErr
}

// fakeSyncer records sync triggers.
type fakeSyncer struct {
	mu     sync.Mutex
	calls  int
	err    error
	synced chan struct{}
}

func (f *fakeSyncer) SyncAll(_ context.Context) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.synced != nil {
		close(f.synced)
	}
	return f.err
}

// testLimits are valid limit settings used across handler tests.
var testLimits = config.LimitsConfig{
	DailyLimitMinutes: 60,
	GridSize:          9,
	GraceGridSize:     4,
}

// newTestHandler builds a Handler over the given fakes with a fixed clock.
func newTestHandler(engine *fakeEngine, store *fakeStore, authn *fakeAuth, syncer Syncer) *Handler {
	h := NewHandler(engine, store, config.NewLimitsManager(testLimits), authn, syncer, logging.NewTestLogger(io.Discard))
	h.now = func() time.Time {
		return time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC)
	}
	return h
}
