// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kidscreen/kidscreen/internal/config"
	"github.com/kidscreen/kidscreen/internal/metrics"
	"github.com/kidscreen/kidscreen/internal/models"
)

// Store is the slice of the storage layer the sync loop writes to.
type Store interface {
	ListEnabledChannels(ctx context.Context) ([]models.Channel, error)
	UpsertVideos(ctx context.Context, videos []models.Video) error
	MarkVideosUnavailable(ctx context.Context, channelID string, seenIDs map[string]struct{}) error
	MarkChannelSynced(ctx context.Context, id string, at time.Time) error
}

// Manager runs the periodic catalog sync. It implements suture.Service:
// Serve blocks syncing on an interval until the context is canceled.
type Manager struct {
	source   VideoSource
	store    Store
	interval time.Duration
	logger   zerolog.Logger
}

// NewManager builds the sync manager.
func NewManager(source VideoSource, store Store, cfg *config.YouTubeConfig, logger zerolog.Logger) *Manager {
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = time.Hour
	}

	return &Manager{
		source:   source,
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// String names the service in supervisor logs.
func (m *Manager) String() string {
	return "ingest-manager"
}

// Serve implements suture.Service. It syncs immediately on start, then
// on every interval tick until the context is canceled.
func (m *Manager) Serve(ctx context.Context) error {
	m.logger.Info().Dur("interval", m.interval).Msg("Starting catalog sync service")

	if err := m.SyncAll(ctx); err != nil {
		m.logger.Error().Err(err).Msg("Initial catalog sync failed")
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Catalog sync service stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := m.SyncAll(ctx); err != nil {
				m.logger.Error().Err(err).Msg("Catalog sync failed")
			}
		}
	}
}

// SyncAll syncs every enabled channel. A failing channel is logged and
// skipped so one dead channel cannot starve the rest; the error returned
// reflects only total failure to even list channels.
func (m *Manager) SyncAll(ctx context.Context) error {
	start := time.Now()

	channels, err := m.store.ListEnabledChannels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list channels for sync: %w", err)
	}

	synced := 0
	for _, ch := range channels {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := m.SyncChannel(ctx, ch); err != nil {
			m.logger.Warn().Err(err).Str("channel_id", ch.ID).Str("title", ch.Title).Msg("Channel sync failed")
			metrics.SyncRuns.WithLabelValues("failure").Inc()
			continue
		}
		synced++
		metrics.SyncRuns.WithLabelValues("success").Inc()
	}

	m.logger.Info().
		Int("channels", len(channels)).
		Int("synced", synced).
		Dur("elapsed", time.Since(start)).
		Msg("Catalog sync complete")

	return nil
}

// SyncChannel refreshes one channel: enumerate its current video IDs,
// fetch their metadata, upsert, and mark anything no longer present as
// unavailable. Playlist sources skip the uploads-playlist resolution
// step and use their external ID directly.
//
// A mid-pagination or mid-batch failure still upserts everything fetched
// before the failure. Availability reconciliation is skipped on partial
// data since an incomplete enumeration would retire videos that are still
// live; the error is returned so the run counts as failed and retries.
func (m *Manager) SyncChannel(ctx context.Context, ch models.Channel) error {
	playlistID := ch.ExternalID
	if ch.Kind == models.ChannelKindChannel {
		resolved, err := m.source.ResolveUploadsPlaylist(ctx, ch.ExternalID)
		if err != nil {
			return fmt.Errorf("failed to resolve uploads playlist: %w", err)
		}
		playlistID = resolved
	}

	ids, listErr := m.source.ListPlaylistVideoIDs(ctx, playlistID)
	if listErr != nil && len(ids) == 0 {
		return fmt.Errorf("failed to list playlist videos: %w", listErr)
	}

	videos, fetchErr := m.source.FetchVideos(ctx, ch.ID, ids)
	if fetchErr != nil && len(videos) == 0 {
		return fmt.Errorf("failed to fetch video metadata: %w", fetchErr)
	}

	if err := m.store.UpsertVideos(ctx, videos); err != nil {
		return fmt.Errorf("failed to store videos: %w", err)
	}

	if listErr != nil || fetchErr != nil {
		partialErr := listErr
		if partialErr == nil {
			partialErr = fetchErr
		}
		m.logger.Warn().
			Str("channel_id", ch.ID).
			Int("videos", len(videos)).
			Err(partialErr).
			Msg("Channel sync kept partial results")
		return fmt.Errorf("partial channel sync: %w", partialErr)
	}

	// Anything previously stored for this channel but absent from this
	// sync (deleted, private, or no longer embeddable) leaves the grid.
	seen := make(map[string]struct{}, len(videos))
	for _, v := range videos {
		seen[v.ID] = struct{}{}
	}
	if err := m.store.MarkVideosUnavailable(ctx, ch.ID, seen); err != nil {
		return fmt.Errorf("failed to mark removed videos: %w", err)
	}

	if err := m.store.MarkChannelSynced(ctx, ch.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record sync time: %w", err)
	}

	metrics.CatalogVideos.WithLabelValues(ch.ID).Set(float64(len(videos)))

	m.logger.Debug().
		Str("channel_id", ch.ID).
		Str("title", ch.Title).
		Int("videos", len(videos)).
		Msg("Channel synced")

	return nil
}
