// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kidscreen/kidscreen/internal/models"
)

// ListEligibleVideos returns available, non-banned videos from enabled
// channels. Implements session.Catalog.
func (db *DB) ListEligibleVideos(ctx context.Context) ([]models.Video, error) {
	stmt, err := db.prepareCached(ctx, `
		SELECT v.id, v.channel_id, v.title, COALESCE(v.thumbnail_url, ''),
		       v.duration_seconds, v.available, v.published_at, v.fetched_at
		FROM videos v
		JOIN channels c ON c.id = v.channel_id
		WHERE v.available
		  AND c.enabled
		  AND NOT EXISTS (
			SELECT 1 FROM banned_videos b WHERE b.video_id = v.id
		  )`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible videos: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanVideos(rows)
}

// ListVideos returns all catalog rows with their ban status, for the admin
// view.
func (db *DB) ListVideos(ctx context.Context) ([]models.Video, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT v.id, v.channel_id, v.title, COALESCE(v.thumbnail_url, ''),
		       v.duration_seconds, v.available, v.published_at, v.fetched_at,
		       EXISTS (SELECT 1 FROM banned_videos b WHERE b.video_id = v.id) AS banned
		FROM videos v
		ORDER BY v.published_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var videos []models.Video
	for rows.Next() {
		var v models.Video
		var published sql.NullTime
		if err := rows.Scan(&v.ID, &v.ChannelID, &v.Title, &v.ThumbnailURL,
			&v.DurationSeconds, &v.Available, &published, &v.FetchedAt, &v.Banned); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		if published.Valid {
			v.PublishedAt = published.Time.UTC()
		}
		v.FetchedAt = v.FetchedAt.UTC()
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// UpsertVideos inserts or updates catalog rows in a single transaction.
// Called by the ingest pipeline after each channel fetch; duplicate catalog
// entries collapse onto one row per video ID, so availability is global.
func (db *DB) UpsertVideos(ctx context.Context, videos []models.Video) error {
	if len(videos) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO videos
			(id, channel_id, title, thumbnail_url, duration_seconds, available, published_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			channel_id = excluded.channel_id,
			title = excluded.title,
			thumbnail_url = excluded.thumbnail_url,
			duration_seconds = excluded.duration_seconds,
			available = excluded.available,
			published_at = excluded.published_at,
			fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, v := range videos {
		if _, err := stmt.ExecContext(ctx,
			v.ID, v.ChannelID, v.Title, v.ThumbnailURL, v.DurationSeconds,
			v.Available, v.PublishedAt.UTC(), v.FetchedAt.UTC()); err != nil {
			return fmt.Errorf("failed to upsert video %s: %w", v.ID, err)
		}
	}
	return tx.Commit()
}

// MarkVideosUnavailable flags catalog rows the upstream API stopped
// returning for a channel, keeping watch history intact.
func (db *DB) MarkVideosUnavailable(ctx context.Context, channelID string, seenIDs map[string]struct{}) error {
	current, err := db.conn.QueryContext(ctx,
		`SELECT id FROM videos WHERE channel_id = ? AND available`, channelID)
	if err != nil {
		return fmt.Errorf("failed to query channel videos: %w", err)
	}
	defer func() { _ = current.Close() }()

	var gone []string
	for current.Next() {
		var id string
		if err := current.Scan(&id); err != nil {
			return err
		}
		if _, ok := seenIDs[id]; !ok {
			gone = append(gone, id)
		}
	}
	if err := current.Err(); err != nil {
		return err
	}

	for _, id := range gone {
		if _, err := db.conn.ExecContext(ctx,
			`UPDATE videos SET available = false WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to mark video %s unavailable: %w", id, err)
		}
	}
	return nil
}

// BanVideo adds a video to the ban list. Banning an already banned video is
// a no-op.
func (db *DB) BanVideo(ctx context.Context, videoID string, now time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO banned_videos (video_id, banned_at)
		VALUES (?, ?)
		ON CONFLICT (video_id) DO NOTHING`, videoID, now.UTC())
	if err != nil {
		return fmt.Errorf("failed to ban video: %w", err)
	}
	return nil
}

// UnbanVideo removes a video from the ban list.
func (db *DB) UnbanVideo(ctx context.Context, videoID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM banned_videos WHERE video_id = ?`, videoID)
	if err != nil {
		return fmt.Errorf("failed to unban video: %w", err)
	}
	return nil
}

// scanVideos reads rows produced by the eligible-videos query.
func scanVideos(rows *sql.Rows) ([]models.Video, error) {
	var videos []models.Video
	for rows.Next() {
		var v models.Video
		var published sql.NullTime
		if err := rows.Scan(&v.ID, &v.ChannelID, &v.Title, &v.ThumbnailURL,
			&v.DurationSeconds, &v.Available, &published, &v.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		if published.Valid {
			v.PublishedAt = published.Time.UTC()
		}
		v.FetchedAt = v.FetchedAt.UTC()
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
