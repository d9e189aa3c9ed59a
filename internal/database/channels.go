// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kidscreen/kidscreen/internal/models"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// CreateChannel inserts a new approved channel.
func (db *DB) CreateChannel(ctx context.Context, ch models.Channel) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO channels (id, kind, external_id, title, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, string(ch.Kind), ch.ExternalID, ch.Title, ch.Enabled,
		ch.CreatedAt.UTC(), ch.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	return nil
}

// GetChannel fetches one channel by ID. Returns ErrNotFound when absent.
func (db *DB) GetChannel(ctx context.Context, id string) (models.Channel, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, kind, external_id, title, enabled, created_at, updated_at, synced_at
		FROM channels WHERE id = ?`, id)
	ch, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Channel{}, ErrNotFound
	}
	return ch, err
}

// ListChannels returns all channels, newest first.
func (db *DB) ListChannels(ctx context.Context) ([]models.Channel, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, kind, external_id, title, enabled, created_at, updated_at, synced_at
		FROM channels ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var channels []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// ListEnabledChannels returns channels the ingest pipeline should sync.
func (db *DB) ListEnabledChannels(ctx context.Context) ([]models.Channel, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, kind, external_id, title, enabled, created_at, updated_at, synced_at
		FROM channels WHERE enabled ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query enabled channels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var channels []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// UpdateChannel applies title/enabled changes. Returns ErrNotFound when the
// channel does not exist.
func (db *DB) UpdateChannel(ctx context.Context, ch models.Channel) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE channels SET title = ?, enabled = ?, updated_at = ?
		WHERE id = ?`,
		ch.Title, ch.Enabled, ch.UpdatedAt.UTC(), ch.ID)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkChannelSynced records a successful ingest pass.
func (db *DB) MarkChannelSynced(ctx context.Context, id string, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE channels SET synced_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark channel synced: %w", err)
	}
	return nil
}

// DeleteChannel removes a channel and its catalog rows. Watch events are
// kept; they reference video IDs that may no longer resolve, which the
// history view tolerates.
func (db *DB) DeleteChannel(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM videos WHERE channel_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete channel videos: %w", err)
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanChannel.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(row rowScanner) (models.Channel, error) {
	var ch models.Channel
	var kind string
	var synced sql.NullTime
	if err := row.Scan(&ch.ID, &kind, &ch.ExternalID, &ch.Title, &ch.Enabled,
		&ch.CreatedAt, &ch.UpdatedAt, &synced); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Channel{}, err
		}
		return models.Channel{}, fmt.Errorf("failed to scan channel: %w", err)
	}
	ch.Kind = models.ChannelKind(kind)
	ch.CreatedAt = ch.CreatedAt.UTC()
	ch.UpdatedAt = ch.UpdatedAt.UTC()
	if synced.Valid {
		t := synced.Time.UTC()
		ch.SyncedAt = &t
	}
	return ch, nil
}
