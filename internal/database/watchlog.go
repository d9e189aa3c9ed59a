// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kidscreen/kidscreen/internal/models"
)

// AppendWatchEvent stores one immutable watch event. Implements
// session.WatchLog.
func (db *DB) AppendWatchEvent(ctx context.Context, ev models.WatchEvent) error {
	stmt, err := db.prepareCached(ctx, `
		INSERT INTO watch_events
			(id, video_id, watched_at, completed, duration_watched_seconds, kind)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx,
		ev.ID.String(), ev.VideoID, ev.WatchedAt.UTC(), ev.Completed,
		ev.DurationWatchedSeconds, ev.Kind.String())
	if err != nil {
		return fmt.Errorf("failed to append watch event: %w", err)
	}
	return nil
}

// SumCountableSeconds returns the total scheduled seconds watched on the
// given UTC date (YYYY-MM-DD). Manual and grace events are excluded by the
// kind predicate, mirroring the countability rule in models.WatchKind.
func (db *DB) SumCountableSeconds(ctx context.Context, utcDate string) (int, error) {
	stmt, err := db.prepareCached(ctx, `
		SELECT COALESCE(SUM(duration_watched_seconds), 0)
		FROM watch_events
		WHERE kind = 'scheduled'
		  AND CAST(watched_at AS DATE) = CAST(? AS DATE)`)
	if err != nil {
		return 0, err
	}
	var total int
	if err := stmt.QueryRowContext(ctx, utcDate).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum countable seconds: %w", err)
	}
	return total, nil
}

// HasGraceEventOn reports whether any grace event (consumed or declined)
// exists on the given UTC date.
func (db *DB) HasGraceEventOn(ctx context.Context, utcDate string) (bool, error) {
	stmt, err := db.prepareCached(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM watch_events
			WHERE kind = 'grace'
			  AND CAST(watched_at AS DATE) = CAST(? AS DATE)
		)`)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := stmt.QueryRowContext(ctx, utcDate).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check grace event: %w", err)
	}
	return exists, nil
}

// RecentlyWatchedVideoIDs returns IDs of videos with at least one scheduled
// watch at or after since. Feeds the novelty weighting in the selection
// engine.
func (db *DB) RecentlyWatchedVideoIDs(ctx context.Context, since time.Time) (map[string]struct{}, error) {
	stmt, err := db.prepareCached(ctx, `
		SELECT DISTINCT video_id
		FROM watch_events
		WHERE kind = 'scheduled' AND watched_at >= ?`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query recent watches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan video id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// ListWatchEventsOn returns the watch events for a UTC date, newest first.
// Used by the parent-facing history view.
func (db *DB) ListWatchEventsOn(ctx context.Context, utcDate string) ([]models.WatchEvent, error) {
	stmt, err := db.prepareCached(ctx, `
		SELECT id, video_id, watched_at, completed, duration_watched_seconds, kind
		FROM watch_events
		WHERE CAST(watched_at AS DATE) = CAST(? AS DATE)
		ORDER BY watched_at DESC`)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, utcDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.WatchEvent
	for rows.Next() {
		var ev models.WatchEvent
		var kind string
		if err := rows.Scan(&ev.ID, &ev.VideoID, &ev.WatchedAt, &ev.Completed,
			&ev.DurationWatchedSeconds, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan watch event: %w", err)
		}
		parsed, err := models.ParseWatchKind(kind)
		if err != nil {
			return nil, fmt.Errorf("corrupt watch event %s: %w", ev.ID, err)
		}
		ev.Kind = parsed
		ev.WatchedAt = ev.WatchedAt.UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

// DeleteWatchEventsOn removes all watch events for a UTC date and returns the
// number deleted. This is the admin "reset day" operation; the session engine
// itself never deletes.
func (db *DB) DeleteWatchEventsOn(ctx context.Context, utcDate string) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM watch_events
		WHERE CAST(watched_at AS DATE) = CAST(? AS DATE)`, utcDate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete watch events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
