// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package database provides DuckDB-backed storage for Kidscreen: the
// append-only watch log the limit calculator is recomputed from, the video
// catalog written by the ingest pipeline, parent-approved channels, the ban
// list, and persisted limit settings.
//
// *DB satisfies the session.WatchLog and session.Catalog interfaces. Watch
// event appends are single-row atomic inserts; watch events are never updated
// in place (the admin "reset day" deletes by UTC date, outside the session
// engine).
package database
