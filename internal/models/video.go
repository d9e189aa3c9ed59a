// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package models

import "time"

// ChannelKind distinguishes the two source types a parent can approve.
type ChannelKind string

const (
	// ChannelKindChannel is a whole YouTube channel (uploads playlist).
	ChannelKindChannel ChannelKind = "channel"
	// ChannelKindPlaylist is a single curated playlist.
	ChannelKindPlaylist ChannelKind = "playlist"
)

// Valid reports whether the kind is one of the known source types.
func (k ChannelKind) Valid() bool {
	return k == ChannelKindChannel || k == ChannelKindPlaylist
}

// Channel represents a parent-approved video source.
//
// Channels are managed through the admin API and consumed by the ingest
// pipeline, which expands each enabled channel into rows in the videos table.
type Channel struct {
	ID string `json:"id"`

	// Kind is "channel" or "playlist".
	Kind ChannelKind `json:"kind"`

	// ExternalID is the YouTube channel ID (UC...) or playlist ID (PL...).
	ExternalID string `json:"external_id"`

	Title   string `json:"title"`
	Enabled bool   `json:"enabled"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`
}

// Video represents an offerable unit in the catalog.
//
// Rows are written by the ingest pipeline and read by the selection engine.
// Availability is global across duplicate catalog entries (the same video
// appearing in two approved playlists is one row). Ban status is derived from
// the banned_videos table and is not stored on the video row itself.
type Video struct {
	// ID is the YouTube video ID (opaque catalog key).
	ID string `json:"id"`

	// ChannelID references the approved source this video came from.
	ChannelID string `json:"channel_id"`

	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	// DurationSeconds is the video runtime. Always >= 0.
	DurationSeconds int `json:"duration_seconds"`

	// Available is false when the upstream catalog reports the video as
	// private, deleted, or region-blocked.
	Available bool `json:"available"`

	// Banned is true when a parent has banned this specific video.
	// Derived from the ban list at query time.
	Banned bool `json:"banned,omitempty"`

	PublishedAt time.Time `json:"published_at"`
	FetchedAt   time.Time `json:"fetched_at"`
}
