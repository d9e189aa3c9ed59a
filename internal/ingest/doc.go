// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package ingest keeps the local video catalog in sync with YouTube.
//
// The pipeline has three layers:
//
//   - Client talks to the YouTube Data API v3 with client-side rate
//     limiting and exponential backoff on HTTP 429.
//   - CircuitBreakerClient wraps Client so a dead or misbehaving API
//     stops consuming quota and sync attempts fail fast.
//   - Manager runs the periodic sync loop as a suture service, walking
//     each enabled channel and upserting its videos into storage.
//
// Sync is best effort. A channel that fails is logged and skipped; the
// remaining channels still sync, and the catalog keeps serving whatever
// it has. The child-facing grid never waits on the API.
package ingest
