// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package api exposes the HTTP surface of the application: the
// unauthenticated child endpoints (grid, watch, status, interrupt-check),
// the parent-authenticated admin endpoints (channel management, bans,
// history, limits), the auth endpoints and the health/metrics endpoints.
//
// All responses use the models.APIResponse envelope. Handlers depend on
// narrow interfaces over the session engine and the store so tests can run
// against fakes.
package api
