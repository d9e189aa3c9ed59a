// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package auth implements the parent authentication layer.
//
// Kidscreen has exactly one privileged identity, the parent. The child
// surface (grid, watch logging, status) is unauthenticated on the local
// network; everything under /api/v1/admin requires a parent token.
//
// Login verifies the configured bcrypt password hash and issues an HS256
// JWT whose ID is also recorded in a BadgerDB-backed session store. A
// token is only accepted while its session record exists, so logout and
// restarts with a wiped store revoke tokens before their expiry.
package auth
