// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package middleware holds the HTTP middleware the router composes
// around every handler: request IDs, Prometheus instrumentation, and
// security headers. Rate limiting and CORS come straight from the chi
// ecosystem and are wired in the api package.
package middleware
