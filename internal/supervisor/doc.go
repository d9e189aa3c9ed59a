// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package supervisor runs the long-lived parts of the application under a
// suture v4 supervision tree. The tree has two layers: data (catalog sync,
// session cleanup) and api (the HTTP server). A crash in one layer restarts
// only that layer's services.
package supervisor
