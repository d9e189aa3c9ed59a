// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

/*
Package session implements the viewing session engine: the component that
decides how much the child may still watch today and which videos to offer.

# Components

  - Calculator derives the current DailyLimitState from the watch log and
    configuration. The state is never stored; it is a pure function of
    (log, config, now), so it survives process restarts by construction.
  - Engine performs weighted random selection of eligible videos, biased
    toward content the child has not seen in the trailing 24 hours.
  - ShouldInterrupt decides whether an in-flight video may run to completion
    once the limit is near.
  - Orchestrator is the facade combining the above to serve the three
    operations consumed by the HTTP layer: GetVideosForGrid,
    LogWatchAndUpdate, and GetStatus.

# Statelessness

Every operation recomputes state fresh from the watch log. No limit state is
cached across calls. All "today" logic uses the UTC calendar date of an
explicit now parameter; callers pass time.Now().UTC().

# Day lifecycle

Normal (more than 10 minutes remaining) -> WindDown (10 or fewer) -> Grace
(zero remaining, bonus video not yet used) -> Locked (until next UTC
midnight). Declining the grace offer is recorded as a zero-duration grace
event, so "declined today" is also derived purely from the log.
*/
package session
