// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package supervisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionJanitor is the slice of the session store the cleanup service
// needs.
type SessionJanitor interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// SessionCleanupService periodically sweeps expired parent sessions from
// the session store. Badger TTLs already prevent expired sessions from
// authenticating; the sweep reclaims their storage.
type SessionCleanupService struct {
	store    SessionJanitor
	interval time.Duration
	logger   zerolog.Logger
}

// NewSessionCleanupService creates the sweep service. A non-positive
// interval defaults to one hour.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSessionCleanupService(store SessionJanitor, interval time.Duration, logger zerolog.Logger) *SessionCleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionCleanupService{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "session-cleanup").Logger(),
	}
}

// Serve implements suture.Service.
func (s *SessionCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := s.store.CleanupExpired(ctx)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Session cleanup sweep failed")
				continue
			}
			if removed > 0 {
				s.logger.Info().Int("removed", removed).Msg("Expired sessions swept")
			}
		}
	}
}

// String implements fmt.Stringer for suture's event log.
func (s *SessionCleanupService) String() string {
	return "session-cleanup"
}
