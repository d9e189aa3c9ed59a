// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package config

import (
	"sync"

	"github.com/kidscreen/kidscreen/internal/session"
)

// LimitsManager holds the runtime-mutable limit settings. The admin API
// updates them without a restart; the session engine reads them on every
// operation through the session.ConfigProvider interface.
//
// Persistence of updated values (a settings row in the database) is wired by
// the caller via the OnUpdate hook; the manager itself is storage-agnostic.
type LimitsManager struct {
	mu     sync.RWMutex
	limits LimitsConfig

	// OnUpdate, when set, is invoked after a successful update with the new
	// values. Used to persist overrides across restarts.
	OnUpdate func(LimitsConfig)
}

// NewLimitsManager creates a manager seeded with the given limits.
func NewLimitsManager(limits LimitsConfig) *LimitsManager {
	return &LimitsManager{limits: limits}
}

// Limits implements session.ConfigProvider.
func (m *LimitsManager) Limits() session.Limits {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return session.Limits{
		DailyLimitMinutes: m.limits.DailyLimitMinutes,
		GridSize:          m.limits.GridSize,
	}
}

// Current returns the full limit settings.
func (m *LimitsManager) Current() LimitsConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limits
}

// Update validates and applies new limit settings.
func (m *LimitsManager) Update(limits LimitsConfig) error {
	if err := limits.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.limits = limits
	hook := m.OnUpdate
	m.mu.Unlock()

	if hook != nil {
		hook(limits)
	}
	return nil
}
