// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/kidscreen/kidscreen/internal/config"
)

// limitsSettingKey is the settings row holding admin limit overrides.
const limitsSettingKey = "limits"

// LoadLimits returns limit overrides persisted by a previous admin update.
// Returns ErrNotFound when no override exists (the config file values apply).
func (db *DB) LoadLimits(ctx context.Context) (config.LimitsConfig, error) {
	var raw string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, limitsSettingKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return config.LimitsConfig{}, ErrNotFound
	}
	if err != nil {
		return config.LimitsConfig{}, fmt.Errorf("failed to load limits: %w", err)
	}

	var limits config.LimitsConfig
	if err := json.Unmarshal([]byte(raw), &limits); err != nil {
		return config.LimitsConfig{}, fmt.Errorf("corrupt limits setting: %w", err)
	}
	return limits, nil
}

// SaveLimits persists the current limit settings so admin updates survive
// restarts.
func (db *DB) SaveLimits(ctx context.Context, limits config.LimitsConfig) error {
	raw, err := json.Marshal(limits)
	if err != nil {
		return fmt.Errorf("failed to encode limits: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		limitsSettingKey, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save limits: %w", err)
	}
	return nil
}
