// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package config defines the application configuration and its layered
// loading: struct defaults, then an optional YAML file, then environment
// variables. Precedence: ENV > file > defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Limits   LimitsConfig   `koanf:"limits"`
	YouTube  YouTubeConfig  `koanf:"youtube"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file location. ":memory:" is accepted for tests.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage, e.g. "512MB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// LimitsConfig holds the viewing limit settings the session engine consumes.
// These are the only settings mutable at runtime (through the admin API).
type LimitsConfig struct {
	// DailyLimitMinutes is the child's daily budget. Valid range 5-180.
	DailyLimitMinutes int `koanf:"daily_limit_minutes" json:"daily_limit_minutes"`

	// GridSize is the number of videos in a normal grid. Valid range 4-15.
	GridSize int `koanf:"grid_size" json:"grid_size"`

	// GraceGridSize is the smaller grid shown with the bonus-video offer.
	// Must be between 1 and GridSize.
	GraceGridSize int `koanf:"grace_grid_size" json:"grace_grid_size"`
}

// YouTubeConfig holds ingest pipeline settings for the YouTube Data API.
type YouTubeConfig struct {
	Enabled bool   `koanf:"enabled"`
	APIKey  string `koanf:"api_key"`

	// BaseURL is overridable for tests; defaults to the public API.
	BaseURL string `koanf:"base_url"`

	SyncInterval time.Duration `koanf:"sync_interval"`
	PageSize     int           `koanf:"page_size"`

	// RequestsPerSecond is the client-side rate limit toward the API.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	RetryAttempts int           `koanf:"retry_attempts"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
	Timeout       time.Duration `koanf:"timeout"`
}

// SecurityConfig holds parent authentication settings. Child endpoints
// carry no auth (the player runs on a kiosk device); everything under
// /admin requires a parent token.
type SecurityConfig struct {
	// ParentUsername and ParentPasswordHash (bcrypt) form the single parent
	// account.
	ParentUsername     string `koanf:"parent_username"`
	ParentPasswordHash string `koanf:"parent_password_hash"`

	// JWTSecret signs parent session tokens. Required in production.
	JWTSecret string `koanf:"jwt_secret"`

	SessionTimeout time.Duration `koanf:"session_timeout"`

	// SessionStorePath is the badger directory for persisted sessions.
	SessionStorePath string `koanf:"session_store_path"`

	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	if c.YouTube.Enabled {
		if c.YouTube.APIKey == "" {
			return fmt.Errorf("youtube.api_key is required when youtube.enabled is true")
		}
		if c.YouTube.SyncInterval < time.Minute {
			return fmt.Errorf("youtube.sync_interval must be at least 1m, got %s", c.YouTube.SyncInterval)
		}
	}
	if c.Server.Environment == "production" {
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("security.jwt_secret is required in production")
		}
		if c.Security.ParentPasswordHash == "" {
			return fmt.Errorf("security.parent_password_hash is required in production")
		}
	}
	return nil
}

// Validate checks the limit settings against their allowed ranges.
func (l LimitsConfig) Validate() error {
	if l.DailyLimitMinutes < 5 || l.DailyLimitMinutes > 180 {
		return fmt.Errorf("limits.daily_limit_minutes must be 5-180, got %d", l.DailyLimitMinutes)
	}
	if l.GridSize < 4 || l.GridSize > 15 {
		return fmt.Errorf("limits.grid_size must be 4-15, got %d", l.GridSize)
	}
	if l.GraceGridSize < 1 || l.GraceGridSize > l.GridSize {
		return fmt.Errorf("limits.grace_grid_size must be 1-%d, got %d", l.GridSize, l.GraceGridSize)
	}
	return nil
}
