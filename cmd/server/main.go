// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

// Package main is the entry point for the Kidscreen server.
//
// Kidscreen is a self-hosted, parent-curated video viewing service for
// young children. A parent approves YouTube channels and playlists, sets a
// daily viewing budget, and the child picks from a small grid of videos on
// a kiosk device. The server enforces the budget through a daily limit
// state machine (normal, wind-down, grace, locked) recomputed from the
// watch log on every request.
//
// Startup order:
//
//  1. Configuration (koanf v2: defaults, optional YAML file, KIDSCREEN_*
//     environment variables)
//  2. Logging (zerolog)
//  3. DuckDB database (watch log, catalog, channels, settings)
//  4. Limit settings (database override beats the config file)
//  5. Parent auth (bcrypt credentials, JWT tokens, badger session store)
//  6. YouTube ingest pipeline (optional, YOUTUBE_ENABLED=true)
//  7. HTTP server under a suture supervision tree
//
// The server handles SIGINT/SIGTERM with graceful shutdown: in-flight
// requests get a drain window, then the supervisor stops the sync and
// cleanup services and the database closes.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kidscreen/kidscreen/internal/api"
	"github.com/kidscreen/kidscreen/internal/auth"
	"github.com/kidscreen/kidscreen/internal/config"
	"github.com/kidscreen/kidscreen/internal/database"
	"github.com/kidscreen/kidscreen/internal/ingest"
	"github.com/kidscreen/kidscreen/internal/logging"
	"github.com/kidscreen/kidscreen/internal/session"
	"github.com/kidscreen/kidscreen/internal/supervisor"
)

// sessionCleanupInterval is how often expired parent sessions are swept.
const sessionCleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("youtube_enabled", cfg.YouTube.Enabled).
		Int("daily_limit_minutes", cfg.Limits.DailyLimitMinutes).
		Msg("Starting Kidscreen")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	limitsMgr := loadLimits(db, cfg)

	sessions, err := auth.NewBadgerSessionStore(cfg.Security.SessionStorePath, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()

	authn, err := auth.NewAuthenticator(&cfg.Security, sessions, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).
			Msg("Failed to initialize parent auth; set KIDSCREEN_SECURITY_PARENT_PASSWORD_HASH and KIDSCREEN_SECURITY_JWT_SECRET")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // selection shuffling, not cryptography
	engine := session.NewOrchestrator(db, db, limitsMgr, rng, logging.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	var syncer api.Syncer
	if cfg.YouTube.Enabled {
		source := ingest.NewCircuitBreakerClient(ingest.NewClient(&cfg.YouTube), logging.Logger())
		manager := ingest.NewManager(source, db, &cfg.YouTube, logging.Logger())
		tree.AddDataService(manager)
		syncer = manager
		logging.Info().
			Dur("sync_interval", cfg.YouTube.SyncInterval).
			Msg("YouTube ingest manager added to supervisor tree")
	} else {
		logging.Info().Msg("YouTube ingest disabled; catalog is managed manually")
	}

	tree.AddDataService(supervisor.NewSessionCleanupService(sessions, sessionCleanupInterval, logging.Logger()))

	handler := api.NewHandler(engine, db, limitsMgr, authn, syncer, logging.Logger())
	router := api.NewRouter(handler, authn.RequireParent, &cfg.Security)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Kidscreen stopped")
}

// loadLimits seeds the runtime limit settings. A settings row saved by the
// admin API overrides the config file; updates are written back so they
// survive restarts.
func loadLimits(db *database.DB, cfg *config.Config) *config.LimitsManager {
	limits := cfg.Limits

	stored, err := db.LoadLimits(context.Background())
	switch {
	case err == nil:
		limits = stored
		logging.Info().
			Int("daily_limit_minutes", limits.DailyLimitMinutes).
			Msg("Loaded limit settings from database")
	case errors.Is(err, database.ErrNotFound):
		// First boot: config file values apply.
	default:
		logging.Warn().Err(err).Msg("Failed to load stored limit settings, using configuration")
	}

	mgr := config.NewLimitsManager(limits)
	mgr.OnUpdate = func(updated config.LimitsConfig) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.SaveLimits(ctx, updated); err != nil {
			logging.Error().Err(err).Msg("Failed to persist limit settings")
		}
	}
	return mgr
}
