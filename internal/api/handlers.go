// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/kidscreen/kidscreen/internal/config"
	"github.com/kidscreen/kidscreen/internal/metrics"
	"github.com/kidscreen/kidscreen/internal/models"
	"github.com/kidscreen/kidscreen/internal/session"
)

// Engine is the slice of the session orchestrator the handlers consume.
type Engine interface {
	GetVideosForGrid(ctx context.Context, now time.Time, count int) ([]models.Video, models.DailyLimitState, error)
	LogWatchAndUpdate(ctx context.Context, now time.Time, videoID string, completed bool, durationWatchedSeconds int, kind models.WatchKind) (models.DailyLimitState, error)
	GetStatus(ctx context.Context, now time.Time) (models.DailyLimitState, error)
}

// Store is the slice of the database the admin handlers consume.
type Store interface {
	CreateChannel(ctx context.Context, ch models.Channel) error
	GetChannel(ctx context.Context, id string) (models.Channel, error)
	ListChannels(ctx context.Context) ([]models.Channel, error)
	UpdateChannel(ctx context.Context, ch models.Channel) error
	DeleteChannel(ctx context.Context, id string) error

	ListVideos(ctx context.Context) ([]models.Video, error)
	BanVideo(ctx context.Context, videoID string, now time.Time) error
	UnbanVideo(ctx context.Context, videoID string) error

	ListWatchEventsOn(ctx context.Context, utcDate string) ([]models.WatchEvent, error)
	DeleteWatchEventsOn(ctx context.Context, utcDate string) (int64, error)

	Ping(ctx context.Context) error
}

// ParentAuth is the slice of the authenticator the auth handlers consume.
type ParentAuth interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error)
	Logout(ctx context.Context, token string) error
}

// Syncer triggers an on-demand catalog sync. Nil when ingest is disabled.
type Syncer interface {
	SyncAll(ctx context.Context) error
}

// Handler serves all HTTP endpoints.
type Handler struct {
	engine Engine
	store  Store
	limits *config.LimitsManager
	authn  ParentAuth
	syncer Syncer
	logger zerolog.Logger

	// now is swappable in tests.
	now func() time.Time

	startTime time.Time
}

// NewHandler wires the HTTP handlers. syncer may be nil when the ingest
// pipeline is disabled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(engine Engine, store Store, limits *config.LimitsManager, authn ParentAuth, syncer Syncer, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:    engine,
		store:     store,
		limits:    limits,
		authn:     authn,
		syncer:    syncer,
		logger:    logger.With().Str("component", "api").Logger(),
		now:       time.Now,
		startTime: time.Now(),
	}
}

// GetGrid handles GET /api/v1/grid. The grid size comes from the limit
// settings; while in Grace the smaller grace grid is offered alongside the
// bonus-video prompt.
func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	state, err := h.engine.GetStatus(r.Context(), now)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	cfg := h.limits.Current()
	count := cfg.GridSize
	if state.State == models.StateGrace {
		count = cfg.GraceGridSize
	}

	videos, state, err := h.engine.GetVideosForGrid(r.Context(), now, count)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	metrics.GridRequestsTotal.WithLabelValues(state.State.String()).Inc()
	metrics.RecordLimitState(state.State.String(), state.MinutesRemaining)

	respondSuccess(w, http.StatusOK, models.GridResponse{
		Videos:     videos,
		DailyLimit: state,
	})
}

// PostWatch handles POST /api/v1/watch.
func (h *Handler) PostWatch(w http.ResponseWriter, r *http.Request) {
	var req watchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	kind, err := models.ParseWatchKind(req.Kind)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	state, err := h.engine.LogWatchAndUpdate(r.Context(), h.now(), req.VideoID, req.Completed, req.DurationWatchedSeconds, kind)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	metrics.RecordWatchEvent(kind.String(), req.DurationWatchedSeconds)
	metrics.RecordLimitState(state.State.String(), state.MinutesRemaining)

	respondSuccess(w, http.StatusOK, models.StatusResponse{DailyLimit: state})
}

// GetStatus handles GET /api/v1/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	state, err := h.engine.GetStatus(r.Context(), h.now())
	if err != nil {
		respondSessionError(w, err)
		return
	}

	metrics.RecordLimitState(state.State.String(), state.MinutesRemaining)

	respondSuccess(w, http.StatusOK, models.StatusResponse{DailyLimit: state})
}

// GetInterruptCheck handles GET /api/v1/interrupt-check. The player polls
// it during playback with the running video's full duration; the response
// says whether the video must be cut short given the minutes remaining now.
func (h *Handler) GetInterruptCheck(w http.ResponseWriter, r *http.Request) {
	req := interruptCheckRequest{
		VideoDurationSeconds: getIntParam(r, "video_duration_seconds", -1),
	}
	if req.VideoDurationSeconds < 0 {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "video_duration_seconds is required and must be >= 0", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	state, err := h.engine.GetStatus(r.Context(), h.now())
	if err != nil {
		respondSessionError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, models.InterruptCheckResponse{
		ShouldInterrupt: session.ShouldInterrupt(state.MinutesRemaining, req.VideoDurationSeconds),
	})
}

// healthStatus is the payload of the health endpoints.
type healthStatus struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds,omitempty"`
	Database      string `json:"database,omitempty"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "up"
	status := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	payload := healthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Database:      dbStatus,
	}
	if status != http.StatusOK {
		payload.Status = "degraded"
	}
	respondSuccess(w, status, payload)
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, healthStatus{Status: "ok"})
}

// HealthReady handles GET /api/v1/health/ready. Readiness requires the
// database to answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "database not reachable", err)
		return
	}
	respondSuccess(w, http.StatusOK, healthStatus{Status: "ok"})
}
