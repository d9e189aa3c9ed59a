// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kidscreen/kidscreen/internal/config"
	"github.com/kidscreen/kidscreen/internal/database"
	"github.com/kidscreen/kidscreen/internal/models"
)

// ListChannels handles GET /api/v1/admin/channels.
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.store.ListChannels(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to list channels", err)
		return
	}
	respondSuccess(w, http.StatusOK, channels)
}

// CreateChannel handles POST /api/v1/admin/channels. New channels default
// to enabled; the next sync pass picks them up.
func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req createChannelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := h.now().UTC()
	ch := models.Channel{
		ID:         uuid.New().String(),
		Kind:       models.ChannelKind(req.Kind),
		ExternalID: req.ExternalID,
		Title:      req.Title,
		Enabled:    enabled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.store.CreateChannel(r.Context(), ch); err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to create channel", err)
		return
	}

	h.logger.Info().
		Str("channel_id", ch.ID).
		Str("kind", string(ch.Kind)).
		Str("external_id", sanitizeLogValue(ch.ExternalID)).
		Msg("Channel approved")

	respondSuccess(w, http.StatusCreated, ch)
}

// GetChannel handles GET /api/v1/admin/channels/{id}.
func (h *Handler) GetChannel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ch, err := h.store.GetChannel(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "channel not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to load channel", err)
		return
	}
	respondSuccess(w, http.StatusOK, ch)
}

// UpdateChannel handles PUT /api/v1/admin/channels/{id}. Only title and
// enabled are mutable; kind and external ID are fixed after approval.
func (h *Handler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	var req updateChannelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	id := chi.URLParam(r, "id")
	ch, err := h.store.GetChannel(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "channel not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to load channel", err)
		return
	}

	if req.Title != nil {
		ch.Title = *req.Title
	}
	if req.Enabled != nil {
		ch.Enabled = *req.Enabled
	}
	ch.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateChannel(r.Context(), ch); err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to update channel", err)
		return
	}
	respondSuccess(w, http.StatusOK, ch)
}

// DeleteChannel handles DELETE /api/v1/admin/channels/{id}. The channel's
// videos go with it; watch history keeps its video IDs.
func (h *Handler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.store.DeleteChannel(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "channel not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to delete channel", err)
		return
	}

	h.logger.Info().Str("channel_id", sanitizeLogValue(id)).Msg("Channel removed")
	respondSuccess(w, http.StatusOK, map[string]string{"id": id})
}

// ListVideos handles GET /api/v1/admin/videos. Returns the full catalog
// including banned and unavailable videos so the parent can review it.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.store.ListVideos(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to list videos", err)
		return
	}
	respondSuccess(w, http.StatusOK, videos)
}

// BanVideo handles POST /api/v1/admin/videos/{id}/ban. Banning is
// idempotent and survives catalog re-syncs.
func (h *Handler) BanVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.BanVideo(r.Context(), id, h.now()); err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to ban video", err)
		return
	}
	h.logger.Info().Str("video_id", sanitizeLogValue(id)).Msg("Video banned")
	respondSuccess(w, http.StatusOK, map[string]string{"id": id, "banned": "true"})
}

// UnbanVideo handles DELETE /api/v1/admin/videos/{id}/ban.
func (h *Handler) UnbanVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.UnbanVideo(r.Context(), id); err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to unban video", err)
		return
	}
	h.logger.Info().Str("video_id", sanitizeLogValue(id)).Msg("Video unbanned")
	respondSuccess(w, http.StatusOK, map[string]string{"id": id, "banned": "false"})
}

// History handles GET /api/v1/admin/history?date=YYYY-MM-DD. Defaults to
// the current UTC date.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.now().UTC().Format(time.DateOnly)
	}
	req := historyRequest{Date: date}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	events, err := h.store.ListWatchEventsOn(r.Context(), req.Date)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to load history", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"date":   req.Date,
		"events": events,
	})
}

// ResetDay handles POST /api/v1/admin/reset. Deleting a date's watch
// events makes the recomputed state for that date start fresh; there is no
// separate "unlock" flag to flip.
func (h *Handler) ResetDay(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	deleted, err := h.store.DeleteWatchEventsOn(r.Context(), req.Date)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeStorageUnavailable, "failed to reset day", err)
		return
	}

	h.logger.Info().Str("date", req.Date).Int64("deleted", deleted).Msg("Day reset")
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"date":           req.Date,
		"events_deleted": deleted,
	})
}

// GetLimits handles GET /api/v1/admin/limits.
func (h *Handler) GetLimits(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, h.limits.Current())
}

// UpdateLimits handles PUT /api/v1/admin/limits. Changes apply to the next
// state computation; no restart needed.
func (h *Handler) UpdateLimits(w http.ResponseWriter, r *http.Request) {
	var req config.LimitsConfig
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid JSON body", err)
		return
	}

	if err := h.limits.Update(req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}

	h.logger.Info().
		Int("daily_limit_minutes", req.DailyLimitMinutes).
		Int("grid_size", req.GridSize).
		Int("grace_grid_size", req.GraceGridSize).
		Msg("Limit settings updated")

	respondSuccess(w, http.StatusOK, h.limits.Current())
}

// TriggerSync handles POST /api/v1/admin/sync. The sync runs in the
// background; the response only acknowledges the start.
func (h *Handler) TriggerSync(w http.ResponseWriter, _ *http.Request) {
	if h.syncer == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeSyncDisabled, "video sync is not enabled", nil)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := h.syncer.SyncAll(ctx); err != nil {
			h.logger.Error().Err(err).Msg("Manual sync failed")
		}
	}()

	respondSuccess(w, http.StatusAccepted, map[string]string{"sync": "started"})
}
