// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kidscreen/kidscreen/internal/auth"
	"github.com/kidscreen/kidscreen/internal/models"
)

// loginResponse is the payload of a successful login.
type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /api/v1/auth/login. Unknown usernames and wrong
// passwords return the same error.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	token, expiresAt, err := h.authn.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "invalid username or password", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "login failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

// Logout handles POST /api/v1/auth/logout. Revokes the bearer token's
// session; logging out an already-dead session still succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "missing bearer token", nil)
		return
	}

	if err := h.authn.Logout(r.Context(), token); err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "logout failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]string{"logged_out": "true"})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return header[len(prefix):]
}
