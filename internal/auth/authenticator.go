// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidscreen/kidscreen/internal/config"
)

// ErrInvalidCredentials is returned for any username or password
// mismatch. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticator verifies the parent credentials and manages the token
// lifecycle: login issues a JWT plus session record, logout deletes the
// record, Verify accepts only tokens whose session is still live.
type Authenticator struct {
	username     string
	passwordHash []byte
	jwt          *JWTManager
	sessions     SessionStore
	logger       zerolog.Logger
}

// NewAuthenticator wires the parent account from configuration. The
// password hash must be a bcrypt hash; Config.Validate has already
// checked it is present in production.
func NewAuthenticator(cfg *config.SecurityConfig, sessions SessionStore, logger zerolog.Logger) (*Authenticator, error) {
	jwtManager, err := NewJWTManager(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ParentPasswordHash == "" {
		return nil, fmt.Errorf("parent_password_hash is required but was empty")
	}

	username := cfg.ParentUsername
	if username == "" {
		username = "parent"
	}

	return &Authenticator{
		username:     username,
		passwordHash: []byte(cfg.ParentPasswordHash),
		jwt:          jwtManager,
		sessions:     sessions,
		logger:       logger.With().Str("component", "auth").Logger(),
	}, nil
}

// Login checks the credentials and, on success, creates a session and
// returns the signed token with its expiry.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	// Both comparisons always run so a wrong username costs the same
	// as a wrong password.
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	if !usernameMatch || !passwordMatch {
		a.logger.Warn().Str("username", username).Msg("Failed login attempt")
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &Session{
		ID:             uuid.NewString(),
		Username:       a.username,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(a.jwt.SessionTimeout()),
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := a.jwt.GenerateToken(a.username, session.ID)
	if err != nil {
		return "", time.Time{}, err
	}

	a.logger.Info().Str("session_id", session.ID).Msg("Parent logged in")
	return token, session.ExpiresAt, nil
}

// Verify validates a token and confirms its session record still
// exists. Returns the claims on success.
func (a *Authenticator) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := a.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if _, err := a.sessions.Get(ctx, claims.ID); err != nil {
		return nil, fmt.Errorf("session revoked or expired: %w", err)
	}

	return claims, nil
}

// Logout revokes the session behind a token. An already-invalid token
// is not an error; logout is idempotent.
func (a *Authenticator) Logout(ctx context.Context, tokenString string) error {
	claims, err := a.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil
	}
	if err := a.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	a.logger.Info().Str("session_id", claims.ID).Msg("Parent logged out")
	return nil
}
