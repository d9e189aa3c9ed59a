// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kidscreen/kidscreen/internal/config"
	"github.com/kidscreen/kidscreen/internal/logging"
)

const testPassword = "correct horse battery staple"

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	store, err := NewBadgerSessionStore("", logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("failed to open in-memory session store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	a, err := NewAuthenticator(&config.SecurityConfig{
		ParentUsername:     "parent",
		ParentPasswordHash: string(hash),
		JWTSecret:          "test-secret-at-least-32-characters!!",
		SessionTimeout:     time.Hour,
	}, store, logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("failed to build authenticator: %v", err)
	}
	return a
}

func TestLoginAndVerify(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	token, expiresAt, err := a.Login(ctx, "parent", testPassword)
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if token == "" {
		t.Fatal("Login returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiry %v is not in the future", expiresAt)
	}

	claims, err := a.Verify(ctx, token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if claims.Username != "parent" {
		t.Errorf("claims.Username = %q, want parent", claims.Username)
	}
	if claims.ID == "" {
		t.Error("claims carry no session ID")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "parent", "nope"},
		{"wrong username", "admin", testPassword},
		{"both wrong", "admin", "nope"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := a.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	token, _, err := a.Login(ctx, "parent", testPassword)
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if err := a.Logout(ctx, token); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}

	if _, err := a.Verify(ctx, token); err == nil {
		t.Error("Verify succeeded after logout, want rejection")
	}

	// Logout is idempotent.
	if err := a.Logout(ctx, token); err != nil {
		t.Errorf("second Logout() error: %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	token, _, err := a.Login(ctx, "parent", testPassword)
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := a.Verify(ctx, tampered); err == nil {
		t.Error("Verify accepted a tampered token")
	}
	if _, err := a.Verify(ctx, "not-a-jwt"); err == nil {
		t.Error("Verify accepted garbage")
	}
}

func TestRequireParentMiddleware(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	token, _, err := a.Login(ctx, "parent", testPassword)
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	var gotClaims *Claims
	handler := a.RequireParent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/channels", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotClaims == nil {
				t.Error("handler saw no claims in context")
			}
		})
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	store, err := NewBadgerSessionStore("", logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	now := time.Now().UTC()
	live := &Session{ID: "live", Username: "parent", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := store.Create(ctx, live); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := store.Get(ctx, "live")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Username != "parent" {
		t.Errorf("Get() = %+v", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(missing) = %v, want ErrSessionNotFound", err)
	}

	expired := &Session{ID: "expired", Username: "parent", CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}
	if err := store.Create(ctx, expired); err == nil {
		t.Error("Create accepted an already-expired session")
	}

	if err := store.Delete(ctx, "live"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := store.Get(ctx, "live"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after delete = %v, want ErrSessionNotFound", err)
	}
}
