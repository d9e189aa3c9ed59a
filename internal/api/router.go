// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kidscreen/kidscreen/internal/config"
	"github.com/kidscreen/kidscreen/internal/middleware"
)

// loginRateLimit bounds credential-guessing attempts per IP.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// NewRouter assembles the chi router with the full middleware stack.
// requireParent guards the admin subtree; pass auth.Authenticator's
// RequireParent.
func NewRouter(h *Handler, requireParent func(http.Handler) http.Handler, cfg *config.SecurityConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(cfg))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Prometheus)

	rateLimit := rateLimiter(cfg)

	r.Route("/api/v1", func(r chi.Router) {
		// Child endpoints, unauthenticated (kiosk device).
		r.Group(func(r chi.Router) {
			r.Use(rateLimit)
			r.Get("/grid", h.GetGrid)
			r.Post("/watch", h.PostWatch)
			r.Get("/status", h.GetStatus)
			r.Get("/interrupt-check", h.GetInterruptCheck)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(httprate.Limit(loginRateLimit, loginRateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP)))
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(rateLimit)
			r.Use(requireParent)

			r.Get("/channels", h.ListChannels)
			r.Post("/channels", h.CreateChannel)
			r.Get("/channels/{id}", h.GetChannel)
			r.Put("/channels/{id}", h.UpdateChannel)
			r.Delete("/channels/{id}", h.DeleteChannel)

			r.Get("/videos", h.ListVideos)
			r.Post("/videos/{id}/ban", h.BanVideo)
			r.Delete("/videos/{id}/ban", h.UnbanVideo)

			r.Get("/history", h.History)
			r.Post("/reset", h.ResetDay)

			r.Get("/limits", h.GetLimits)
			r.Put("/limits", h.UpdateLimits)

			r.Post("/sync", h.TriggerSync)
		})

		r.Get("/health", h.Health)
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// corsHandler builds the CORS middleware from the configured origins. No
// origins configured means same-origin only, which suits the kiosk setup.
func corsHandler(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		return passthrough
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// rateLimiter builds the per-IP request limiter, or a no-op when disabled.
func rateLimiter(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitRequests <= 0 || cfg.RateLimitWindow <= 0 {
		return passthrough
	}
	return httprate.Limit(cfg.RateLimitRequests, cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP))
}

func passthrough(next http.Handler) http.Handler {
	return next
}
