// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/propnest/internal/middleware"
)

// Router sets up HTTP routes using Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config uses
// DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(chiMiddleware(middleware.RequestID)) // X-Request-ID / X-Correlation-ID with logging context
	r.Use(router.chiMiddleware.ProxyHeaders())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(h.perfMon.Middleware)
	r.Use(middleware.Compression())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	// ========================
	// Health and Metrics
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/health", h.Health)
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	})

	// ========================
	// API v1
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(router.chiMiddleware.RateLimit())

		r.Get("/health", h.Health)
		r.Get("/performance", h.Performance)

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", h.SearchProperties)
			r.Get("/featured", h.GetFeaturedProperties)
			r.Get("/{id}", h.GetProperty)
			r.Get("/{id}/similar", h.GetSimilarProperties)

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitWrite())
				r.Post("/", h.CreateProperty)
				r.Put("/{id}", h.UpdateProperty)
				r.Delete("/{id}", h.DeleteProperty)
			})
		})

		r.With(router.chiMiddleware.RateLimitWrite()).Post("/interactions", h.RecordInteraction)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/recommendations", h.GetRecommendations)
			r.Get("/recommendations/explain/{propertyID}", h.ExplainRecommendation)
			r.Get("/preferences", h.GetPreferences)
			r.Get("/saved", h.GetSavedProperties)
			r.Get("/scores/{propertyID}", h.GetScore)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/status", h.GetRecommendationStatus)
			r.Get("/config", h.GetRecommendationConfig)
			r.With(router.chiMiddleware.RateLimitMaintenance()).Post("/rebuild", h.TriggerRebuild)
		})
	})

	return r
}
