// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"time"

	"github.com/tomtom215/propnest/internal/database"
	"github.com/tomtom215/propnest/internal/events"
	"github.com/tomtom215/propnest/internal/middleware"
	"github.com/tomtom215/propnest/internal/recommend"
)

// recommendTimeout bounds engine calls made on behalf of a request.
const recommendTimeout = 10 * time.Second

// rebuildTimeout bounds a rebuild started through the API.
const rebuildTimeout = 30 * time.Minute

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: request parsing helpers
//   - handlers_health.go: health and performance endpoints
//   - handlers_properties.go: catalog endpoints
//   - handlers_interactions.go: interaction recording
//   - handlers_recommend.go: recommendation endpoints
type Handler struct {
	db      *database.DB
	store   *database.BreakerStore
	engine  *recommend.Engine
	bus     *events.Bus
	perfMon *middleware.PerformanceMonitor

	startTime time.Time
}

// NewHandler creates the API handler.
//
// store must be the breaker-wrapped view of db that the engine reads
// through, so catalog reads and engine reads share one circuit. Writes go
// to db directly.
func NewHandler(db *database.DB, store *database.BreakerStore, engine *recommend.Engine, bus *events.Bus) *Handler {
	return &Handler{
		db:        db,
		store:     store,
		engine:    engine,
		bus:       bus,
		perfMon:   middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowRequestThreshold),
		startTime: time.Now(),
	}
}

// PerformanceMonitor returns the monitor the router records requests into.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}
