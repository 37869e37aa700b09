// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/propnest/internal/recommend"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status            string           `json:"status"`
	Version           string           `json:"version"`
	DatabaseConnected bool             `json:"database_connected"`
	StoreCircuit      string           `json:"store_circuit"`
	EventsBackend     string           `json:"events_backend"`
	EventsCircuit     string           `json:"events_circuit"`
	InstanceID        string           `json:"instance_id,omitempty"`
	Recommend         recommend.Status `json:"recommend"`
	Uptime            float64          `json:"uptime_seconds"`
}

func (h *Handler) databaseConnected(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.Ping(ctx) == nil
}

// Health handles GET /health. It always answers 200; Status is "degraded"
// when the database is unreachable or its circuit is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:            "healthy",
		Version:           Version,
		DatabaseConnected: h.databaseConnected(r.Context()),
		StoreCircuit:      "disabled",
		EventsBackend:     "none",
		EventsCircuit:     "disabled",
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.store != nil {
		health.StoreCircuit = h.store.State()
	}
	if h.bus != nil {
		health.EventsBackend = h.bus.Backend()
		health.EventsCircuit = h.bus.BreakerState()
		health.InstanceID = h.bus.InstanceID()
	}
	if h.engine != nil {
		health.Recommend = h.engine.GetStatus()
	}
	if !health.DatabaseConnected || health.StoreCircuit == "open" {
		health.Status = "degraded"
	}

	respondSuccess(w, r, http.StatusOK, health)
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if the database answers, 503 otherwise
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.databaseConnected(r.Context())
	if !ready {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Database not reachable", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"ready":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// Performance handles GET /performance: per-route latency statistics of
// the most recent requests.
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	recent, err := getIntParam(r, "recent", 20)
	if err != nil || recent < 0 || recent > 1000 {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "recent must be an integer between 0 and 1000", nil)
		return
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"endpoints": h.perfMon.Stats(),
		"recent":    h.perfMon.Recent(recent),
	})
}
