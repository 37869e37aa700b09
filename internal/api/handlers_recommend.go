// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/propnest/internal/logging"
	"github.com/tomtom215/propnest/internal/recommend"
)

// userContext parses {userID} and returns a request context carrying it.
func userContext(r *http.Request) (context.Context, int64, error) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		return nil, 0, err
	}
	return logging.ContextWithUserID(r.Context(), userID), userID, nil
}

// GetRecommendations handles GET /api/v1/users/{userID}/recommendations
// Query: limit (default 10, clamped to 100), mode (personalized|simple).
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := userContext(r)
	if err != nil {
		respondBadParam(w, r, err)
		return
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		respondBadParam(w, r, err)
		return
	}
	req := RecommendationsRequest{Limit: limit, Mode: r.URL.Query().Get("mode")}
	if !validateRequest(w, r, &req) {
		return
	}
	mode, err := recommend.ParseRecommendMode(req.Mode)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, recommendTimeout)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		UserID:    userID,
		Limit:     req.Limit,
		Mode:      mode,
		RequestID: logging.RequestIDFromContext(ctx),
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate recommendations")
		return
	}

	respondJSON(w, r, http.StatusOK, &APIResponse{
		Status:   statusSuccess,
		Data:     resp,
		Metadata: Metadata{QueryTimeMS: resp.Metadata.LatencyMS},
	})
}

// GetPreferences handles GET /api/v1/users/{userID}/preferences
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := userContext(r)
	if err != nil {
		respondBadParam(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, recommendTimeout)
	defer cancel()

	prefs, err := h.engine.BuildPreferences(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to build preferences")
		return
	}
	respondSuccess(w, r, http.StatusOK, prefs)
}

// GetSavedProperties handles GET /api/v1/users/{userID}/saved
func (h *Handler) GetSavedProperties(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := userContext(r)
	if err != nil {
		respondBadParam(w, r, err)
		return
	}

	saved, err := h.store.GetSavedProperties(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load saved properties")
		return
	}
	if saved == nil {
		saved = []recommend.Property{}
	}
	respondSuccess(w, r, http.StatusOK, saved)
}

// GetScore handles GET /api/v1/users/{userID}/scores/{propertyID}
// A pair without history scores 0.
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := userContext(r)
	if err != nil {
		respondBadParam(w, r, err)
		return
	}
	propertyID, err := parseIDParam(r, "propertyID")
	if err != nil {
		respondBadParam(w, r, err)
		return
	}

	score, err := h.engine.GetScore(ctx, userID, propertyID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to read affinity score")
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"user_id":     userID,
		"property_id": propertyID,
		"score":       score,
	})
}

// ExplainRecommendation handles
// GET /api/v1/users/{userID}/recommendations/explain/{propertyID}
// Returns the per-dimension contributions to the candidate score.
func (h *Handler) ExplainRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx, userID, err := userContext(r)
	if err != nil {
		respondBadParam(w, r, err)
		return
	}
	propertyID, err := parseIDParam(r, "propertyID")
	if err != nil {
		respondBadParam(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, recommendTimeout)
	defer cancel()

	breakdown, err := h.engine.Explain(ctx, userID, propertyID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to explain recommendation")
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"user_id":     userID,
		"property_id": propertyID,
		"breakdown":   breakdown,
	})
}

// GetRecommendationStatus handles GET /api/v1/recommendations/status
func (h *Handler) GetRecommendationStatus(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"maintenance": h.engine.GetStatus(),
		"metrics":     h.engine.GetMetrics(),
	})
}

// GetRecommendationConfig handles GET /api/v1/recommendations/config
func (h *Handler) GetRecommendationConfig(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.engine.GetConfig())
}

// TriggerRebuild handles POST /api/v1/recommendations/rebuild
// The rebuild runs in the background; poll the status endpoint for the
// outcome.
func (h *Handler) TriggerRebuild(w http.ResponseWriter, r *http.Request) {
	if h.engine.GetStatus().Rebuilding {
		respondServiceError(w, r, recommend.ErrRebuildInProgress, "")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go func() {
		ctx, cancel := context.WithTimeout(ctx, rebuildTimeout)
		defer cancel()

		replayed, err := h.engine.Rebuild(ctx)
		switch {
		case errors.Is(err, recommend.ErrRebuildInProgress):
			logging.CtxInfo(ctx).Msg("Rebuild request skipped, rebuild already running")
		case err != nil:
			logging.CtxErr(ctx, err).Msg("Affinity rebuild failed")
		default:
			logging.CtxInfo(ctx).Int("replayed", replayed).Msg("Affinity rebuild completed")
		}
	}()

	respondSuccess(w, r, http.StatusAccepted, map[string]string{
		"message": "Rebuild started",
	})
}
