// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/propnest/internal/logging"
	"github.com/tomtom215/propnest/internal/recommend"
)

// InteractionResult is the payload of POST /interactions.
type InteractionResult struct {
	Interaction recommend.Interaction `json:"interaction"`
	Score       float64               `json:"score"`
}

// RecordInteraction handles POST /api/v1/interactions
//
// The engine appends the interaction to the log and applies it to the
// affinity scores, then it is announced to other instances. A failure after
// the append leaves the log authoritative; a rebuild replays it.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if !decodeJSONBody(w, r, &req) || !validateRequest(w, r, &req) {
		return
	}
	kind, err := recommend.ParseInteractionKind(req.Kind)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	ctx := logging.ContextWithUserID(r.Context(), req.UserID)

	if _, err := h.store.GetProperty(ctx, req.PropertyID); err != nil {
		respondServiceError(w, r, err, "Failed to load property")
		return
	}

	in := recommend.Interaction{
		ID:         req.EventID,
		UserID:     req.UserID,
		PropertyID: req.PropertyID,
		Kind:       kind,
	}
	if req.OccurredAt != nil {
		in.OccurredAt = *req.OccurredAt
	}
	if in.OccurredAt.After(time.Now().Add(time.Minute)) {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "occurred_at must not be in the future", nil)
		return
	}

	stored, err := h.engine.Ingest(ctx, in)
	if err != nil {
		respondServiceError(w, r, err, "Failed to record interaction")
		return
	}

	if h.bus != nil {
		h.bus.Emitter.Notify(ctx, stored)
	}

	score, err := h.engine.GetScore(ctx, stored.UserID, stored.PropertyID)
	if err != nil {
		logging.CtxWarn(ctx).Err(err).Int64("property_id", stored.PropertyID).Msg("Failed to read updated score")
	}

	respondSuccess(w, r, http.StatusAccepted, InteractionResult{Interaction: stored, Score: score})
}
