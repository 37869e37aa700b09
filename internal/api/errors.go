// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/propnest/internal/database"
	"github.com/tomtom215/propnest/internal/recommend"
)

// respondServiceError maps engine and store errors to HTTP responses:
//
//	ErrPropertyNotFound              404
//	ErrInvalidProperty / Interaction 400
//	ErrDuplicateInteraction          409
//	ErrRebuildInProgress             409
//	ErrStoreUnavailable, deadline    503
//	anything else                    500
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, recommend.ErrPropertyNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Property not found", nil)
	case errors.Is(err, database.ErrInvalidProperty), errors.Is(err, recommend.ErrInvalidInteraction):
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
	case errors.Is(err, database.ErrDuplicateInteraction):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, "Interaction already recorded", nil)
	case errors.Is(err, recommend.ErrRebuildInProgress):
		respondError(w, r, http.StatusConflict, ErrCodeRebuildInProgress, "Affinity rebuild already in progress", nil)
	case errors.Is(err, recommend.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		w.Header().Set("Retry-After", "5")
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message+": store unavailable", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, message, err)
	}
}
