// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/propnest/internal/database"
	"github.com/tomtom215/propnest/internal/recommend"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		retryAfter bool
	}{
		{"not found", fmt.Errorf("get: %w", recommend.ErrPropertyNotFound), http.StatusNotFound, ErrCodeNotFound, false},
		{"invalid property", database.ErrInvalidProperty, http.StatusBadRequest, ErrCodeBadRequest, false},
		{"invalid interaction", recommend.ErrInvalidInteraction, http.StatusBadRequest, ErrCodeBadRequest, false},
		{"duplicate", fmt.Errorf("%w: evt-1", database.ErrDuplicateInteraction), http.StatusConflict, ErrCodeConflict, false},
		{"rebuild running", recommend.ErrRebuildInProgress, http.StatusConflict, ErrCodeRebuildInProgress, false},
		{"store down", fmt.Errorf("%w: circuit open", recommend.ErrStoreUnavailable), http.StatusServiceUnavailable, ErrCodeServiceUnavailable, true},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, true},
		{"other", errors.New("disk full"), http.StatusInternalServerError, ErrCodeDatabaseError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/1", nil)
			respondServiceError(rec, req, tt.err, "Failed")

			expectStatus(t, rec, tt.wantStatus)
			env := decode(t, rec, nil)
			if env.Status != "error" || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("envelope = %+v, want code %s", env, tt.wantCode)
			}
			if got := rec.Header().Get("Retry-After") != ""; got != tt.retryAfter {
				t.Errorf("Retry-After present = %v, want %v", got, tt.retryAfter)
			}
		})
	}
}

func TestRespondError_DoesNotLeakCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(rec, req, http.StatusInternalServerError, ErrCodeInternalError, "Something failed", errors.New("password=hunter2"))

	env := decode(t, rec, nil)
	if env.Error == nil || env.Error.Message != "Something failed" {
		t.Fatalf("error = %+v", env.Error)
	}
	if body := rec.Body.String(); strings.Contains(body, "hunter2") {
		t.Errorf("response body leaks the cause: %s", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if env.Metadata.Timestamp.IsZero() {
		t.Error("metadata timestamp not set")
	}
}
