// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/propnest/internal/logging"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		upstreamRequestID string
		upstreamCorrID    string
		keepRequestID     bool
		keepCorrID        bool
	}{
		{"generates both", "", "", false, false},
		{"reuses valid upstream ids", "lb-7f3a_01", "session-42", true, true},
		{"rejects header injection", "abc\r\nX-Evil: 1", "ok-id", false, true},
		{"rejects overlong id", strings.Repeat("a", 65), "", false, false},
		{"rejects punctuation", "id;drop", "corr{1}", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ctxRequestID, ctxCorrID string
			handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
				ctxRequestID = GetRequestID(r.Context())
				ctxCorrID = logging.CorrelationIDFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
			if tt.upstreamRequestID != "" {
				req.Header.Set(RequestIDHeader, tt.upstreamRequestID)
			}
			if tt.upstreamCorrID != "" {
				req.Header.Set(CorrelationIDHeader, tt.upstreamCorrID)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			gotRequestID := rec.Header().Get(RequestIDHeader)
			gotCorrID := rec.Header().Get(CorrelationIDHeader)

			if gotRequestID != ctxRequestID {
				t.Errorf("header request id %q != context %q", gotRequestID, ctxRequestID)
			}
			if gotCorrID != ctxCorrID {
				t.Errorf("header correlation id %q != context %q", gotCorrID, ctxCorrID)
			}

			if tt.keepRequestID {
				if gotRequestID != tt.upstreamRequestID {
					t.Errorf("request id = %q, want upstream %q", gotRequestID, tt.upstreamRequestID)
				}
			} else if _, err := uuid.Parse(gotRequestID); err != nil {
				t.Errorf("generated request id %q is not a UUID: %v", gotRequestID, err)
			}

			if tt.keepCorrID {
				if gotCorrID != tt.upstreamCorrID {
					t.Errorf("correlation id = %q, want upstream %q", gotCorrID, tt.upstreamCorrID)
				}
			} else if _, err := uuid.Parse(gotCorrID); err != nil {
				t.Errorf("generated correlation id %q is not a UUID: %v", gotCorrID, err)
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	t.Parallel()

	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {})
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(RequestIDHeader)
		if seen[id] {
			t.Fatalf("duplicate request id %q", id)
		}
		seen[id] = true
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}
