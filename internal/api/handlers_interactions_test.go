// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/propnest/internal/recommend"
)

func (ts *testServer) score(t *testing.T, userID, propertyID int64) float64 {
	t.Helper()
	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/scores/%d", userID, propertyID), nil)
	expectStatus(t, rec, http.StatusOK)

	var body struct {
		Score float64 `json:"score"`
	}
	decode(t, rec, &body)
	return body.Score
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecordInteraction_ViewPropagatesToSimilar(t *testing.T) {
	ts := setupTestServer(t)

	p := ts.createProperty(t, recommend.Property{Title: "P", Type: "apartment", City: "Pune", Price: 3_000_000})
	p2 := ts.createProperty(t, recommend.Property{Title: "P2", Type: "apartment", City: "Pune", Price: 3_200_000})

	rec := ts.do(t, http.MethodPost, "/api/v1/interactions", map[string]interface{}{
		"user_id":     7,
		"property_id": p.ID,
		"kind":        "view",
	})
	expectStatus(t, rec, http.StatusAccepted)

	var result struct {
		Interaction struct {
			ID         string `json:"id"`
			UserID     int64  `json:"user_id"`
			PropertyID int64  `json:"property_id"`
			Kind       string `json:"kind"`
		} `json:"interaction"`
		Score float64 `json:"score"`
	}
	decode(t, rec, &result)
	if result.Interaction.ID == "" || result.Interaction.Kind != "view" || result.Interaction.PropertyID != p.ID {
		t.Errorf("interaction = %+v", result.Interaction)
	}
	if !approxEqual(result.Score, 1) {
		t.Errorf("returned score = %v, want 1", result.Score)
	}

	if got := ts.score(t, 7, p.ID); !approxEqual(got, 1) {
		t.Errorf("score(P) = %v, want 1", got)
	}
	if got := ts.score(t, 7, p2.ID); !approxEqual(got, 0.5) {
		t.Errorf("score(P2) = %v, want 0.5", got)
	}
	if got := ts.score(t, 8, p.ID); got != 0 {
		t.Errorf("score for another user = %v, want 0", got)
	}
}

func TestRecordInteraction_SaveThenUnsave(t *testing.T) {
	ts := setupTestServer(t)

	p := ts.createProperty(t, recommend.Property{Title: "P", Type: "villa", City: "Goa", Price: 20_000_000})

	savedIDs := func() []int64 {
		rec := ts.do(t, http.MethodGet, "/api/v1/users/3/saved", nil)
		expectStatus(t, rec, http.StatusOK)
		var props []recommend.Property
		decode(t, rec, &props)
		ids := make([]int64, len(props))
		for i := range props {
			ids[i] = props[i].ID
		}
		return ids
	}

	ts.interact(t, 3, p.ID, "save")
	if got := ts.score(t, 3, p.ID); !approxEqual(got, 5) {
		t.Errorf("score after save = %v, want 5", got)
	}
	if ids := savedIDs(); len(ids) != 1 || ids[0] != p.ID {
		t.Errorf("saved after save = %v, want [%d]", ids, p.ID)
	}

	ts.interact(t, 3, p.ID, "UNSAVE")
	if got := ts.score(t, 3, p.ID); !approxEqual(got, 0) {
		t.Errorf("score after unsave = %v, want 0", got)
	}
	if ids := savedIDs(); len(ids) != 0 {
		t.Errorf("saved after unsave = %v, want empty", ids)
	}
}

func TestRecordInteraction_Errors(t *testing.T) {
	ts := setupTestServer(t)
	p := ts.createProperty(t, recommend.Property{Title: "P", Type: "plot", City: "Nashik", Price: 500_000})

	tests := []struct {
		name     string
		body     interface{}
		want     int
		wantCode string
	}{
		{
			name:     "unknown property",
			body:     map[string]interface{}{"user_id": 1, "property_id": 9999, "kind": "view"},
			want:     http.StatusNotFound,
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "unknown kind",
			body:     map[string]interface{}{"user_id": 1, "property_id": p.ID, "kind": "like"},
			want:     http.StatusBadRequest,
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "missing user",
			body:     map[string]interface{}{"property_id": p.ID, "kind": "view"},
			want:     http.StatusBadRequest,
			wantCode: "VALIDATION_ERROR",
		},
		{
			name: "future occurred_at",
			body: map[string]interface{}{
				"user_id": 1, "property_id": p.ID, "kind": "view",
				"occurred_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			},
			want:     http.StatusBadRequest,
			wantCode: ErrCodeBadRequest,
		},
		{
			name:     "empty body",
			body:     "",
			want:     http.StatusBadRequest,
			wantCode: ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/interactions", tt.body)
			expectStatus(t, rec, tt.want)
			if env := decode(t, rec, nil); env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}

	if got := ts.score(t, 1, p.ID); got != 0 {
		t.Errorf("rejected interactions changed the score to %v", got)
	}
}

func TestRecordInteraction_DuplicateEventID(t *testing.T) {
	ts := setupTestServer(t)
	p := ts.createProperty(t, recommend.Property{Title: "P", Type: "house", City: "Pune", Price: 8_000_000})

	body := map[string]interface{}{
		"user_id":     4,
		"property_id": p.ID,
		"kind":        "view",
		"event_id":    "evt-0001",
	}
	expectStatus(t, ts.do(t, http.MethodPost, "/api/v1/interactions", body), http.StatusAccepted)

	rec := ts.do(t, http.MethodPost, "/api/v1/interactions", body)
	expectStatus(t, rec, http.StatusConflict)
	if env := decode(t, rec, nil); env.Error == nil || env.Error.Code != ErrCodeConflict {
		t.Errorf("error = %+v, want CONFLICT", env.Error)
	}

	if got := ts.score(t, 4, p.ID); !approxEqual(got, 1) {
		t.Errorf("score = %v, want 1 (duplicate must not apply twice)", got)
	}
}
