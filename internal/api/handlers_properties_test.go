// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/propnest/internal/recommend"
)

func TestPropertyCRUD(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/properties", map[string]interface{}{
		"title":     "Baner 2BHK",
		"type":      "Apartment",
		"city":      "Pune",
		"price":     3000000,
		"area":      950,
		"bedrooms":  2,
		"amenities": []string{"gym", "swimming_pool"},
		"featured":  true,
	})
	expectStatus(t, rec, http.StatusCreated)

	var created recommend.Property
	env := decode(t, rec, &created)
	if env.Status != "success" || created.ID == 0 {
		t.Fatalf("unexpected create response: %+v %+v", env, created)
	}
	if created.Type != recommend.TypeApartment {
		t.Errorf("Type = %q, want normalized apartment", created.Type)
	}

	path := fmt.Sprintf("/api/v1/properties/%d", created.ID)

	rec = ts.do(t, http.MethodGet, path, nil)
	expectStatus(t, rec, http.StatusOK)
	var got recommend.Property
	decode(t, rec, &got)
	if got.Title != "Baner 2BHK" || len(got.Amenities) != 2 || got.Bedrooms == nil || *got.Bedrooms != 2 {
		t.Errorf("GET returned %+v", got)
	}

	rec = ts.do(t, http.MethodPut, path, map[string]interface{}{
		"title": "Baner 2BHK (reduced)",
		"type":  "apartment",
		"city":  "Pune",
		"price": 2800000,
		"area":  950,
	})
	expectStatus(t, rec, http.StatusOK)
	var updated recommend.Property
	decode(t, rec, &updated)
	if updated.Price != 2800000 || updated.Featured {
		t.Errorf("PUT returned %+v", updated)
	}

	rec = ts.do(t, http.MethodDelete, path, nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = ts.do(t, http.MethodGet, path, nil)
	expectStatus(t, rec, http.StatusNotFound)
	if env := decode(t, rec, nil); env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}

	rec = ts.do(t, http.MethodDelete, path, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestCreateProperty_Validation(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name      string
		body      interface{}
		wantCode  string
		wantField string
	}{
		{
			name:      "missing title",
			body:      map[string]interface{}{"type": "villa", "city": "Goa", "price": 1},
			wantCode:  "VALIDATION_ERROR",
			wantField: "title",
		},
		{
			name:      "negative price",
			body:      map[string]interface{}{"title": "x", "type": "villa", "city": "Goa", "price": -1},
			wantCode:  "VALIDATION_ERROR",
			wantField: "price",
		},
		{
			name:      "zero price",
			body:      map[string]interface{}{"title": "x", "type": "villa", "city": "Goa", "price": 0, "area": 100},
			wantCode:  "VALIDATION_ERROR",
			wantField: "price",
		},
		{
			name:      "missing price",
			body:      map[string]interface{}{"title": "x", "type": "villa", "city": "Goa"},
			wantCode:  "VALIDATION_ERROR",
			wantField: "price",
		},
		{
			name:      "zero area",
			body:      map[string]interface{}{"title": "x", "type": "villa", "city": "Goa", "price": 1, "area": 0},
			wantCode:  "VALIDATION_ERROR",
			wantField: "area",
		},
		{
			name:      "bad amenity",
			body:      map[string]interface{}{"title": "x", "type": "villa", "city": "Goa", "price": 1, "amenities": []string{"pool<script>"}},
			wantCode:  "VALIDATION_ERROR",
			wantField: "amenities[0]",
		},
		{
			name:     "unknown field",
			body:     `{"title":"x","type":"villa","city":"Goa","colour":"red"}`,
			wantCode: ErrCodeInvalidJSON,
		},
		{
			name:     "malformed json",
			body:     `{"title":`,
			wantCode: ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/properties", tt.body)
			expectStatus(t, rec, http.StatusBadRequest)

			env := decode(t, rec, nil)
			if env.Status != "error" || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Fatalf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
			if tt.wantField == "" {
				return
			}
			for _, d := range env.Error.Details {
				if d.Field == tt.wantField {
					return
				}
			}
			t.Errorf("details %+v do not name field %q", env.Error.Details, tt.wantField)
		})
	}
}

func TestSearchProperties(t *testing.T) {
	ts := setupTestServer(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []recommend.Property{
		{Title: "Pune A", Type: "apartment", City: "Pune", Price: 3000000, Area: 900, Bedrooms: intPtr(2)},
		{Title: "Pune B", Type: "apartment", City: "Pune", Price: 5000000, Area: 1200, Bedrooms: intPtr(3)},
		{Title: "Pune C", Type: "villa", City: "Pune", Price: 9000000, Area: 2500, Bedrooms: intPtr(4)},
		{Title: "Mumbai A", Type: "apartment", City: "Mumbai", Price: 12000000, Area: 800, Bedrooms: intPtr(2)},
	} {
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		ts.createProperty(t, p)
	}

	tests := []struct {
		name       string
		query      string
		wantTitles []string
		wantTotal  int64
		wantMore   bool
	}{
		{"all newest first", "", []string{"Mumbai A", "Pune C", "Pune B", "Pune A"}, 4, false},
		{"city case-insensitive", "?city=pune", []string{"Pune C", "Pune B", "Pune A"}, 3, false},
		{"type and price range", "?type=apartment&min_price=2500000&max_price=6000000", []string{"Pune B", "Pune A"}, 2, false},
		{"min bedrooms", "?min_bedrooms=3", []string{"Pune C", "Pune B"}, 2, false},
		{"paged", "?limit=2&offset=1", []string{"Pune C", "Pune B"}, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/v1/properties"+tt.query, nil)
			expectStatus(t, rec, http.StatusOK)

			var props []recommend.Property
			env := decode(t, rec, &props)

			titles := make([]string, len(props))
			for i, p := range props {
				titles[i] = p.Title
			}
			if strings.Join(titles, ",") != strings.Join(tt.wantTitles, ",") {
				t.Errorf("titles = %v, want %v", titles, tt.wantTitles)
			}
			page := env.Metadata.Pagination
			if page == nil || page.Total != tt.wantTotal || page.HasMore != tt.wantMore {
				t.Errorf("pagination = %+v, want total %d has_more %v", page, tt.wantTotal, tt.wantMore)
			}
		})
	}
}

func TestSearchProperties_BadParams(t *testing.T) {
	ts := setupTestServer(t)

	for _, query := range []string{
		"?min_price=cheap",
		"?limit=0",
		"?limit=500",
		"?featured=maybe",
		"?min_price=10&max_price=5",
		"?amenity=%3Cscript%3E",
	} {
		t.Run(query, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/v1/properties"+query, nil)
			expectStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestGetFeaturedProperties(t *testing.T) {
	ts := setupTestServer(t)

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		ts.createProperty(t, recommend.Property{
			Title:     fmt.Sprintf("Featured %d", i),
			Type:      "villa",
			City:      "Goa",
			Price:     1000000,
			Featured:  i != 2,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	rec := ts.do(t, http.MethodGet, "/api/v1/properties/featured?limit=2", nil)
	expectStatus(t, rec, http.StatusOK)

	var props []recommend.Property
	decode(t, rec, &props)
	if len(props) != 2 || props[0].Title != "Featured 3" || props[1].Title != "Featured 1" {
		t.Errorf("featured = %+v, want Featured 3, Featured 1", props)
	}
}

func TestGetSimilarProperties(t *testing.T) {
	ts := setupTestServer(t)

	target := ts.createProperty(t, recommend.Property{Title: "T", Type: "apartment", City: "Pune", Price: 3000000})
	near := ts.createProperty(t, recommend.Property{Title: "Near", Type: "apartment", City: "Pune", Price: 3200000})
	ts.createProperty(t, recommend.Property{Title: "Villa", Type: "villa", City: "Pune", Price: 3000000})
	ts.createProperty(t, recommend.Property{Title: "Far", Type: "apartment", City: "Pune", Price: 9000000})

	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/properties/%d/similar", target.ID), nil)
	expectStatus(t, rec, http.StatusOK)

	var similar []recommend.Property
	decode(t, rec, &similar)
	if len(similar) != 1 || similar[0].ID != near.ID {
		t.Errorf("similar = %+v, want only %d", similar, near.ID)
	}

	expectStatus(t, ts.do(t, http.MethodGet, "/api/v1/properties/999/similar", nil), http.StatusNotFound)
	expectStatus(t, ts.do(t, http.MethodGet, "/api/v1/properties/abc/similar", nil), http.StatusBadRequest)
}

func TestStoreUnavailable(t *testing.T) {
	ts := setupTestServer(t)
	p := ts.createProperty(t, recommend.Property{Title: "T", Type: "plot", City: "Nashik", Price: 100})

	if err := ts.db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/properties/%d", p.ID), nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("503 response should carry Retry-After")
	}
	if env := decode(t, rec, nil); env.Error == nil || env.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("error = %+v", env.Error)
	}
}
