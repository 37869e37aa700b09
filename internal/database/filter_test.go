// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package database

import (
	"context"
	"testing"
)

func TestBuildPropertyWhere(t *testing.T) {
	tests := []struct {
		name     string
		filter   PropertyFilter
		wantSQL  string
		wantArgs int
	}{
		{"empty", PropertyFilter{}, "", 0},
		{"blank strings ignored", PropertyFilter{Type: "  ", City: " ", Amenity: ""}, "", 0},
		{"type lowercased", PropertyFilter{Type: "Villa"}, " WHERE type = ?", 1},
		{
			"price and featured",
			PropertyFilter{MinPrice: float64Ptr(1), MaxPrice: float64Ptr(2), Featured: boolPtr(true)},
			" WHERE price >= ? AND price <= ? AND featured = ?", 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildPropertyWhere(tt.filter)
			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %v, want %d", args, tt.wantArgs)
			}
		})
	}

	_, args := buildPropertyWhere(PropertyFilter{Type: "Villa"})
	if args[0] != "villa" {
		t.Errorf("type arg = %v, want villa", args[0])
	}
}

func TestAmenityPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pool", `%"pool"%`},
		{"swimming_pool", `%"swimming\_pool"%`},
		{"100%", `%"100\%"%`},
		{`a"b`, `%"ab"%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := amenityPattern(tt.in); got != tt.want {
				t.Errorf("amenityPattern(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizedPage(t *testing.T) {
	tests := []struct {
		name       string
		filter     PropertyFilter
		wantLimit  int
		wantOffset int
	}{
		{"defaults", PropertyFilter{}, DefaultSearchLimit, 0},
		{"capped", PropertyFilter{Limit: 1000}, MaxSearchLimit, 0},
		{"negative offset", PropertyFilter{Limit: 5, Offset: -3}, 5, 0},
		{"passthrough", PropertyFilter{Limit: 7, Offset: 14}, 7, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := tt.filter.normalizedPage()
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("normalizedPage() = (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestSeedDemoData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	n, err := db.SeedDemoData(ctx)
	if err != nil {
		t.Fatalf("SeedDemoData() error = %v", err)
	}
	if n != len(demoListings) {
		t.Errorf("seeded %d, want %d", n, len(demoListings))
	}

	again, err := db.SeedDemoData(ctx)
	if err != nil || again != 0 {
		t.Errorf("second SeedDemoData() = %d, %v; want 0, nil", again, err)
	}

	featured, err := db.GetFeaturedProperties(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(featured) != 3 {
		t.Fatalf("featured = %d, want 3", len(featured))
	}
	// Later listings are newer.
	if !featured[0].CreatedAt.After(featured[1].CreatedAt) {
		t.Errorf("featured not newest first: %v, %v", featured[0].CreatedAt, featured[1].CreatedAt)
	}
}
