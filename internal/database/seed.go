// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/propnest/internal/logging"
	"github.com/tomtom215/propnest/internal/recommend"
)

// demoListing is one row of the demo catalog.
type demoListing struct {
	title     string
	typ       recommend.PropertyType
	city      string
	address   string
	price     float64
	area      float64
	bedrooms  int
	bathrooms int
	amenities []string
	featured  bool
}

var demoListings = []demoListing{
	{"Riverside 2BHK", recommend.TypeApartment, "Pune", "Koregaon Park", 3_000_000, 950, 2, 2, []string{"parking", "gym", "lift"}, true},
	{"Baner Heights 2BHK", recommend.TypeApartment, "Pune", "Baner Road", 3_200_000, 1000, 2, 2, []string{"parking", "pool", "lift"}, false},
	{"Aundh Residency", recommend.TypeApartment, "Pune", "Aundh", 2_700_000, 880, 2, 1, []string{"parking", "security"}, true},
	{"Kharadi Towers 3BHK", recommend.TypeApartment, "Pune", "Kharadi", 5_400_000, 1450, 3, 3, []string{"parking", "gym", "pool", "clubhouse"}, false},
	{"Hinjewadi Studio", recommend.TypeApartment, "Pune", "Hinjewadi Phase 1", 1_800_000, 520, 1, 1, []string{"lift"}, false},
	{"Wakad Family Home", recommend.TypeHouse, "Pune", "Wakad", 7_500_000, 2100, 4, 3, []string{"garden", "parking"}, true},
	{"Lonavala Hill Villa", recommend.TypeVilla, "Pune", "Lonavala", 18_000_000, 4200, 5, 5, []string{"pool", "garden", "parking"}, false},
	{"Bandra Sea View", recommend.TypeApartment, "Mumbai", "Bandstand, Bandra West", 42_000_000, 1300, 3, 3, []string{"sea view", "gym", "parking"}, true},
	{"Andheri Compact 1BHK", recommend.TypeApartment, "Mumbai", "Andheri East", 9_500_000, 560, 1, 1, []string{"lift", "security"}, false},
	{"Powai Lakeside 2BHK", recommend.TypeApartment, "Mumbai", "Hiranandani Gardens, Powai", 21_000_000, 980, 2, 2, []string{"pool", "gym", "clubhouse"}, true},
	{"Juhu Beach Villa", recommend.TypeVilla, "Mumbai", "Juhu Tara Road", 120_000_000, 5200, 5, 6, []string{"pool", "garden", "sea view"}, true},
	{"Madh Island Villa", recommend.TypeVilla, "Mumbai", "Madh Island", 95_000_000, 4800, 4, 5, []string{"pool", "garden"}, false},
	{"Lower Parel Office Floor", recommend.TypeOffice, "Mumbai", "Senapati Bapat Marg", 65_000_000, 3500, 0, 4, []string{"parking", "lift", "power backup"}, false},
	{"Koramangala 3BHK", recommend.TypeApartment, "Bangalore", "5th Block, Koramangala", 14_000_000, 1600, 3, 3, []string{"gym", "parking", "pool"}, true},
	{"Whitefield Starter 2BHK", recommend.TypeApartment, "Bangalore", "Whitefield", 7_200_000, 1100, 2, 2, []string{"parking", "clubhouse"}, false},
	{"Indiranagar Townhouse", recommend.TypeHouse, "Bangalore", "HAL 2nd Stage, Indiranagar", 32_000_000, 2600, 4, 4, []string{"garden", "parking"}, false},
	{"Sarjapur Plot", recommend.TypePlot, "Bangalore", "Sarjapur Road", 4_500_000, 2400, 0, 0, []string{}, false},
	{"Hebbal Lake Villa", recommend.TypeVilla, "Bangalore", "Hebbal", 38_000_000, 4000, 4, 4, []string{"pool", "garden", "security"}, true},
	{"Gachibowli High Rise", recommend.TypeApartment, "Hyderabad", "Gachibowli", 9_800_000, 1500, 3, 2, []string{"gym", "pool", "parking"}, false},
	{"Jubilee Hills Bungalow", recommend.TypeHouse, "Hyderabad", "Road No. 36, Jubilee Hills", 55_000_000, 4500, 5, 5, []string{"garden", "parking", "security"}, true},
	{"HITEC City Retail Unit", recommend.TypeCommercial, "Hyderabad", "HITEC City", 12_000_000, 900, 0, 1, []string{"parking", "power backup"}, false},
	{"Kompally Plot", recommend.TypePlot, "Hyderabad", "Kompally", 3_600_000, 2000, 0, 0, []string{}, false},
}

// SeedDemoData inserts the demo catalog when the properties table is empty.
// It returns the number of listings inserted.
func (db *DB) SeedDemoData(ctx context.Context) (int, error) {
	count, err := db.CountProperties(ctx, PropertyFilter{})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logging.Debug().Int64("properties", count).Msg("Catalog not empty, skipping demo data")
		return 0, nil
	}

	logging.Info().Int("listings", len(demoListings)).Msg("Seeding database with demo catalog...")

	// Older listings first so the first rows are also the oldest.
	base := time.Now().UTC().Add(-time.Duration(len(demoListings)) * 24 * time.Hour)
	inserted := 0
	for i, l := range demoListings {
		p := &recommend.Property{
			Title:     l.title,
			Type:      l.typ,
			City:      l.city,
			Address:   l.address,
			Price:     l.price,
			Area:      l.area,
			Amenities: l.amenities,
			Featured:  l.featured,
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}
		if l.bedrooms > 0 {
			bedrooms := l.bedrooms
			p.Bedrooms = &bedrooms
		}
		if l.bathrooms > 0 {
			bathrooms := l.bathrooms
			p.Bathrooms = &bathrooms
		}
		if _, err := db.CreateProperty(ctx, p); err != nil {
			return inserted, fmt.Errorf("failed to seed %q: %w", l.title, err)
		}
		inserted++
	}

	logging.Info().Int("listings", inserted).Msg("Demo catalog seeded")
	return inserted, nil
}
