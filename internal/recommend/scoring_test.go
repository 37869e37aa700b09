// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestScoreCandidate(t *testing.T) {
	w := DefaultConfig().Weights
	viewed := property(1, TypeApartment, "Pune", 3_000_000)
	prefs := BuildPreferenceVector(1, []Property{viewed}, nil, PreferenceConfig{ViewWeight: 1, SaveWeight: 3})

	withAddress := property(3, TypeApartment, "Pune", 3_100_000)
	withAddress.Address = "12 MG Road, Pune"

	noAmenities := property(5, TypeApartment, "Pune", 3_100_000)
	noAmenities.Amenities = nil

	tests := []struct {
		name string
		p    Property
		want float64
	}{
		// 0.25 + 0.2 + 0.2 + 0.15 + 0.1 + 0.05 + 0.05 = 1.0, normalized by 10
		{"every dimension matches", property(2, TypeApartment, "Pune", 3_100_000), 0.1},
		// address containing a preferred city adds 1 * 0.2 * 0.5
		{"address mentions preferred city", withAddress, 0.11},
		// everything but amenities matches
		{"listing without amenities", noAmenities, (0.25 + 0.2 + 0.2 + 0.2 + 0.1 + 0.05 + 0.05) / 10},
		{"unrelated listing", func() Property {
			p := property(4, TypeVilla, "Mumbai", 60_000_000)
			p.Amenities = []string{"helipad"}
			p.Bedrooms = intPtr(6)
			p.Bathrooms = intPtr(5)
			p.Area = 8000
			return p
		}(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreCandidate(&tt.p, prefs, w)
			if !approxEqual(got, tt.want) {
				t.Errorf("ScoreCandidate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreCandidate_CappedAtOne(t *testing.T) {
	w := DefaultConfig().Weights
	p := property(1, TypeApartment, "Pune", 3_000_000)

	history := make([]Property, 0, 100)
	for i := 0; i < 100; i++ {
		history = append(history, p)
	}
	prefs := BuildPreferenceVector(1, history, nil, PreferenceConfig{ViewWeight: 1, SaveWeight: 3})

	candidate := property(2, TypeApartment, "Pune", 3_000_000)
	if got := ScoreCandidate(&candidate, prefs, w); got != 1 {
		t.Errorf("ScoreCandidate() = %v, want 1", got)
	}
}

func TestExplainCandidate(t *testing.T) {
	w := DefaultConfig().Weights
	viewed := property(1, TypeApartment, "Pune", 3_000_000)
	prefs := BuildPreferenceVector(1, []Property{viewed}, nil, PreferenceConfig{ViewWeight: 1, SaveWeight: 3})

	candidate := property(2, TypeApartment, "Pune", 12_000_000)
	b := ExplainCandidate(&candidate, prefs, w)

	if !approxEqual(b.Type, 0.25) {
		t.Errorf("Type = %v, want 0.25", b.Type)
	}
	if b.Price != 0 {
		t.Errorf("Price = %v, want 0 for an unseen bucket", b.Price)
	}
	if !approxEqual(b.City, 0.2) {
		t.Errorf("City = %v, want 0.2", b.City)
	}
	sum := b.Type + b.Price + b.City + b.Address + b.Amenities + b.Bedrooms + b.Bathrooms + b.Area
	if !approxEqual(b.Raw, sum) {
		t.Errorf("Raw = %v, want sum of dimensions %v", b.Raw, sum)
	}
	if !approxEqual(b.Score, b.Raw/w.Normalization) {
		t.Errorf("Score = %v, want %v", b.Score, b.Raw/w.Normalization)
	}
}

func TestExplainCandidate_NilInputs(t *testing.T) {
	w := DefaultConfig().Weights
	if b := ExplainCandidate(nil, NewPreferenceVector(1), w); b.Score != 0 {
		t.Errorf("ExplainCandidate(nil) score = %v", b.Score)
	}
	p := property(1, TypeApartment, "Pune", 1)
	if b := ExplainCandidate(&p, nil, w); b.Score != 0 {
		t.Errorf("ExplainCandidate(prefs=nil) score = %v", b.Score)
	}
}

func TestSortScored(t *testing.T) {
	older := property(1, TypeApartment, "Pune", 1)
	newer := property(2, TypeApartment, "Pune", 1)
	sameTimeA := property(3, TypeApartment, "Pune", 1)
	sameTimeB := property(4, TypeApartment, "Pune", 1)
	sameTimeB.CreatedAt = sameTimeA.CreatedAt

	items := []ScoredProperty{
		{Property: sameTimeB, Score: 0.1},
		{Property: older, Score: 0.5},
		{Property: sameTimeA, Score: 0.1},
		{Property: newer, Score: 0.5},
	}
	SortScored(items)

	want := []int64{2, 1, 3, 4}
	for i, id := range want {
		if items[i].Property.ID != id {
			t.Errorf("SortScored()[%d].ID = %d, want %d", i, items[i].Property.ID, id)
		}
	}
}
