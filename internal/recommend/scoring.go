// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import (
	"math"
	"sort"
	"strings"
)

// ScoreBreakdown holds the weighted contribution of each dimension to a
// candidate score. Raw is their sum before normalization.
type ScoreBreakdown struct {
	Type      float64 `json:"type"`
	Price     float64 `json:"price"`
	City      float64 `json:"city"`
	Address   float64 `json:"address"`
	Amenities float64 `json:"amenities"`
	Bedrooms  float64 `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`
	Area      float64 `json:"area"`
	Raw       float64 `json:"raw"`
	Score     float64 `json:"score"`
}

// ExplainCandidate scores p against prefs and returns every dimension's
// contribution. Dimensions the vector has no weight for contribute zero.
//
//nolint:gocritic // hugeParam: weights passed by value for immutability
func ExplainCandidate(p *Property, prefs *PreferenceVector, w DimensionWeights) ScoreBreakdown {
	var b ScoreBreakdown
	if p == nil || prefs == nil {
		return b
	}

	if pw := prefs.Types[p.Type]; pw > 0 {
		b.Type = pw * w.Type
	}
	if pw := prefs.PriceBuckets[PriceBucket(p.Price)]; pw > 0 {
		b.Price = pw * w.Price
	}

	city := normalizeCity(p.City)
	if pw := prefs.Cities[city]; pw > 0 {
		b.City = pw * w.City
	}
	if addr := strings.ToLower(p.Address); addr != "" {
		// Sorted keys keep the float sum identical across calls.
		for _, prefCity := range sortedKeys(prefs.Cities) {
			pw := prefs.Cities[prefCity]
			if pw > 0 && prefCity != "" && strings.Contains(addr, prefCity) {
				b.Address += pw * w.City * w.AddressFactor
			}
		}
	}

	if len(p.Amenities) > 0 {
		var matched float64
		for _, a := range p.Amenities {
			matched += prefs.Amenities[normalizeAmenity(a)]
		}
		b.Amenities = matched / float64(len(p.Amenities)) * w.Amenities
	}

	if p.Bedrooms != nil {
		if pw := prefs.Bedrooms[*p.Bedrooms]; pw > 0 {
			b.Bedrooms = pw * w.Bedrooms
		}
	}
	if p.Bathrooms != nil {
		if pw := prefs.Bathrooms[*p.Bathrooms]; pw > 0 {
			b.Bathrooms = pw * w.Bathrooms
		}
	}
	if pw := prefs.AreaBuckets[AreaBucket(p.Area)]; pw > 0 {
		b.Area = pw * w.Area
	}

	b.Raw = b.Type + b.Price + b.City + b.Address + b.Amenities + b.Bedrooms + b.Bathrooms + b.Area
	b.Score = normalizeScore(b.Raw, w.Normalization)
	return b
}

// ScoreCandidate returns min(1, raw/normalization) for p against prefs.
//
//nolint:gocritic // hugeParam: weights passed by value for immutability
func ScoreCandidate(p *Property, prefs *PreferenceVector, w DimensionWeights) float64 {
	return ExplainCandidate(p, prefs, w).Score
}

func normalizeScore(raw, normalization float64) float64 {
	if normalization <= 0 {
		normalization = 1
	}
	return math.Min(1, raw/normalization)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
