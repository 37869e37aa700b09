// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import "strings"

// bucket is a half-open range [low, high) with a display label.
// A zero high marks the open-ended last bucket.
type bucket struct {
	label string
	low   float64
	high  float64
}

var priceBuckets = []bucket{
	{"0-2M", 0, 2_000_000},
	{"2M-5M", 2_000_000, 5_000_000},
	{"5M-10M", 5_000_000, 10_000_000},
	{"10M-20M", 10_000_000, 20_000_000},
	{"20M-50M", 20_000_000, 50_000_000},
	{"50M+", 50_000_000, 0},
}

var areaBuckets = []bucket{
	{"0-500", 0, 500},
	{"500-1000", 500, 1000},
	{"1000-1500", 1000, 1500},
	{"1500-2000", 1500, 2000},
	{"2000-3000", 2000, 3000},
	{"3000+", 3000, 0},
}

func bucketFor(buckets []bucket, v float64) string {
	for _, b := range buckets {
		if v >= b.low && (b.high == 0 || v < b.high) {
			return b.label
		}
	}
	// Negative or NaN values never match a range; they land in the last bucket.
	return buckets[len(buckets)-1].label
}

// PriceBucket returns the price range label for a price.
func PriceBucket(price float64) string {
	return bucketFor(priceBuckets, price)
}

// AreaBucket returns the area range label for an area.
func AreaBucket(area float64) string {
	return bucketFor(areaBuckets, area)
}

// PriceBuckets returns the price bucket labels in ascending order.
func PriceBuckets() []string {
	return bucketLabels(priceBuckets)
}

// AreaBuckets returns the area bucket labels in ascending order.
func AreaBuckets() []string {
	return bucketLabels(areaBuckets)
}

func bucketLabels(buckets []bucket) []string {
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.label
	}
	return labels
}

// PreferenceVector aggregates a user's interaction history per dimension.
// It is derived on demand and never persisted.
type PreferenceVector struct {
	UserID       int64                    `json:"user_id"`
	Types        map[PropertyType]float64 `json:"types"`
	PriceBuckets map[string]float64       `json:"price_buckets"`
	Cities       map[string]float64       `json:"cities"`
	Amenities    map[string]float64       `json:"amenities"`
	Bedrooms     map[int]float64          `json:"bedrooms"`
	Bathrooms    map[int]float64          `json:"bathrooms"`
	AreaBuckets  map[string]float64       `json:"area_buckets"`
	ViewedCount  int                      `json:"viewed_count"`
	SavedCount   int                      `json:"saved_count"`
}

// NewPreferenceVector returns an empty vector for the user.
func NewPreferenceVector(userID int64) *PreferenceVector {
	return &PreferenceVector{
		UserID:       userID,
		Types:        make(map[PropertyType]float64),
		PriceBuckets: make(map[string]float64),
		Cities:       make(map[string]float64),
		Amenities:    make(map[string]float64),
		Bedrooms:     make(map[int]float64),
		Bathrooms:    make(map[int]float64),
		AreaBuckets:  make(map[string]float64),
	}
}

// IsEmpty reports whether no property has been folded in.
func (v *PreferenceVector) IsEmpty() bool {
	return v.ViewedCount == 0 && v.SavedCount == 0
}

// Add folds one property into every dimension with the given weight.
func (v *PreferenceVector) Add(p *Property, weight float64) {
	v.Types[p.Type] += weight
	v.PriceBuckets[PriceBucket(p.Price)] += weight
	v.Cities[normalizeCity(p.City)] += weight
	for _, a := range p.Amenities {
		v.Amenities[normalizeAmenity(a)] += weight
	}
	if p.Bedrooms != nil {
		v.Bedrooms[*p.Bedrooms] += weight
	}
	if p.Bathrooms != nil {
		v.Bathrooms[*p.Bathrooms] += weight
	}
	v.AreaBuckets[AreaBucket(p.Area)] += weight
}

// BuildPreferenceVector folds viewed properties with viewWeight and saved
// properties with saveWeight. A property present in both lists contributes
// both weights.
func BuildPreferenceVector(userID int64, viewed, saved []Property, cfg PreferenceConfig) *PreferenceVector {
	v := NewPreferenceVector(userID)
	for i := range viewed {
		v.Add(&viewed[i], cfg.ViewWeight)
	}
	for i := range saved {
		v.Add(&saved[i], cfg.SaveWeight)
	}
	v.ViewedCount = len(viewed)
	v.SavedCount = len(saved)
	return v
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func normalizeAmenity(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}
