// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package reranking

import (
	"context"
	"strings"

	"github.com/tomtom215/propnest/internal/recommend"
)

// maxRerankSize limits slice allocations; k is also bounded by len(items).
const maxRerankSize = 10000

// DiversityCap enforces per-type, per-price-bucket and per-city caps on a
// sorted recommendation list, then backfills with skipped candidates.
type DiversityCap struct {
	maxPerType   int
	maxPerBucket int
	maxPerCity   int
}

// NewDiversityCap creates a reranker from the configured caps. Caps below
// one are raised to one.
func NewDiversityCap(cfg recommend.DiversityConfig) *DiversityCap {
	return &DiversityCap{
		maxPerType:   atLeastOne(cfg.MaxPerType),
		maxPerBucket: atLeastOne(cfg.MaxPerPriceBucket),
		maxPerCity:   atLeastOne(cfg.MaxPerCity),
	}
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// Name returns the reranker identifier.
func (d *DiversityCap) Name() string {
	return "diversity_cap"
}

// categoryCounts tracks how many admitted items fall in each category.
type categoryCounts struct {
	types   map[recommend.PropertyType]int
	buckets map[string]int
	cities  map[string]int
}

func newCategoryCounts() *categoryCounts {
	return &categoryCounts{
		types:   make(map[recommend.PropertyType]int),
		buckets: make(map[string]int),
		cities:  make(map[string]int),
	}
}

func (c *categoryCounts) add(p *recommend.Property) {
	c.types[p.Type]++
	c.buckets[recommend.PriceBucket(p.Price)]++
	c.cities[cityKey(p.City)]++
}

func cityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// fits reports whether admitting p keeps every category within its cap.
func (d *DiversityCap) fits(c *categoryCounts, p *recommend.Property) bool {
	return c.types[p.Type] < d.maxPerType &&
		c.buckets[recommend.PriceBucket(p.Price)] < d.maxPerBucket &&
		c.cities[cityKey(p.City)] < d.maxPerCity
}

// Rerank returns at most k items. Items must already be sorted by score.
func (d *DiversityCap) Rerank(_ context.Context, items []recommend.ScoredProperty, k int) []recommend.ScoredProperty {
	if len(items) == 0 || k <= 0 {
		return items
	}

	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > len(items) {
		k = len(items)
	}

	selected := make([]recommend.ScoredProperty, 0, k)
	admitted := make([]bool, len(items))
	counts := newCategoryCounts()

	// Capped pass. The first candidate is admitted unconditionally.
	for i := range items {
		if len(selected) == k {
			break
		}
		p := &items[i].Property
		if i > 0 && !d.fits(counts, p) {
			continue
		}
		counts.add(p)
		admitted[i] = true
		selected = append(selected, items[i])
	}

	// Backfill in original order without caps.
	for i := range items {
		if len(selected) == k {
			break
		}
		if admitted[i] {
			continue
		}
		admitted[i] = true
		selected = append(selected, items[i])
	}

	return selected
}

// Ensure DiversityCap implements the interface.
var _ recommend.Reranker = (*DiversityCap)(nil)
