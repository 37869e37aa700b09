// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import "strings"

// Price band of the similarity predicate, relative to the target price.
const (
	SimilarPriceLow  = 0.8
	SimilarPriceHigh = 1.2
)

// SimilarPriceRange returns the inclusive price band [0.8p, 1.2p].
func SimilarPriceRange(price float64) (lo, hi float64) {
	return price * SimilarPriceLow, price * SimilarPriceHigh
}

// IsSimilar reports whether other is similar to target: same type, same
// city (case-insensitive), price inside SimilarPriceRange(target.Price) and
// a different ID. A target without a positive price matches nothing.
func IsSimilar(target, other *Property) bool {
	if target == nil || other == nil || target.ID == other.ID {
		return false
	}
	if !(target.Price > 0) {
		return false
	}
	if target.Type != other.Type {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(target.City), strings.TrimSpace(other.City)) {
		return false
	}
	lo, hi := SimilarPriceRange(target.Price)
	return other.Price >= lo && other.Price <= hi
}

// FindSimilar scans properties in order and returns the first maxResults
// that are similar to target. It is the in-memory form of
// PropertyStore.FindSimilarProperties.
func FindSimilar(target *Property, properties []Property, maxResults int) []Property {
	if target == nil || maxResults <= 0 {
		return nil
	}

	out := make([]Property, 0, maxResults)
	for i := range properties {
		if !IsSimilar(target, &properties[i]) {
			continue
		}
		out = append(out, properties[i])
		if len(out) == maxResults {
			break
		}
	}
	return out
}
