// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

// Package reranking implements post-processing of scored recommendation
// lists.
//
// Rerankers run after the engine has scored and sorted candidates:
//
//	Candidates -> ScoreCandidate -> SortScored -> Rerankers -> Final list
//	              (relevance)                     (diversity)
//
// # Diversity Cap
//
// DiversityCap keeps a result from being dominated by one kind of listing.
// It walks the sorted candidates and admits each one unless doing so would
// exceed a per-category cap:
//
//   - at most MaxPerType properties of the same property type (default 3)
//   - at most MaxPerPriceBucket properties in the same price bucket (default 3)
//   - at most MaxPerCity properties from the same city (default 4)
//
// The first candidate is always admitted and seeds the counters. Candidates
// that would exceed a cap are skipped, not treated as the end of the list.
// If fewer than k were admitted, the skipped candidates backfill the result
// in their original order with caps no longer enforced.
//
// # Interface
//
// All rerankers implement the recommend.Reranker interface:
//
//	type Reranker interface {
//	    Name() string
//	    Rerank(ctx context.Context, items []ScoredProperty, k int) []ScoredProperty
//	}
//
// # Thread Safety
//
// Rerankers are stateless after construction and safe for concurrent use.
package reranking
