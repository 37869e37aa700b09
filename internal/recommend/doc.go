// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

// Package recommend implements interaction-driven property recommendations.
//
// # Architecture
//
// The engine keeps a per-(user, property) affinity score that is updated
// incrementally whenever a user views, saves or unsaves a property:
//
//   - view adds 1, save adds 5, unsave subtracts 5
//   - scores are floored at zero on every write
//   - half of each delta is propagated to up to five similar properties
//     (same type, same city, price within 20%)
//
// Two read paths are served from that state:
//
//   - ModePersonalized: a content-based path. The user's viewed and saved
//     properties are folded into a PreferenceVector, every unseen property is
//     scored against it, and the ranked list is diversified by the
//     reranking.DiversityCap reranker.
//   - ModeSimple: the raw affinity scores, highest first.
//
// Both paths fall back to featured properties when the user has no history.
//
// # Collaborators
//
// The engine owns no storage. Properties and the interaction log come from a
// PropertyStore and an InteractionLog (implemented by internal/database), and
// scores live in an AffinityStore (internal/recommend/storage provides
// memory, badger and redis implementations). Store failures are returned
// wrapped in ErrStoreUnavailable; the engine does not retry.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	engine.SetStores(db, db, affinityStore)
//	engine.RegisterReranker(reranking.NewDiversityCap(cfg.Diversity))
//
//	stored, err := engine.Ingest(ctx, recommend.Interaction{
//	    UserID:     userID,
//	    PropertyID: propertyID,
//	    Kind:       recommend.InteractionView,
//	})
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID: userID,
//	    Limit:  10,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Score updates are serialized per
// (user, property) key by the AffinityStore; recommendation reads run
// concurrently with writes and may observe slightly stale scores.
//
// Rebuild replays the log into a staging table, then briefly blocks Ingest
// and RecordInteraction to catch up with the log and swap the table in.
// A response computed while the user's cache entries were invalidated is
// returned but not cached.
package recommend
