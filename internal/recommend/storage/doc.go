// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

// Package storage provides AffinityStore implementations for the
// recommendation engine.
//
// Three backends are available, selected by store.backend:
//
//   - memory: a sharded in-process map. Scores are lost on restart and are
//     rebuilt from the interaction log at startup.
//   - badger: an embedded badger/v4 key-value store on local disk.
//   - redis: one sorted set per user in a shared Redis, so several API
//     instances see the same scores.
//
// # Atomic Updates
//
// Every backend implements Apply as a single increment-then-floor step for
// one (user, property) key:
//
//	memory  one mutex per shard, shard = FNV-1a(user, property) % shards
//	badger  read-modify-write transaction, retried on badger.ErrConflict
//	redis   Lua script running ZINCRBY and the floor server-side
//
// Reads never block writers for longer than one key update.
//
// # Key Layout
//
//	badger  affinity:<user_id>:<property_id> -> {"score": 1.5, "updated_at": ...}
//	redis   affinity:<user_id> (ZSET member = property_id, score = affinity)
//
// # Usage Example
//
//	store, err := storage.NewBadgerStore(storage.BadgerConfig{Path: "/data/affinity"}, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	engine.SetStores(db, db, store)
package storage
