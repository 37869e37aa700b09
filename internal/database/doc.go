// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

// Package database provides the DuckDB-backed property catalog and
// interaction log for PropNest.
//
// # Overview
//
// This package is the data layer between the recommendation engine, the HTTP
// API and DuckDB. It implements the engine's recommend.PropertyStore and
// recommend.InteractionLog interfaces and the catalog CRUD used by the API.
//
// # Architecture
//
//   - database.go: Connection lifecycle, pool configuration, timeouts
//   - schema.go: Table, sequence and index creation
//   - filter.go: PropertyFilter and WHERE clause construction
//   - properties.go: Property CRUD, search and engine-facing reads
//   - interactions.go: Append-only interaction log and derived tables
//   - breaker.go: Circuit breaker wrapper around the engine-facing reads
//   - seed.go: Demo catalog for empty databases
//
// # Tables
//
//	properties          listing catalog, amenities stored as a JSON array
//	property_views      one row per view (user_id, property_id, viewed_at)
//	saved_properties    current saved list, primary key (user_id, property_id)
//	interaction_events  append-only log of every view, save and unsave
//
// property_views and saved_properties are maintained by AppendInteraction in
// the same transaction as the interaction_events row. The affinity rebuild
// replays interaction_events; the derived tables serve history reads.
//
// # Usage Example
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	store := database.NewBreakerStore(db)
//	engine.SetStores(store, store, affinity)
//
// # Thread Safety
//
// DB is safe for concurrent use. DuckDB serializes writers internally; the
// connection pool is sized to runtime.NumCPU().
package database
