// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

/*
Package cache provides the recommendation response cache.

Two stores implement recommend.ResultCache:

  - Memory: a thread-safe in-process map with TTL expiry, lazy expiration on
    Get and a background cleanup loop.
  - RedisStore: entries in a shared Redis under a key prefix, with TTL
    handled by Redis. Used when several API instances must see each other's
    invalidations.

Values are opaque byte slices; the engine stores JSON-encoded responses.

# Invalidation

The engine keys responses as rec:<user_id>:<limit>:<mode> and drops every
entry of a user with DeletePrefix("rec:<user_id>:") after each recorded
interaction. Clear drops everything and runs after rebuild and decay.

# Statistics

Memory tracks hits, misses, evictions and key count. GetStats returns a copy
and HitRate a percentage, for the status endpoint and tests.

# Example

	c := cache.NewMemory(5 * time.Minute)
	defer c.Close()

	engine.SetCache(c)
*/
package cache
