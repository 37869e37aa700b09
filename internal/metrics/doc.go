// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and
exposed on the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type

Recommendation Metrics:
  - recommend_interactions_total: Interactions applied (counter)
    Labels: kind (view, save, unsave)
  - recommend_propagation_fanout: Similar properties updated per interaction (histogram)
  - recommend_requests_total: Recommendation requests (counter)
    Labels: mode, source (computed, cache, fallback)
  - recommend_duration_seconds: Recommendation latency (histogram)
  - recommend_errors_total: Engine errors (counter)
    Labels: operation, backend
  - recommend_maintenance_runs_total: Rebuild, decay and GC runs (counter)

Cache Metrics:
  - cache_hits_total, cache_misses_total (counter)
    Labels: cache_type (memory, redis)

Event Bus Metrics:
  - events_published_total, events_consumed_total (counter)
    Labels: backend
  - events_failed_total (counter)
    Labels: backend, stage

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total, circuit_breaker_consecutive_failures,
    circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	err := db.QueryRowContext(ctx, query).Scan(&p.ID)
	metrics.RecordDBQuery("select", "properties", time.Since(start), err)

The recommendation engine reports through RecommendObserver, which
implements recommend.Observer:

	engine.SetObserver(metrics.NewRecommendObserver(store.Name(), "memory"))

# Thread Safety

All metric operations are thread-safe and can be called concurrently.
*/
package metrics
