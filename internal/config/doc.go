// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

/*
Package config provides centralized configuration management for PropNest.

Configuration is layered with Koanf v2:

 1. Defaults from defaultConfig()
 2. An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/propnest/config.yaml)
 3. Environment variables, mapped explicitly in envMappings

Unmapped environment variables are ignored.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8080)
  - HTTP_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development, staging or production

Database:
  - DUCKDB_PATH (default: /data/propnest.duckdb)
  - DUCKDB_MAX_MEMORY, DUCKDB_THREADS, DUCKDB_QUERY_TIMEOUT
  - SEED_DEMO_DATA

Affinity store:
  - AFFINITY_STORE: memory, badger or redis
  - AFFINITY_BADGER_PATH, AFFINITY_GC_INTERVAL, AFFINITY_GC_DISCARD_RATIO
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB

Result cache:
  - CACHE_BACKEND: memory, redis or none
  - CACHE_TTL

Event bus:
  - EVENTS_BACKEND: none, nats or kafka
  - EVENTS_TOPIC, NATS_URL, KAFKA_BROKERS, KAFKA_GROUP_ID, INSTANCE_ID

Recommendation engine:
  - RECOMMEND_VIEW_DELTA, RECOMMEND_SAVE_DELTA, RECOMMEND_UNSAVE_DELTA
  - RECOMMEND_PROPAGATION_FACTOR, RECOMMEND_PROPAGATION_MAX_SIMILAR,
    RECOMMEND_PROPAGATION_DEPTH
  - RECOMMEND_MAX_PER_TYPE, RECOMMEND_MAX_PER_PRICE_BUCKET, RECOMMEND_MAX_PER_CITY
  - RECOMMEND_REBUILD_ON_STARTUP, RECOMMEND_DECAY_INTERVAL, RECOMMEND_DECAY_FACTOR

Security and logging:
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS, TRUSTED_PROXIES (comma-separated)
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}

Validation errors name the environment variable to fix.
*/
package config
