// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

/*
Package main is the entry point for the PropNest server.

PropNest serves a real-estate listing catalog and personalized property
recommendations. Every view, save and unsave moves a per-user affinity score
for the property and, at half strength, for its most similar listings.
Recommendations rank unseen listings by affinity and by how well they match
the user's aggregated preferences. Users with no history get the featured
listings instead.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("propnest")
	├── DataSupervisor ("data-layer")
	│   ├── MaintenanceService (startup rebuild, periodic decay)
	│   └── BadgerGCService (AFFINITY_STORE=badger)
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventConsumerService (EVENTS_BACKEND != none)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB catalog and interaction log, optional demo seed
 4. Circuit breaker around catalog reads (gobreaker)
 5. Affinity store: memory, badger or redis
 6. Result cache: memory, redis or none
 7. Recommendation engine with the diversity reranker
 8. Event bus: NATS (optionally embedded) or Kafka
 9. Supervisor tree and HTTP server

Shutdown runs in reverse: the tree drains the HTTP server and stops the
consumer, then the event bus, stores, caches and database are closed.

# Configuration

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Storage
	DUCKDB_PATH=/data/propnest.duckdb
	SEED_DEMO_DATA=false
	AFFINITY_STORE=memory        # memory, badger, redis
	AFFINITY_BADGER_PATH=/data/affinity
	REDIS_ADDR=                  # required for redis store or cache
	CACHE_BACKEND=memory         # memory, redis, none

	# Events
	EVENTS_BACKEND=none          # none, nats, kafka
	NATS_URL=nats://127.0.0.1:4222
	NATS_EMBEDDED=false
	KAFKA_BROKERS=localhost:9092

	# Scoring
	RECOMMEND_VIEW_DELTA=1
	RECOMMEND_SAVE_DELTA=5
	RECOMMEND_UNSAVE_DELTA=-5
	RECOMMEND_PROPAGATION_FACTOR=0.5
	RECOMMEND_DECAY_INTERVAL=0   # 0 disables periodic decay

# Signal Handling

SIGINT and SIGTERM cancel the root context. In-flight requests get
HTTP_SHUTDOWN_TIMEOUT to finish.

# Example Usage

Single node with persistent affinity scores:

	export AFFINITY_STORE=badger
	export AFFINITY_BADGER_PATH=/data/affinity
	export SEED_DEMO_DATA=true
	./propnest

Several instances sharing Redis and NATS:

	export AFFINITY_STORE=redis
	export CACHE_BACKEND=redis
	export REDIS_ADDR=redis:6379
	export EVENTS_BACKEND=nats
	export NATS_URL=nats://nats:4222
	./propnest
*/
package main
