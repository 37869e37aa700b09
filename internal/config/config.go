// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Infrastructure:
//     - Server: HTTP server configuration (port, host, timeouts)
//     - Database: DuckDB property catalog and interaction log
//     - Store: Affinity score backend (memory, badger, redis)
//     - Redis: Shared Redis connection used by the redis store and cache
//     - Cache: Recommendation result cache
//     - Events: Interaction event bus (nats, kafka)
//
//  2. Engine:
//     - Recommend: Deltas, propagation, diversity caps and maintenance
//
//  3. API & Observability:
//     - Security: Rate limiting and CORS
//     - Logging: Log levels and output formats
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Store     StoreConfig     `koanf:"store"`
	Redis     RedisConfig     `koanf:"redis"`
	Cache     CacheConfig     `koanf:"cache"`
	Events    EventsConfig    `koanf:"events"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path, ":memory:" for an ephemeral catalog
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
//   - DUCKDB_THREADS: Worker threads (default: 0 = NumCPU)
//   - DUCKDB_QUERY_TIMEOUT: Per-query timeout (default: 10s)
//   - SEED_DEMO_DATA: Insert a demo catalog when the properties table is empty
type DatabaseConfig struct {
	Path                   string        `koanf:"path"`
	MaxMemory              string        `koanf:"max_memory"`
	Threads                int           `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool          `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
	QueryTimeout           time.Duration `koanf:"query_timeout"`
	SkipIndexes            bool          `koanf:"skip_indexes"` // Skip index creation (for fast test setup)
	SeedDemoData           bool          `koanf:"seed_demo_data"`
}

// StoreConfig selects and tunes the affinity score backend.
//
// Environment Variables:
//   - AFFINITY_STORE: memory, badger or redis (default: memory)
//   - AFFINITY_BADGER_PATH: Badger directory (default: /data/affinity)
//   - AFFINITY_GC_INTERVAL: Badger value log GC interval (default: 10m)
type StoreConfig struct {
	Backend          string        `koanf:"backend"`
	Shards           int           `koanf:"shards"`
	BadgerPath       string        `koanf:"badger_path"`
	BadgerInMemory   bool          `koanf:"badger_in_memory"`
	BadgerSyncWrites bool          `koanf:"badger_sync_writes"`
	GCInterval       time.Duration `koanf:"gc_interval"`
	GCDiscardRatio   float64       `koanf:"gc_discard_ratio"`
	RedisPrefix      string        `koanf:"redis_prefix"`
}

// RedisConfig holds the shared Redis connection settings.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	PoolSize int    `koanf:"pool_size"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// CacheConfig holds recommendation result cache settings.
//
// Environment Variables:
//   - CACHE_BACKEND: memory, redis or none (default: memory)
//   - CACHE_TTL: Entry lifetime (default: 5m)
type CacheConfig struct {
	Backend     string        `koanf:"backend"`
	TTL         time.Duration `koanf:"ttl"`
	RedisPrefix string        `koanf:"redis_prefix"`
}

// Enabled reports whether result caching is on.
func (c CacheConfig) Enabled() bool {
	return c.Backend != "none"
}

// EventsConfig holds interaction event bus settings.
//
// Environment Variables:
//   - EVENTS_BACKEND: none, nats or kafka (default: none)
//   - EVENTS_TOPIC: Topic or subject name (default: propnest.interactions)
//   - NATS_URL: NATS server URL (nats backend)
//   - NATS_EMBEDDED: Run an in-process NATS server and connect to it (single-node deployments)
//   - NATS_EMBEDDED_PORT: Listen port of the embedded server (default: 4222, -1 = random)
//   - KAFKA_BROKERS: Comma-separated broker list (kafka backend)
//   - KAFKA_GROUP_ID: Consumer group (default: instance ID, so every instance sees every event)
//   - INSTANCE_ID: Identifier stamped on published events (default: random UUID)
type EventsConfig struct {
	Backend          string        `koanf:"backend"`
	Topic            string        `koanf:"topic"`
	NATSURL          string        `koanf:"nats_url"`
	NATSEmbedded     bool          `koanf:"nats_embedded"`
	NATSEmbeddedPort int           `koanf:"nats_embedded_port"`
	KafkaBrokers     []string      `koanf:"kafka_brokers"`
	KafkaGroupID     string        `koanf:"kafka_group_id"`
	InstanceID       string        `koanf:"instance_id"`
	PublishTimeout   time.Duration `koanf:"publish_timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// Enabled reports whether an event bus is configured.
func (e EventsConfig) Enabled() bool {
	return e.Backend != "" && e.Backend != "none"
}

// RecommendConfig holds recommendation engine settings. Scoring weights are
// not configurable and keep the engine defaults.
type RecommendConfig struct {
	ViewDelta   float64 `koanf:"view_delta"`
	SaveDelta   float64 `koanf:"save_delta"`
	UnsaveDelta float64 `koanf:"unsave_delta"`

	PropagationFactor     float64 `koanf:"propagation_factor"`
	PropagationMaxSimilar int     `koanf:"propagation_max_similar"`
	PropagationDepth      int     `koanf:"propagation_depth"`

	ViewWeight float64 `koanf:"view_weight"`
	SaveWeight float64 `koanf:"save_weight"`

	MaxPerType        int  `koanf:"max_per_type"`
	MaxPerPriceBucket int  `koanf:"max_per_price_bucket"`
	MaxPerCity        int  `koanf:"max_per_city"`
	DiversityEnabled  bool `koanf:"diversity_enabled"`

	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`

	// Maintenance
	RebuildOnStartup bool          `koanf:"rebuild_on_startup"`
	DecayInterval    time.Duration `koanf:"decay_interval"` // 0 disables periodic decay
	DecayFactor      float64       `koanf:"decay_factor"`
}

// SecurityConfig holds HTTP protection settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration using Koanf with defaults, file and environment layers.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
