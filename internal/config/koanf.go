// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/propnest/config.yaml",
	"/etc/propnest/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/propnest.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,    // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true, // DuckDB default
			QueryTimeout:           10 * time.Second,
		},
		Store: StoreConfig{
			Backend:        "memory",
			Shards:         32,
			BadgerPath:     "/data/affinity",
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
			RedisPrefix:    "propnest:affinity:",
		},
		Redis: RedisConfig{
			PoolSize: 10,
		},
		Cache: CacheConfig{
			Backend:     "memory",
			TTL:         5 * time.Minute,
			RedisPrefix: "propnest:cache:",
		},
		Events: EventsConfig{
			Backend:          "none",
			Topic:            "propnest.interactions",
			NATSURL:          "nats://127.0.0.1:4222",
			NATSEmbeddedPort: 4222,
			PublishTimeout:   5 * time.Second,
			FailureThreshold: 5,
		},
		Recommend: RecommendConfig{
			ViewDelta:             1,
			SaveDelta:             5,
			UnsaveDelta:           -5,
			PropagationFactor:     0.5,
			PropagationMaxSimilar: 5,
			PropagationDepth:      1,
			ViewWeight:            1,
			SaveWeight:            3,
			MaxPerType:            3,
			MaxPerPriceBucket:     3,
			MaxPerCity:            4,
			DiversityEnabled:      true,
			DefaultLimit:          10,
			MaxLimit:              100,
			RebuildOnStartup:      true,
			DecayInterval:         0,
			DecayFactor:           0.95,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
			TrustedProxies:  []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// HTTP_PORT -> server.port, AFFINITY_STORE -> store.backend
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
	"events.kafka_brokers",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Database mappings
	"duckdb_path":          "database.path",
	"duckdb_max_memory":    "database.max_memory",
	"duckdb_threads":       "database.threads",
	"duckdb_query_timeout": "database.query_timeout",
	"seed_demo_data":       "database.seed_demo_data",

	// Affinity store mappings
	"affinity_store":              "store.backend",
	"affinity_shards":             "store.shards",
	"affinity_badger_path":        "store.badger_path",
	"affinity_badger_in_memory":   "store.badger_in_memory",
	"affinity_badger_sync_writes": "store.badger_sync_writes",
	"affinity_gc_interval":        "store.gc_interval",
	"affinity_gc_discard_ratio":   "store.gc_discard_ratio",
	"affinity_redis_prefix":       "store.redis_prefix",

	// Redis mappings
	"redis_addr":      "redis.addr",
	"redis_password":  "redis.password",
	"redis_db":        "redis.db",
	"redis_pool_size": "redis.pool_size",

	// Cache mappings
	"cache_backend":      "cache.backend",
	"cache_ttl":          "cache.ttl",
	"cache_redis_prefix": "cache.redis_prefix",

	// Event bus mappings
	"events_backend":           "events.backend",
	"events_topic":             "events.topic",
	"nats_url":                 "events.nats_url",
	"nats_embedded":            "events.nats_embedded",
	"nats_embedded_port":       "events.nats_embedded_port",
	"kafka_brokers":            "events.kafka_brokers",
	"kafka_group_id":           "events.kafka_group_id",
	"instance_id":              "events.instance_id",
	"events_publish_timeout":   "events.publish_timeout",
	"events_failure_threshold": "events.failure_threshold",

	// Recommendation engine mappings
	"recommend_view_delta":              "recommend.view_delta",
	"recommend_save_delta":              "recommend.save_delta",
	"recommend_unsave_delta":            "recommend.unsave_delta",
	"recommend_propagation_factor":      "recommend.propagation_factor",
	"recommend_propagation_max_similar": "recommend.propagation_max_similar",
	"recommend_propagation_depth":       "recommend.propagation_depth",
	"recommend_view_weight":             "recommend.view_weight",
	"recommend_save_weight":             "recommend.save_weight",
	"recommend_max_per_type":            "recommend.max_per_type",
	"recommend_max_per_price_bucket":    "recommend.max_per_price_bucket",
	"recommend_max_per_city":            "recommend.max_per_city",
	"recommend_diversity_enabled":       "recommend.diversity_enabled",
	"recommend_default_limit":           "recommend.default_limit",
	"recommend_max_limit":               "recommend.max_limit",
	"recommend_rebuild_on_startup":      "recommend.rebuild_on_startup",
	"recommend_decay_interval":          "recommend.decay_interval",
	"recommend_decay_factor":            "recommend.decay_factor",

	// Security mappings
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - AFFINITY_STORE -> store.backend
//   - KAFKA_BROKERS -> events.kafka_brokers
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
