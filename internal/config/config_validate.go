// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package config

import (
	"fmt"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateStore,
		c.validateCache,
		c.validateEvents,
		c.validateRecommend,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction returns true when running with ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// validateDatabase validates DuckDB configuration
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	if c.Database.QueryTimeout < 0 {
		return fmt.Errorf("DUCKDB_QUERY_TIMEOUT must be non-negative")
	}
	return nil
}

// validStoreBackends defines the allowed affinity store backends
var validStoreBackends = map[string]bool{
	"memory": true,
	"badger": true,
	"redis":  true,
}

// validateStore validates the affinity store selection
func (c *Config) validateStore() error {
	if !validStoreBackends[c.Store.Backend] {
		return fmt.Errorf("AFFINITY_STORE must be one of: memory, badger, redis")
	}

	switch c.Store.Backend {
	case "badger":
		if c.Store.BadgerPath == "" && !c.Store.BadgerInMemory {
			return fmt.Errorf("AFFINITY_BADGER_PATH is required when AFFINITY_STORE=badger")
		}
		if c.Store.GCDiscardRatio <= 0 || c.Store.GCDiscardRatio >= 1 {
			return fmt.Errorf("AFFINITY_GC_DISCARD_RATIO must be in (0, 1)")
		}
	case "redis":
		if !c.Redis.Enabled() {
			return fmt.Errorf("REDIS_ADDR is required when AFFINITY_STORE=redis")
		}
	}
	return nil
}

// validCacheBackends defines the allowed result cache backends
var validCacheBackends = map[string]bool{
	"memory": true,
	"redis":  true,
	"none":   true,
}

// validateCache validates result cache configuration
func (c *Config) validateCache() error {
	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, redis, none")
	}
	if c.Cache.Backend == "redis" && !c.Redis.Enabled() {
		return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
	}
	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when caching is enabled")
	}
	return nil
}

// validEventBackends defines the allowed event bus backends
var validEventBackends = map[string]bool{
	"none":  true,
	"nats":  true,
	"kafka": true,
}

// validateEvents validates event bus configuration
func (c *Config) validateEvents() error {
	if !validEventBackends[c.Events.Backend] {
		return fmt.Errorf("EVENTS_BACKEND must be one of: none, nats, kafka")
	}
	if !c.Events.Enabled() {
		return nil
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when EVENTS_BACKEND=%s", c.Events.Backend)
	}

	switch c.Events.Backend {
	case "nats":
		if c.Events.NATSEmbedded {
			if c.Events.NATSEmbeddedPort < -1 || c.Events.NATSEmbeddedPort > 65535 {
				return fmt.Errorf("NATS_EMBEDDED_PORT must be between -1 and 65535")
			}
			return nil
		}
		if err := validateNATSURL(c.Events.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	case "kafka":
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_BACKEND=kafka")
		}
	}
	return nil
}

// validateRecommend validates engine and maintenance settings. The engine
// runs its own Validate on the derived config; this catches the settings
// that only exist at the application level.
func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.PropagationDepth < 0 || r.PropagationDepth > 3 {
		return fmt.Errorf("RECOMMEND_PROPAGATION_DEPTH must be between 0 and 3")
	}
	if r.DefaultLimit < 1 || r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be positive and not exceed RECOMMEND_MAX_LIMIT")
	}
	if r.DecayInterval < 0 {
		return fmt.Errorf("RECOMMEND_DECAY_INTERVAL must be non-negative")
	}
	if r.DecayInterval > 0 && (r.DecayFactor <= 0 || r.DecayFactor > 1) {
		return fmt.Errorf("RECOMMEND_DECAY_FACTOR must be in (0, 1] when decay is enabled")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateSecurity validates rate limiting configuration bounds.
func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
