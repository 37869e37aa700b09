// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/propnest/internal/cache"
	"github.com/tomtom215/propnest/internal/config"
	"github.com/tomtom215/propnest/internal/database"
	"github.com/tomtom215/propnest/internal/logging"
	"github.com/tomtom215/propnest/internal/metrics"
	"github.com/tomtom215/propnest/internal/recommend"
	"github.com/tomtom215/propnest/internal/recommend/reranking"
	"github.com/tomtom215/propnest/internal/recommend/storage"
)

// RecommendComponents holds the engine and the resources main must release.
type RecommendComponents struct {
	Engine *recommend.Engine

	// Badger is set when AFFINITY_STORE=badger so main can schedule GC.
	Badger *storage.BadgerStore

	closers []func() error
}

// Close releases stores and caches, newest first.
func (c *RecommendComponents) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			logging.Error().Err(err).Msg("Error closing recommendation component")
		}
	}
	c.closers = nil
}

// initRecommend builds the affinity store, the result cache and the engine.
// props serves both the catalog and the interaction log.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, props database.Backend, logger zerolog.Logger) (*RecommendComponents, error) {
	rc := &RecommendComponents{}

	var rdb *redis.Client
	if cfg.Store.Backend == "redis" || cfg.Cache.Backend == "redis" {
		rdb = newRedisClient(&cfg.Redis)
		rc.closers = append(rc.closers, rdb.Close)
	}

	scores, err := rc.initAffinityStore(cfg, rdb, logger)
	if err != nil {
		rc.Close()
		return nil, err
	}

	resultCache := rc.initCache(cfg, rdb, logger)

	engine, err := recommend.NewEngine(buildEngineConfig(cfg), logger)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("failed to create recommendation engine: %w", err)
	}
	engine.SetStores(props, props, scores)
	engine.SetCache(resultCache)
	cacheLabel := cfg.Cache.Backend
	if resultCache == nil {
		cacheLabel = ""
	}
	engine.SetObserver(metrics.NewRecommendObserver(scores.Name(), cacheLabel))

	if cfg.Recommend.DiversityEnabled {
		engine.RegisterReranker(reranking.NewDiversityCap(recommend.DiversityConfig{
			MaxPerType:        cfg.Recommend.MaxPerType,
			MaxPerPriceBucket: cfg.Recommend.MaxPerPriceBucket,
			MaxPerCity:        cfg.Recommend.MaxPerCity,
		}))
	}

	rc.Engine = engine

	logger.Info().
		Str("affinity_store", scores.Name()).
		Str("cache", cfg.Cache.Backend).
		Bool("diversity", cfg.Recommend.DiversityEnabled).
		Int("propagation_depth", cfg.Recommend.PropagationDepth).
		Msg("Recommendation engine initialized")

	return rc, nil
}

//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (rc *RecommendComponents) initAffinityStore(cfg *config.Config, rdb *redis.Client, logger zerolog.Logger) (recommend.AffinityStore, error) {
	switch cfg.Store.Backend {
	case "badger":
		store, err := storage.NewBadgerStore(storage.BadgerConfig{
			Path:       cfg.Store.BadgerPath,
			InMemory:   cfg.Store.BadgerInMemory,
			SyncWrites: cfg.Store.BadgerSyncWrites,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger affinity store: %w", err)
		}
		rc.Badger = store
		rc.closers = append(rc.closers, store.Close)
		return store, nil

	case "redis":
		return storage.NewRedisStore(rdb, cfg.Store.RedisPrefix, logger), nil

	default:
		return storage.NewMemoryStore(cfg.Store.Shards), nil
	}
}

// initCache returns nil when CACHE_BACKEND=none.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (rc *RecommendComponents) initCache(cfg *config.Config, rdb *redis.Client, logger zerolog.Logger) recommend.ResultCache {
	switch cfg.Cache.Backend {
	case "none":
		return nil
	case "redis":
		return cache.NewRedisStore(rdb, cfg.Cache.RedisPrefix, cfg.Cache.TTL, logger)
	default:
		mem := cache.NewMemory(cfg.Cache.TTL)
		rc.closers = append(rc.closers, func() error {
			mem.Close()
			return nil
		})
		return mem
	}
}

func newRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// buildEngineConfig maps the koanf recommend and cache sections onto the
// engine configuration. Scoring weights keep their defaults.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	ec := recommend.DefaultConfig()

	ec.Deltas = recommend.DeltaConfig{
		View:   cfg.Recommend.ViewDelta,
		Save:   cfg.Recommend.SaveDelta,
		Unsave: cfg.Recommend.UnsaveDelta,
	}
	ec.Propagation = recommend.PropagationConfig{
		Factor:     cfg.Recommend.PropagationFactor,
		MaxSimilar: cfg.Recommend.PropagationMaxSimilar,
		Depth:      cfg.Recommend.PropagationDepth,
	}
	ec.Preferences = recommend.PreferenceConfig{
		ViewWeight: cfg.Recommend.ViewWeight,
		SaveWeight: cfg.Recommend.SaveWeight,
	}
	ec.Diversity = recommend.DiversityConfig{
		MaxPerType:        cfg.Recommend.MaxPerType,
		MaxPerPriceBucket: cfg.Recommend.MaxPerPriceBucket,
		MaxPerCity:        cfg.Recommend.MaxPerCity,
	}
	ec.Limits = recommend.LimitsConfig{
		DefaultLimit: cfg.Recommend.DefaultLimit,
		MaxLimit:     cfg.Recommend.MaxLimit,
	}
	ec.Cache = recommend.CacheConfig{
		Enabled: cfg.Cache.Enabled(),
		TTL:     cfg.Cache.TTL,
	}

	return ec
}
