// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/propnest/internal/recommend"
)

// DefaultRedisPrefix namespaces cache keys in a shared Redis.
const DefaultRedisPrefix = "propnest:cache:"

const redisScanCount = 500

// RedisStore is a ResultCache kept in Redis. Errors are logged and treated
// as misses so a Redis outage only costs recomputation.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a cache on an existing client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Str("backend", "redis").Logger(),
	}
}

// Name returns the backend name used in metrics labels.
func (s *RedisStore) Name() string {
	return "redis"
}

// Get returns the value for key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return nil, false
	}
	return data, true
}

// Set stores value under key. A non-positive ttl uses the default.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// DeletePrefix removes every entry whose key starts with prefix.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) {
	if err := s.unlinkMatching(ctx, s.prefix+prefix+"*"); err != nil {
		s.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
	}
}

// Clear removes every entry under the store prefix.
func (s *RedisStore) Clear(ctx context.Context) {
	if err := s.unlinkMatching(ctx, s.prefix+"*"); err != nil {
		s.logger.Warn().Err(err).Msg("cache clear failed")
	}
}

func (s *RedisStore) unlinkMatching(ctx context.Context, pattern string) error {
	iter := s.client.Scan(ctx, 0, pattern, redisScanCount).Iterator()
	batch := make([]string, 0, redisScanCount)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == redisScanCount {
			if err := s.client.Unlink(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.client.Unlink(ctx, batch...).Err()
	}
	return nil
}

var _ recommend.ResultCache = (*RedisStore)(nil)
