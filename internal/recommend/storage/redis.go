// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/propnest/internal/recommend"
)

// applyScript increments one member and floors the result at zero in a
// single server-side step. The score is returned as a string because Lua
// numbers are truncated to integers in replies.
var applyScript = redis.NewScript(`
local v = tonumber(redis.call('ZINCRBY', KEYS[1], ARGV[1], ARGV[2]))
if v < 0 then
  redis.call('ZADD', KEYS[1], 0, ARGV[2])
  v = 0
end
return tostring(v)
`)

// decayScript multiplies every member of one sorted set by ARGV[1].
var decayScript = redis.NewScript(`
local m = redis.call('ZRANGE', KEYS[1], 0, -1, 'WITHSCORES')
for i = 1, #m, 2 do
  local v = tonumber(m[i + 1]) * tonumber(ARGV[1])
  if v < 0 then v = 0 end
  redis.call('ZADD', KEYS[1], tostring(v), m[i])
end
return #m / 2
`)

// scanCount is the COUNT hint for SCAN iterations.
const scanCount = 500

// RedisStore is an AffinityStore keeping one sorted set per user.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	logger zerolog.Logger
}

// NewRedisStore creates a store on an existing client. keyPrefix namespaces
// the keys; empty uses "affinity:".
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRedisStore(client redis.UniversalClient, keyPrefix string, logger zerolog.Logger) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = affinityKeyPrefix
	}
	return &RedisStore{
		client: client,
		prefix: keyPrefix,
		logger: logger.With().Str("component", "affinity_store").Str("backend", "redis").Logger(),
	}
}

// Name returns the backend name.
func (s *RedisStore) Name() string {
	return "redis"
}

func (s *RedisStore) userKey(userID int64) string {
	return s.prefix + strconv.FormatInt(userID, 10)
}

func member(propertyID int64) string {
	return strconv.FormatInt(propertyID, 10)
}

// Apply adds delta to the score, floors it at zero and returns the result.
func (s *RedisStore) Apply(ctx context.Context, userID, propertyID int64, delta float64) (float64, error) {
	raw, err := applyScript.Run(ctx, s.client,
		[]string{s.userKey(userID)},
		strconv.FormatFloat(delta, 'f', -1, 64), member(propertyID),
	).Text()
	if err != nil {
		return 0, fmt.Errorf("apply affinity delta: %w", err)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse affinity score %q: %w", raw, err)
	}
	return v, nil
}

// Get returns the score, or zero when absent.
func (s *RedisStore) Get(ctx context.Context, userID, propertyID int64) (float64, error) {
	v, err := s.client.ZScore(ctx, s.userKey(userID), member(propertyID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get affinity: %w", err)
	}
	return v, nil
}

// Top returns the user's highest scores, score descending then property ID
// ascending. Redis orders equal scores by member bytes, so ties are
// re-sorted numerically here.
func (s *RedisStore) Top(ctx context.Context, userID int64, limit int) ([]recommend.AffinityScore, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list user affinity: %w", err)
	}

	out := make([]recommend.AffinityScore, 0, len(zs))
	for _, z := range zs {
		m, ok := z.Member.(string)
		if !ok {
			continue
		}
		propertyID, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			s.logger.Warn().Str("member", m).Msg("skipping malformed affinity member")
			continue
		}
		out = append(out, recommend.AffinityScore{UserID: userID, PropertyID: propertyID, Score: z.Score})
	}

	sortScores(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// scan calls fn for every user key.
func (s *RedisStore) scan(ctx context.Context, fn func(key string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanCount).Result()
		if err != nil {
			return fmt.Errorf("scan affinity keys: %w", err)
		}
		for _, key := range keys {
			// The glob also matches longer prefixes sharing ours.
			if _, err := strconv.ParseInt(strings.TrimPrefix(key, s.prefix), 10, 64); err != nil {
				continue
			}
			if err := fn(key); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Decay multiplies every score by factor, one user set at a time.
func (s *RedisStore) Decay(ctx context.Context, factor float64) (int, error) {
	arg := strconv.FormatFloat(factor, 'f', -1, 64)
	decayed := 0
	err := s.scan(ctx, func(key string) error {
		n, err := decayScript.Run(ctx, s.client, []string{key}, arg).Int()
		if err != nil {
			return fmt.Errorf("decay %s: %w", key, err)
		}
		decayed += n
		return nil
	})
	return decayed, err
}

// Replace overwrites the store with entries. Each user set is rewritten in
// one MULTI/EXEC, then sets of users absent from entries are unlinked.
func (s *RedisStore) Replace(ctx context.Context, entries []recommend.AffinityScore) error {
	var existing []string
	if err := s.scan(ctx, func(key string) error {
		existing = append(existing, key)
		return nil
	}); err != nil {
		return err
	}

	byUser := make(map[string][]redis.Z)
	for _, e := range entries {
		key := s.userKey(e.UserID)
		byUser[key] = append(byUser[key], redis.Z{Score: floor(e.Score), Member: member(e.PropertyID)})
	}

	for key, members := range byUser {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZAdd(ctx, key, members...)
			return nil
		})
		if err != nil {
			return fmt.Errorf("replace %s: %w", key, err)
		}
	}

	for _, key := range existing {
		if _, ok := byUser[key]; ok {
			continue
		}
		if err := s.client.Unlink(ctx, key).Err(); err != nil {
			return fmt.Errorf("unlink %s: %w", key, err)
		}
	}
	return nil
}

// Shared is true: every instance pointed at the server reads the same sets.
func (s *RedisStore) Shared() bool {
	return true
}

var _ recommend.AffinityStore = (*RedisStore)(nil)
