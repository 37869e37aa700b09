// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/propnest/internal/recommend"
)

// DefaultShards is the shard count used when none is configured.
const DefaultShards = 32

// userScores maps property ID to score for one user.
type userScores map[int64]float64

type shard struct {
	mu    sync.RWMutex
	users map[int64]userScores
}

// MemoryStore is an in-process AffinityStore. Entries are grouped by user
// and users are sharded, so Top reads one user's entries only.
type MemoryStore struct {
	shards []*shard
}

// NewMemoryStore creates a store with n shards. n <= 0 uses DefaultShards.
func NewMemoryStore(n int) *MemoryStore {
	if n <= 0 {
		n = DefaultShards
	}
	s := &MemoryStore{shards: make([]*shard, n)}
	for i := range s.shards {
		s.shards[i] = &shard{users: make(map[int64]userScores)}
	}
	return s
}

func (s *MemoryStore) shardIndex(userID int64) int {
	return int(uint64(userID) % uint64(len(s.shards)))
}

func (s *MemoryStore) shardFor(userID int64) *shard {
	return s.shards[s.shardIndex(userID)]
}

// Name returns the backend name.
func (s *MemoryStore) Name() string {
	return "memory"
}

// Shared is false: the store lives in this process.
func (s *MemoryStore) Shared() bool {
	return false
}

// Apply adds delta to the score, floors it at zero and returns the result.
func (s *MemoryStore) Apply(_ context.Context, userID, propertyID int64, delta float64) (float64, error) {
	sh := s.shardFor(userID)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	u := sh.users[userID]
	if u == nil {
		u = make(userScores)
		sh.users[userID] = u
	}
	v := floor(u[propertyID] + delta)
	u[propertyID] = v
	return v, nil
}

// Get returns the score, or zero when absent.
func (s *MemoryStore) Get(_ context.Context, userID, propertyID int64) (float64, error) {
	sh := s.shardFor(userID)

	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.users[userID][propertyID], nil
}

// Top returns the user's highest scores, score descending then property ID
// ascending.
func (s *MemoryStore) Top(_ context.Context, userID int64, limit int) ([]recommend.AffinityScore, error) {
	sh := s.shardFor(userID)

	sh.mu.RLock()
	u := sh.users[userID]
	out := make([]recommend.AffinityScore, 0, len(u))
	for propertyID, v := range u {
		out = append(out, recommend.AffinityScore{UserID: userID, PropertyID: propertyID, Score: v})
	}
	sh.mu.RUnlock()

	sortScores(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Decay multiplies every score by factor.
func (s *MemoryStore) Decay(_ context.Context, factor float64) (int, error) {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, u := range sh.users {
			for propertyID, v := range u {
				u[propertyID] = floor(v * factor)
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n, nil
}

// Replace builds the new shard maps aside and swaps them in while holding
// every shard lock, so no reader sees a partial table.
func (s *MemoryStore) Replace(_ context.Context, entries []recommend.AffinityScore) error {
	next := make([]map[int64]userScores, len(s.shards))
	for i := range next {
		next[i] = make(map[int64]userScores)
	}
	for _, e := range entries {
		users := next[s.shardIndex(e.UserID)]
		u := users[e.UserID]
		if u == nil {
			u = make(userScores)
			users[e.UserID] = u
		}
		u[e.PropertyID] = floor(e.Score)
	}

	for _, sh := range s.shards {
		sh.mu.Lock()
	}
	for i, sh := range s.shards {
		sh.users = next[i]
	}
	for _, sh := range s.shards {
		sh.mu.Unlock()
	}
	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, u := range sh.users {
			n += len(u)
		}
		sh.mu.RUnlock()
	}
	return n
}

func floor(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func sortScores(scores []recommend.AffinityScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].PropertyID < scores[j].PropertyID
	})
}

var _ recommend.AffinityStore = (*MemoryStore)(nil)
