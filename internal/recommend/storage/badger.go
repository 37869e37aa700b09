// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/propnest/internal/recommend"
)

const affinityKeyPrefix = "affinity:"

// decayBatchSize bounds the number of keys rewritten per transaction.
const decayBatchSize = 1000

// BadgerConfig configures the embedded affinity store.
type BadgerConfig struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory (tests).
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// MaxRetries bounds transaction retries on badger.ErrConflict.
	// Default: 100.
	MaxRetries int
}

// affinityValue is the stored value of one affinity entry.
type affinityValue struct {
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BadgerStore is an AffinityStore backed by badger/v4.
type BadgerStore struct {
	db         *badger.DB
	maxRetries int
	logger     zerolog.Logger
}

// NewBadgerStore opens (or creates) the store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStore(cfg BadgerConfig, logger zerolog.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.SyncWrites = cfg.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 100
	}

	logger = logger.With().Str("component", "affinity_store").Str("backend", "badger").Logger()
	logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("affinity store opened")

	return &BadgerStore{db: db, maxRetries: cfg.MaxRetries, logger: logger}, nil
}

// Name returns the backend name.
func (s *BadgerStore) Name() string {
	return "badger"
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func badgerKey(userID, propertyID int64) []byte {
	return []byte(affinityKeyPrefix + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(propertyID, 10))
}

func badgerUserPrefix(userID int64) []byte {
	return []byte(affinityKeyPrefix + strconv.FormatInt(userID, 10) + ":")
}

// parseBadgerKey extracts the IDs from affinity:<user>:<property>.
func parseBadgerKey(key []byte) (userID, propertyID int64, err error) {
	rest := bytes.TrimPrefix(key, []byte(affinityKeyPrefix))
	sep := bytes.IndexByte(rest, ':')
	if sep < 0 {
		return 0, 0, fmt.Errorf("malformed affinity key %q", key)
	}
	if userID, err = strconv.ParseInt(string(rest[:sep]), 10, 64); err != nil {
		return 0, 0, fmt.Errorf("malformed affinity key %q: %w", key, err)
	}
	if propertyID, err = strconv.ParseInt(string(rest[sep+1:]), 10, 64); err != nil {
		return 0, 0, fmt.Errorf("malformed affinity key %q: %w", key, err)
	}
	return userID, propertyID, nil
}

func readValue(item *badger.Item) (affinityValue, error) {
	var v affinityValue
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &v)
	})
	return v, err
}

// update runs fn in a read-write transaction, retrying on conflicts.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

// Apply adds delta to the score, floors it at zero and returns the result.
func (s *BadgerStore) Apply(ctx context.Context, userID, propertyID int64, delta float64) (float64, error) {
	key := badgerKey(userID, propertyID)
	var result float64

	err := s.update(ctx, func(txn *badger.Txn) error {
		var current affinityValue
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return fmt.Errorf("get affinity: %w", err)
		default:
			if current, err = readValue(item); err != nil {
				return fmt.Errorf("unmarshal affinity: %w", err)
			}
		}

		next := affinityValue{Score: floor(current.Score + delta), UpdatedAt: time.Now().UTC()}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal affinity: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set affinity: %w", err)
		}
		result = next.Score
		return nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// Get returns the score, or zero when absent.
func (s *BadgerStore) Get(_ context.Context, userID, propertyID int64) (float64, error) {
	var score float64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(userID, propertyID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get affinity: %w", err)
		}
		v, err := readValue(item)
		if err != nil {
			return fmt.Errorf("unmarshal affinity: %w", err)
		}
		score = v.Score
		return nil
	})
	return score, err
}

// Top returns the user's highest scores, score descending then property ID
// ascending.
func (s *BadgerStore) Top(_ context.Context, userID int64, limit int) ([]recommend.AffinityScore, error) {
	out := make([]recommend.AffinityScore, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := badgerUserPrefix(userID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			_, propertyID, err := parseBadgerKey(item.Key())
			if err != nil {
				s.logger.Warn().Err(err).Msg("skipping malformed affinity key")
				continue
			}
			v, err := readValue(item)
			if err != nil {
				return fmt.Errorf("unmarshal affinity: %w", err)
			}
			out = append(out, recommend.AffinityScore{
				UserID:     userID,
				PropertyID: propertyID,
				Score:      v.Score,
				UpdatedAt:  v.UpdatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user affinity: %w", err)
	}

	sortScores(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Decay multiplies every score by factor. Keys are rewritten in batches,
// each batch in its own transaction.
func (s *BadgerStore) Decay(ctx context.Context, factor float64) (int, error) {
	keys, err := s.keys()
	if err != nil {
		return 0, err
	}

	decayed := 0
	for start := 0; start < len(keys); start += decayBatchSize {
		end := start + decayBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		err := s.update(ctx, func(txn *badger.Txn) error {
			now := time.Now().UTC()
			for _, key := range batch {
				item, err := txn.Get(key)
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				if err != nil {
					return fmt.Errorf("get affinity: %w", err)
				}
				v, err := readValue(item)
				if err != nil {
					return fmt.Errorf("unmarshal affinity: %w", err)
				}
				data, err := json.Marshal(affinityValue{Score: floor(v.Score * factor), UpdatedAt: now})
				if err != nil {
					return fmt.Errorf("marshal affinity: %w", err)
				}
				if err := txn.Set(key, data); err != nil {
					return fmt.Errorf("set affinity: %w", err)
				}
			}
			return nil
		})
		if err != nil {
			return decayed, fmt.Errorf("decay batch at %d: %w", start, err)
		}
		decayed += len(batch)
	}

	return decayed, nil
}

// keys returns every affinity key.
func (s *BadgerStore) keys() ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(affinityKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list affinity keys: %w", err)
	}
	return keys, nil
}

// Replace overwrites the store with entries. New values are written first
// and stale keys deleted afterwards, batch by batch, so a reader sees either
// the old or the new score for each key.
func (s *BadgerStore) Replace(ctx context.Context, entries []recommend.AffinityScore) error {
	stale, err := s.keys()
	if err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(entries))
	for start := 0; start < len(entries); start += decayBatchSize {
		end := min(start+decayBatchSize, len(entries))
		batch := entries[start:end]

		err := s.update(ctx, func(txn *badger.Txn) error {
			for _, e := range batch {
				updated := e.UpdatedAt
				if updated.IsZero() {
					updated = time.Now().UTC()
				}
				data, err := json.Marshal(affinityValue{Score: floor(e.Score), UpdatedAt: updated})
				if err != nil {
					return fmt.Errorf("marshal affinity: %w", err)
				}
				if err := txn.Set(badgerKey(e.UserID, e.PropertyID), data); err != nil {
					return fmt.Errorf("set affinity: %w", err)
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("replace batch at %d: %w", start, err)
		}
		for _, e := range batch {
			keep[string(badgerKey(e.UserID, e.PropertyID))] = struct{}{}
		}
	}

	n := 0
	for _, key := range stale {
		if _, ok := keep[string(key)]; !ok {
			stale[n] = key
			n++
		}
	}
	stale = stale[:n]

	for start := 0; start < len(stale); start += decayBatchSize {
		end := min(start+decayBatchSize, len(stale))
		batch := stale[start:end]

		err := s.update(ctx, func(txn *badger.Txn) error {
			for _, key := range batch {
				if err := txn.Delete(key); err != nil {
					return fmt.Errorf("delete affinity: %w", err)
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("delete stale batch at %d: %w", start, err)
		}
	}
	return nil
}

// Shared is false: the data directory belongs to one process.
func (s *BadgerStore) Shared() bool {
	return false
}

// RunGC reclaims value log space until badger reports nothing to rewrite.
func (s *BadgerStore) RunGC(ratio float64) int {
	rewritten := 0
	for {
		if err := s.db.RunValueLogGC(ratio); err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Debug().Err(err).Msg("value log GC stopped")
			}
			return rewritten
		}
		rewritten++
	}
}

var _ recommend.AffinityStore = (*BadgerStore)(nil)
