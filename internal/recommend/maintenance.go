// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Rebuild recomputes every affinity score by replaying the interaction log,
// oldest first, through the scoring path. It returns the number of
// replayed events.
//
// The replay runs into a staging table while interactions keep flowing.
// Rebuild then blocks score writes, replays what was logged in the
// meantime and swaps the staged scores into the store. Readers keep seeing
// the previous scores until the swap.
//
// Only one rebuild runs at a time; a concurrent call returns
// ErrRebuildInProgress.
func (e *Engine) Rebuild(ctx context.Context) (int, error) {
	if err := e.checkStores(); err != nil {
		return 0, err
	}
	if !e.rebuildMu.TryLock() {
		return 0, ErrRebuildInProgress
	}
	defer e.rebuildMu.Unlock()

	start := time.Now()
	e.setRebuilding(true)
	e.logger.Info().Msg("starting affinity rebuild")

	replayed, err := e.rebuild(ctx)

	e.statusMu.Lock()
	e.status.Rebuilding = false
	e.status.LastRebuildMS = time.Since(start).Milliseconds()
	if err != nil {
		e.status.LastError = err.Error()
	} else {
		e.status.LastError = ""
		e.status.LastRebuildAt = time.Now()
		e.status.ReplayedEvents = replayed
	}
	e.statusMu.Unlock()

	if err != nil {
		e.recordError("rebuild")
		e.logger.Error().Err(err).Int("replayed", replayed).Msg("affinity rebuild failed")
		return replayed, err
	}

	e.InvalidateAll(ctx)
	e.logger.Info().
		Int("replayed", replayed).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("affinity rebuild complete")

	return replayed, nil
}

func (e *Engine) rebuild(ctx context.Context) (int, error) {
	snapshot, err := e.log.GetInteractions(ctx)
	if err != nil {
		return 0, storeError("get interactions", err)
	}

	all, err := e.props.GetAllProperties(ctx)
	if err != nil {
		return 0, storeError("get all properties", err)
	}
	r := &replayer{
		engine:  e,
		staged:  make(stagedScores),
		byID:    make(map[int64]*Property, len(all)),
		catalog: all,
		seen:    make(map[string]struct{}, len(snapshot)),
	}
	for i := range all {
		r.byID[all[i].ID] = &all[i]
	}

	if err := r.replay(ctx, snapshot); err != nil {
		return r.replayed, err
	}

	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	// Interactions ingested while the snapshot was replayed.
	latest, err := e.log.GetInteractions(ctx)
	if err != nil {
		return r.replayed, storeError("get interactions", err)
	}
	tail := make([]Interaction, 0)
	for i := range latest {
		if _, ok := r.seen[latest[i].ID]; !ok {
			tail = append(tail, latest[i])
		}
	}
	if err := r.replay(ctx, tail); err != nil {
		return r.replayed, err
	}

	if err := e.scores.Replace(ctx, r.staged.entries()); err != nil {
		return r.replayed, storeError("replace affinity scores", err)
	}
	e.logger.Debug().
		Int("snapshot", len(snapshot)).
		Int("tail", len(tail)).
		Msg("affinity scores swapped")

	return r.replayed, nil
}

// replayer feeds logged interactions through the scoring path into a
// staging table.
type replayer struct {
	engine   *Engine
	staged   stagedScores
	byID     map[int64]*Property
	catalog  []Property
	seen     map[string]struct{}
	replayed int
}

func (r *replayer) replay(ctx context.Context, events []Interaction) error {
	e := r.engine

	// The catalog is already in memory, so similarity is resolved against it
	// instead of querying the store once per event. Both use the same
	// predicate and ascending ID order.
	similar := func(_ context.Context, p *Property) ([]Property, error) {
		return FindSimilar(p, r.catalog, e.config.Propagation.MaxSimilar), nil
	}

	for i := range events {
		ev := &events[i]
		r.seen[ev.ID] = struct{}{}

		target, ok := r.byID[ev.PropertyID]
		if !ok {
			continue
		}
		propagated, err := e.propagate(ctx, r.staged, ev.UserID, target, e.config.Deltas.For(ev.Kind), similar)
		e.propagationCount.Add(int64(propagated))
		if err != nil {
			return fmt.Errorf("replay event %s: %w", ev.ID, err)
		}
		r.replayed++
	}
	return nil
}

type stagedKey struct {
	userID     int64
	propertyID int64
}

// stagedScores is the in-memory table a rebuild replays into. It applies
// deltas with the same zero floor as every AffinityStore.
type stagedScores map[stagedKey]float64

func (s stagedScores) Apply(_ context.Context, userID, propertyID int64, delta float64) (float64, error) {
	k := stagedKey{userID, propertyID}
	v := s[k] + delta
	if v < 0 {
		v = 0
	}
	s[k] = v
	return v, nil
}

// entries returns the table ordered by user, then property.
func (s stagedScores) entries() []AffinityScore {
	now := time.Now().UTC()
	out := make([]AffinityScore, 0, len(s))
	for k, v := range s {
		out = append(out, AffinityScore{UserID: k.userID, PropertyID: k.propertyID, Score: v, UpdatedAt: now})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].PropertyID < out[j].PropertyID
	})
	return out
}

// Decay multiplies every affinity score by factor, which must be in (0, 1].
// It returns the number of entries touched. A running rebuild would swap
// in undecayed scores, so Decay returns ErrRebuildInProgress instead.
func (e *Engine) Decay(ctx context.Context, factor float64) (int, error) {
	if err := e.checkStores(); err != nil {
		return 0, err
	}
	if factor <= 0 || factor > 1 {
		return 0, fmt.Errorf("%w: decay factor must be in (0, 1], got %f", ErrInvalidConfig, factor)
	}
	if !e.rebuildMu.TryLock() {
		return 0, ErrRebuildInProgress
	}
	defer e.rebuildMu.Unlock()

	n, err := e.scores.Decay(ctx, factor)
	if err != nil {
		e.recordError("decay")
		return n, storeError("decay affinity scores", err)
	}

	e.statusMu.Lock()
	e.status.LastDecayAt = time.Now()
	e.status.DecayedEntries = n
	e.statusMu.Unlock()

	e.InvalidateAll(ctx)
	e.logger.Info().
		Int("entries", n).
		Float64("factor", factor).
		Msg("affinity scores decayed")

	return n, nil
}

func (e *Engine) setRebuilding(v bool) {
	e.statusMu.Lock()
	e.status.Rebuilding = v
	e.statusMu.Unlock()
}
