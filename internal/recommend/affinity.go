// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import (
	"context"
	"errors"
	"fmt"
)

// similarFunc returns the properties that receive propagated score from p.
type similarFunc func(ctx context.Context, p *Property) ([]Property, error)

// propagationStep is one pending score update in the propagation worklist.
type propagationStep struct {
	property *Property
	delta    float64
	depth    int
}

// scoreWriter is the write side of an affinity table.
type scoreWriter interface {
	Apply(ctx context.Context, userID, propertyID int64, delta float64) (float64, error)
}

// RecordInteraction applies the score delta of kind to (userID,
// propertyID) and propagates a fraction of it to similar properties.
//
// Unknown properties are ignored and return nil. Any other store failure is
// returned wrapped in ErrStoreUnavailable; updates applied before the
// failure are kept.
//
// The interaction is not logged, so a later Rebuild drops its effect. Use
// Ingest for interactions that must survive a rebuild.
func (e *Engine) RecordInteraction(ctx context.Context, userID, propertyID int64, kind InteractionKind) error {
	if err := e.checkStores(); err != nil {
		return err
	}
	if kind < InteractionView || kind > InteractionUnsave {
		return fmt.Errorf("%w: %d", ErrInvalidInteraction, int(kind))
	}

	e.applyMu.RLock()
	defer e.applyMu.RUnlock()
	return e.recordInteraction(ctx, userID, propertyID, kind)
}

// Ingest appends in to the interaction log and applies it to the affinity
// scores. Rebuild never observes the append without the apply. A repeated
// event ID returns ErrDuplicateInteraction and leaves the scores untouched.
//
//nolint:gocritic // hugeParam: in passed by value like the log entry it becomes
func (e *Engine) Ingest(ctx context.Context, in Interaction) (Interaction, error) {
	if err := e.checkStores(); err != nil {
		return in, err
	}
	if in.Kind < InteractionView || in.Kind > InteractionUnsave {
		return in, fmt.Errorf("%w: %d", ErrInvalidInteraction, int(in.Kind))
	}

	e.applyMu.RLock()
	defer e.applyMu.RUnlock()

	stored, err := e.log.AppendInteraction(ctx, in)
	if err != nil {
		if !errors.Is(err, ErrDuplicateInteraction) {
			e.recordError("append_interaction")
		}
		return in, storeError("append interaction", err)
	}

	if err := e.recordInteraction(ctx, stored.UserID, stored.PropertyID, stored.Kind); err != nil {
		return stored, err
	}
	return stored, nil
}

// Replicate ingests an interaction announced by another instance. Event IDs
// already in the log are ignored. When the affinity store is shared the
// origin has already applied the deltas, so only the log and the user's
// cached results are updated.
//
//nolint:gocritic // hugeParam: in passed by value like the log entry it becomes
func (e *Engine) Replicate(ctx context.Context, in Interaction) error {
	if err := e.checkStores(); err != nil {
		return err
	}

	if !e.scores.Shared() {
		if _, err := e.Ingest(ctx, in); err != nil && !errors.Is(err, ErrDuplicateInteraction) {
			return err
		}
		return nil
	}

	e.applyMu.RLock()
	_, err := e.log.AppendInteraction(ctx, in)
	e.applyMu.RUnlock()
	if err != nil && !errors.Is(err, ErrDuplicateInteraction) {
		e.recordError("replicate_interaction")
		return storeError("append interaction", err)
	}

	e.InvalidateUser(ctx, in.UserID)
	return nil
}

// recordInteraction is RecordInteraction without the gate; callers hold
// applyMu for reading.
func (e *Engine) recordInteraction(ctx context.Context, userID, propertyID int64, kind InteractionKind) error {

	logger := e.logger.With().
		Int64("user_id", userID).
		Int64("property_id", propertyID).
		Str("kind", kind.String()).
		Logger()

	target, err := e.props.GetProperty(ctx, propertyID)
	if errors.Is(err, ErrPropertyNotFound) {
		logger.Debug().Msg("ignoring interaction for unknown property")
		return nil
	}
	if err != nil {
		e.recordError("record_interaction")
		return storeError("get property", err)
	}

	propagated, err := e.propagate(ctx, e.scores, userID, target, e.config.Deltas.For(kind), e.storeSimilar)
	e.propagationCount.Add(int64(propagated))
	if err != nil {
		e.recordError("record_interaction")
		return err
	}

	e.interactionCount.Add(1)
	e.InvalidateUser(ctx, userID)
	if e.observer != nil {
		e.observer.ObserveInteraction(kind, propagated)
	}

	logger.Debug().
		Int("propagated", propagated).
		Msg("interaction recorded")

	return nil
}

// storeSimilar resolves similar properties through the property store.
func (e *Engine) storeSimilar(ctx context.Context, p *Property) ([]Property, error) {
	return e.props.FindSimilarProperties(ctx, p, e.config.Propagation.MaxSimilar)
}

// propagate applies delta to target in dst and walks the similar-property
// graph breadth first up to Propagation.Depth levels, multiplying the delta
// by Propagation.Factor at each level. It returns the number of propagated
// updates, excluding the target itself.
func (e *Engine) propagate(ctx context.Context, dst scoreWriter, userID int64, target *Property, delta float64, similar similarFunc) (int, error) {
	p := e.config.Propagation
	queue := []propagationStep{{property: target, delta: delta}}
	propagated := 0

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return propagated, fmt.Errorf("propagate: %w", err)
		}

		step := queue[0]
		queue = queue[1:]

		if _, err := dst.Apply(ctx, userID, step.property.ID, step.delta); err != nil {
			return propagated, storeError("apply affinity delta", err)
		}
		if step.depth > 0 {
			propagated++
		}

		if step.depth >= p.Depth || p.MaxSimilar == 0 || p.Factor == 0 {
			continue
		}

		next, err := similar(ctx, step.property)
		if err != nil {
			return propagated, storeError("find similar properties", err)
		}
		if len(next) > p.MaxSimilar {
			next = next[:p.MaxSimilar]
		}
		for i := range next {
			queue = append(queue, propagationStep{
				property: &next[i],
				delta:    step.delta * p.Factor,
				depth:    step.depth + 1,
			})
		}
	}

	return propagated, nil
}
