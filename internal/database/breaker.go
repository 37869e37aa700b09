// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/propnest/internal/logging"
	"github.com/tomtom215/propnest/internal/metrics"
	"github.com/tomtom215/propnest/internal/recommend"
)

// Backend is the engine-facing surface of the database.
type Backend interface {
	recommend.PropertyStore
	recommend.InteractionLog
}

var _ Backend = (*DB)(nil)

// BreakerStore wraps a Backend with a circuit breaker so a failing DuckDB
// file does not stall every recommendation request.
//
// Failures are returned wrapped in recommend.ErrStoreUnavailable. Not-found
// results, duplicate interactions and cancelled contexts count as successes
// and pass through.
type BreakerStore struct {
	backend Backend
	cb      *gobreaker.CircuitBreaker[interface{}]
	name    string
}

var _ Backend = (*BreakerStore)(nil)

// NewBreakerStore creates a BreakerStore.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 30 second timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewBreakerStore(backend Backend) *BreakerStore {
	cbName := "duckdb"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			return err == nil || passThrough(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := StateToString(from)
			toStr := StateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(StateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerStore{
		backend: backend,
		cb:      cb,
		name:    cbName,
	}
}

// State returns the current breaker state name.
func (b *BreakerStore) State() string {
	return StateToString(b.cb.State())
}

// execute wraps a backend call with circuit breaker protection
func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", recommend.ErrStoreUnavailable, err)
		}
		if passThrough(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
			return nil, err
		}

		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		if errors.Is(err, recommend.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", recommend.ErrStoreUnavailable, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// passThrough reports errors that describe the request, not the backend.
func passThrough(err error) bool {
	return errors.Is(err, recommend.ErrPropertyNotFound) ||
		errors.Is(err, recommend.ErrDuplicateInteraction) ||
		errors.Is(err, context.Canceled)
}

// castResult safely type-casts the circuit breaker result with error checking
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// StateToFloat converts circuit breaker state to numeric value for metrics
func StateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// StateToString converts circuit breaker state to string for logging
func StateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// GetProperty retrieves a property with circuit breaker protection
func (b *BreakerStore) GetProperty(ctx context.Context, id int64) (*recommend.Property, error) {
	return castResult[*recommend.Property](b.execute(func() (interface{}, error) {
		return b.backend.GetProperty(ctx, id)
	}))
}

// GetAllProperties retrieves the catalog with circuit breaker protection
func (b *BreakerStore) GetAllProperties(ctx context.Context) ([]recommend.Property, error) {
	return castResult[[]recommend.Property](b.execute(func() (interface{}, error) {
		return b.backend.GetAllProperties(ctx)
	}))
}

// GetFeaturedProperties retrieves featured listings with circuit breaker protection
func (b *BreakerStore) GetFeaturedProperties(ctx context.Context, limit int) ([]recommend.Property, error) {
	return castResult[[]recommend.Property](b.execute(func() (interface{}, error) {
		return b.backend.GetFeaturedProperties(ctx, limit)
	}))
}

// GetSavedProperties retrieves a saved list with circuit breaker protection
func (b *BreakerStore) GetSavedProperties(ctx context.Context, userID int64) ([]recommend.Property, error) {
	return castResult[[]recommend.Property](b.execute(func() (interface{}, error) {
		return b.backend.GetSavedProperties(ctx, userID)
	}))
}

// FindSimilarProperties retrieves similar listings with circuit breaker protection
func (b *BreakerStore) FindSimilarProperties(ctx context.Context, target *recommend.Property, maxResults int) ([]recommend.Property, error) {
	return castResult[[]recommend.Property](b.execute(func() (interface{}, error) {
		return b.backend.FindSimilarProperties(ctx, target, maxResults)
	}))
}

// GetUserPropertyViews retrieves a user's views with circuit breaker protection
func (b *BreakerStore) GetUserPropertyViews(ctx context.Context, userID int64) ([]recommend.PropertyView, error) {
	return castResult[[]recommend.PropertyView](b.execute(func() (interface{}, error) {
		return b.backend.GetUserPropertyViews(ctx, userID)
	}))
}

// AppendInteraction appends to the interaction log with circuit breaker protection
func (b *BreakerStore) AppendInteraction(ctx context.Context, in recommend.Interaction) (recommend.Interaction, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.backend.AppendInteraction(ctx, in)
	})
	if err != nil {
		return in, err
	}
	stored, ok := result.(recommend.Interaction)
	if !ok {
		return in, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return stored, nil
}

// GetInteractions retrieves the interaction log with circuit breaker protection
func (b *BreakerStore) GetInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	return castResult[[]recommend.Interaction](b.execute(func() (interface{}, error) {
		return b.backend.GetInteractions(ctx)
	}))
}
