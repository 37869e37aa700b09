// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable wraps failures of the property store, interaction
	// log or affinity store. Callers decide whether to retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPropertyNotFound is returned by stores when a property ID is unknown.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrInvalidInteraction is returned for unknown interaction kinds.
	ErrInvalidInteraction = errors.New("invalid interaction kind")

	// ErrRebuildInProgress is returned when Rebuild is already running.
	ErrRebuildInProgress = errors.New("affinity rebuild already in progress")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid recommend config")

	// ErrDuplicateInteraction is returned when an interaction with the same
	// event ID has already been logged.
	ErrDuplicateInteraction = errors.New("duplicate interaction event")

	// ErrStoresNotSet is returned when the engine is used before SetStores.
	ErrStoresNotSet = errors.New("stores not set")
)

// storeError marks err as a store failure for the given operation.
// Not-found errors pass through unchanged so callers can tell them apart.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPropertyNotFound) || errors.Is(err, ErrDuplicateInteraction) ||
		errors.Is(err, ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
