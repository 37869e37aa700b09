// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ValueLogCollector reclaims value log space. Satisfied by
// *storage.BadgerStore.
type ValueLogCollector interface {
	RunGC(ratio float64) int
}

// BadgerGCService runs value log garbage collection on a fixed interval.
// Decay and rebuild rewrite every score, which leaves most of the value log
// stale.
type BadgerGCService struct {
	store    ValueLogCollector
	interval time.Duration
	ratio    float64
	logger   zerolog.Logger
	name     string
}

// NewBadgerGCService creates the GC service. Defaults: interval 10m,
// discard ratio 0.5.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerGCService(store ValueLogCollector, interval time.Duration, ratio float64, logger zerolog.Logger) *BadgerGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &BadgerGCService{
		store:    store,
		interval: interval,
		ratio:    ratio,
		logger:   logger.With().Str("service", "badger-gc").Logger(),
		name:     "badger-gc",
	}
}

// Serve implements suture.Service.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.store.RunGC(s.ratio); n > 0 {
				s.logger.Debug().Int("rewritten", n).Msg("value log GC complete")
			}
		}
	}
}

// String implements fmt.Stringer for logging.
func (s *BadgerGCService) String() string {
	return s.name
}
