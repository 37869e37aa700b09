// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// defaultMaintenanceTimeout bounds one rebuild or decay pass.
const defaultMaintenanceTimeout = 30 * time.Minute

// AffinityMaintainer is the part of the recommendation engine the
// maintenance service drives. Satisfied by *recommend.Engine.
type AffinityMaintainer interface {
	Rebuild(ctx context.Context) (int, error)
	Decay(ctx context.Context, factor float64) (int, error)
}

// MaintenanceConfig controls the maintenance schedule.
type MaintenanceConfig struct {
	// RebuildOnStartup replays the interaction log into the affinity store
	// when the service starts.
	RebuildOnStartup bool

	// DecayInterval is the period between decay passes. Zero disables
	// decay; the service then only performs the startup rebuild.
	DecayInterval time.Duration

	// DecayFactor multiplies every score on each pass, in (0, 1].
	DecayFactor float64

	// Timeout bounds each pass. Default: 30m
	Timeout time.Duration
}

// MaintenanceService runs affinity maintenance under supervision.
//
// Failures are logged and retried on the next tick rather than returned:
// returning would make suture restart the service and repeat the startup
// rebuild.
type MaintenanceService struct {
	engine AffinityMaintainer
	config MaintenanceConfig
	logger zerolog.Logger
	name   string
}

// NewMaintenanceService creates the maintenance service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(engine AffinityMaintainer, cfg MaintenanceConfig, logger zerolog.Logger) *MaintenanceService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMaintenanceTimeout
	}
	return &MaintenanceService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "affinity-maintenance").Logger(),
		name:   "affinity-maintenance",
	}
}

// Serve implements suture.Service.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("rebuild_on_startup", s.config.RebuildOnStartup).
		Dur("decay_interval", s.config.DecayInterval).
		Float64("decay_factor", s.config.DecayFactor).
		Msg("maintenance service starting")

	if s.config.RebuildOnStartup {
		s.rebuild(ctx)
	}

	if s.config.DecayInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.DecayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("maintenance service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.decay(ctx)
		}
	}
}

func (s *MaintenanceService) rebuild(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	replayed, err := s.engine.Rebuild(passCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Warn().Err(err).Int("replayed", replayed).Msg("startup rebuild failed")
		return
	}
	s.logger.Info().
		Int("replayed", replayed).
		Dur("duration", time.Since(start)).
		Msg("startup rebuild complete")
}

func (s *MaintenanceService) decay(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	n, err := s.engine.Decay(passCtx, s.config.DecayFactor)
	if err != nil {
		s.logger.Warn().Err(err).Msg("scheduled decay failed")
		return
	}
	s.logger.Debug().Int("entries", n).Msg("scheduled decay complete")
}

// String returns the service name for logging.
func (s *MaintenanceService) String() string {
	return s.name
}
