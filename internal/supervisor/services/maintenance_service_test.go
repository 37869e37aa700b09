// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

type fakeMaintainer struct {
	mu           sync.Mutex
	rebuildCalls int
	decayCalls   int
	factors      []float64
	rebuildErr   error
	decayErr     error
}

func (f *fakeMaintainer) Rebuild(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rebuildCalls++
	return 3, f.rebuildErr
}

func (f *fakeMaintainer) Decay(_ context.Context, factor float64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decayCalls++
	f.factors = append(f.factors, factor)
	return 10, f.decayErr
}

func (f *fakeMaintainer) counts() (rebuilds, decays int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rebuildCalls, f.decayCalls
}

var _ suture.Service = (*MaintenanceService)(nil)

func TestMaintenanceService_Schedule(t *testing.T) {
	tests := []struct {
		name         string
		cfg          MaintenanceConfig
		rebuildErr   error
		decayErr     error
		wantRebuilds int
		wantDecays   bool
	}{
		{
			name:         "startup rebuild only",
			cfg:          MaintenanceConfig{RebuildOnStartup: true},
			wantRebuilds: 1,
		},
		{
			name:       "decay only",
			cfg:        MaintenanceConfig{DecayInterval: 10 * time.Millisecond, DecayFactor: 0.9},
			wantDecays: true,
		},
		{
			name:         "failures do not stop the loop",
			cfg:          MaintenanceConfig{RebuildOnStartup: true, DecayInterval: 10 * time.Millisecond, DecayFactor: 0.5},
			rebuildErr:   errors.New("store unavailable"),
			decayErr:     errors.New("store unavailable"),
			wantRebuilds: 1,
			wantDecays:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeMaintainer{rebuildErr: tt.rebuildErr, decayErr: tt.decayErr}
			svc := NewMaintenanceService(engine, tt.cfg, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			err := svc.Serve(ctx)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() error = %v, want deadline exceeded", err)
			}

			rebuilds, decays := engine.counts()
			if rebuilds != tt.wantRebuilds {
				t.Errorf("rebuilds = %d, want %d", rebuilds, tt.wantRebuilds)
			}
			if (decays > 0) != tt.wantDecays {
				t.Errorf("decays = %d, want any: %v", decays, tt.wantDecays)
			}
			for _, f := range engine.factors {
				if f != tt.cfg.DecayFactor {
					t.Errorf("decay factor = %v, want %v", f, tt.cfg.DecayFactor)
				}
			}
		})
	}
}

func TestMaintenanceService_Defaults(t *testing.T) {
	svc := NewMaintenanceService(&fakeMaintainer{}, MaintenanceConfig{}, zerolog.Nop())
	if svc.config.Timeout != defaultMaintenanceTimeout {
		t.Errorf("Timeout = %v, want %v", svc.config.Timeout, defaultMaintenanceTimeout)
	}
	if svc.String() != "affinity-maintenance" {
		t.Errorf("String() = %q", svc.String())
	}
}
