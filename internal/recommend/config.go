// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Deltas are the score changes applied per interaction kind.
	Deltas DeltaConfig `json:"deltas"`

	// Propagation controls how much of a delta spreads to similar properties.
	Propagation PropagationConfig `json:"propagation"`

	// Preferences controls preference vector aggregation.
	Preferences PreferenceConfig `json:"preferences"`

	// Weights are the candidate scoring dimension weights.
	// They must sum to 1.0.
	Weights DimensionWeights `json:"weights"`

	// Diversity contains the per-category caps of the personalized path.
	Diversity DiversityConfig `json:"diversity"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`
}

// DeltaConfig holds per-kind score deltas.
type DeltaConfig struct {
	View   float64 `json:"view"`
	Save   float64 `json:"save"`
	Unsave float64 `json:"unsave"`
}

// For returns the delta for an interaction kind.
func (d DeltaConfig) For(kind InteractionKind) float64 {
	switch kind {
	case InteractionView:
		return d.View
	case InteractionSave:
		return d.Save
	case InteractionUnsave:
		return d.Unsave
	default:
		return 0
	}
}

// PropagationConfig controls score propagation.
type PropagationConfig struct {
	// Factor multiplies the delta at each propagation level.
	// Default: 0.5.
	Factor float64 `json:"factor"`

	// MaxSimilar is the number of similar properties updated per level.
	// Default: 5.
	MaxSimilar int `json:"max_similar"`

	// Depth is the number of propagation levels. 0 disables propagation,
	// 1 updates only direct similar properties.
	// Default: 1.
	Depth int `json:"depth"`
}

// PreferenceConfig holds preference aggregation weights.
type PreferenceConfig struct {
	// ViewWeight is added per viewed property. Default: 1.
	ViewWeight float64 `json:"view_weight"`

	// SaveWeight is added per saved property. Default: 3.
	SaveWeight float64 `json:"save_weight"`
}

// DimensionWeights are the per-dimension weights of ScoreCandidate.
type DimensionWeights struct {
	Type      float64 `json:"type"`
	Price     float64 `json:"price"`
	City      float64 `json:"city"`
	Amenities float64 `json:"amenities"`
	Bedrooms  float64 `json:"bedrooms"`
	Bathrooms float64 `json:"bathrooms"`
	Area      float64 `json:"area"`

	// AddressFactor scales the city weight for address substring matches.
	// Default: 0.5.
	AddressFactor float64 `json:"address_factor"`

	// Normalization divides the raw score before capping at 1.
	// Default: 10.
	Normalization float64 `json:"normalization"`
}

// Sum returns the total of the seven dimension weights.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w DimensionWeights) Sum() float64 {
	return w.Type + w.Price + w.City + w.Amenities + w.Bedrooms + w.Bathrooms + w.Area
}

// DiversityConfig contains the per-category caps.
type DiversityConfig struct {
	MaxPerType        int `json:"max_per_type"`
	MaxPerPriceBucket int `json:"max_per_price_bucket"`
	MaxPerCity        int `json:"max_per_city"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit is used when a request has no limit. Default: 10.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit clamps request limits. Default: 100.
	MaxLimit int `json:"max_limit"`
}

// CacheConfig contains response caching parameters.
type CacheConfig struct {
	// Enabled controls whether responses are cached. Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live. Default: 5m.
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Deltas: DeltaConfig{
			View:   1,
			Save:   5,
			Unsave: -5,
		},
		Propagation: PropagationConfig{
			Factor:     0.5,
			MaxSimilar: 5,
			Depth:      1,
		},
		Preferences: PreferenceConfig{
			ViewWeight: 1,
			SaveWeight: 3,
		},
		Weights: DimensionWeights{
			Type:          0.25,
			Price:         0.20,
			City:          0.20,
			Amenities:     0.15,
			Bedrooms:      0.10,
			Bathrooms:     0.05,
			Area:          0.05,
			AddressFactor: 0.5,
			Normalization: 10,
		},
		Diversity: DiversityConfig{
			MaxPerType:        3,
			MaxPerPriceBucket: 3,
			MaxPerCity:        4,
		},
		Limits: LimitsConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.Deltas.View < 0 || c.Deltas.Save < 0 {
		return fmt.Errorf("%w: deltas.view and deltas.save must be non-negative", ErrInvalidConfig)
	}
	if c.Deltas.Unsave > 0 {
		return fmt.Errorf("%w: deltas.unsave must be non-positive, got %f", ErrInvalidConfig, c.Deltas.Unsave)
	}

	if c.Propagation.Factor < 0 || c.Propagation.Factor > 1 {
		return fmt.Errorf("%w: propagation.factor must be in [0, 1], got %f", ErrInvalidConfig, c.Propagation.Factor)
	}
	if c.Propagation.MaxSimilar < 0 {
		return fmt.Errorf("%w: propagation.max_similar must be non-negative, got %d", ErrInvalidConfig, c.Propagation.MaxSimilar)
	}
	if c.Propagation.Depth < 0 || c.Propagation.Depth > 3 {
		return fmt.Errorf("%w: propagation.depth must be in [0, 3], got %d", ErrInvalidConfig, c.Propagation.Depth)
	}

	if c.Preferences.ViewWeight < 0 || c.Preferences.SaveWeight < 0 {
		return fmt.Errorf("%w: preference weights must be non-negative", ErrInvalidConfig)
	}

	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("%w: dimension weights must sum to 1.0, got %f", ErrInvalidConfig, sum)
	}
	if c.Weights.Normalization <= 0 {
		return fmt.Errorf("%w: weights.normalization must be positive, got %f", ErrInvalidConfig, c.Weights.Normalization)
	}
	if c.Weights.AddressFactor < 0 || c.Weights.AddressFactor > 1 {
		return fmt.Errorf("%w: weights.address_factor must be in [0, 1], got %f", ErrInvalidConfig, c.Weights.AddressFactor)
	}

	if c.Diversity.MaxPerType < 1 || c.Diversity.MaxPerPriceBucket < 1 || c.Diversity.MaxPerCity < 1 {
		return fmt.Errorf("%w: diversity caps must be positive", ErrInvalidConfig)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("%w: limits.default_limit must be positive, got %d", ErrInvalidConfig, c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("%w: limits.max_limit must be >= limits.default_limit, got %d < %d",
			ErrInvalidConfig, c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache.ttl must be positive when caching is enabled", ErrInvalidConfig)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types
	clone := *c
	return &clone
}
