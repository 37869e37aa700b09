// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// PropertyType is the listing category (apartment, villa, plot, ...).
// Values are stored lowercase.
type PropertyType string

// Well-known property types. Other values are accepted as-is.
const (
	TypeApartment  PropertyType = "apartment"
	TypeVilla      PropertyType = "villa"
	TypeHouse      PropertyType = "house"
	TypePlot       PropertyType = "plot"
	TypeCommercial PropertyType = "commercial"
	TypeOffice     PropertyType = "office"
)

// NormalizePropertyType lowercases and trims a raw type value.
func NormalizePropertyType(s string) PropertyType {
	return PropertyType(strings.ToLower(strings.TrimSpace(s)))
}

// Property is a listing as seen by the engine. The engine never mutates it.
type Property struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Type      PropertyType `json:"type"`
	City      string       `json:"city"`
	Address   string       `json:"address,omitempty"`
	Price     float64      `json:"price"`
	Area      float64      `json:"area"`
	Bedrooms  *int         `json:"bedrooms,omitempty"`
	Bathrooms *int         `json:"bathrooms,omitempty"`
	Amenities []string     `json:"amenities"`
	Featured  bool         `json:"featured"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// InteractionKind is the kind of user action on a property.
type InteractionKind int

const (
	// InteractionView is a property detail page view.
	InteractionView InteractionKind = iota
	// InteractionSave adds the property to the user's saved list.
	InteractionSave
	// InteractionUnsave removes the property from the saved list.
	InteractionUnsave
)

// String returns the wire name of the kind.
func (k InteractionKind) String() string {
	switch k {
	case InteractionView:
		return "view"
	case InteractionSave:
		return "save"
	case InteractionUnsave:
		return "unsave"
	default:
		return "unknown"
	}
}

// ParseInteractionKind parses a wire name into an InteractionKind.
func ParseInteractionKind(s string) (InteractionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return InteractionView, nil
	case "save":
		return InteractionSave, nil
	case "unsave":
		return InteractionUnsave, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidInteraction, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k InteractionKind) MarshalText() ([]byte, error) {
	if k < InteractionView || k > InteractionUnsave {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInteraction, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *InteractionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseInteractionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Interaction is one entry of the append-only interaction log.
type Interaction struct {
	ID         string          `json:"id"`
	UserID     int64           `json:"user_id"`
	PropertyID int64           `json:"property_id"`
	Kind       InteractionKind `json:"kind"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// PropertyView records that a user opened a property.
type PropertyView struct {
	UserID     int64     `json:"user_id"`
	PropertyID int64     `json:"property_id"`
	ViewedAt   time.Time `json:"viewed_at"`
}

// SavedProperty records that a property is on a user's saved list.
type SavedProperty struct {
	UserID     int64     `json:"user_id"`
	PropertyID int64     `json:"property_id"`
	SavedAt    time.Time `json:"saved_at"`
}

// AffinityScore is the accumulated interest of a user in a property.
type AffinityScore struct {
	UserID     int64     `json:"user_id"`
	PropertyID int64     `json:"property_id"`
	Score      float64   `json:"score"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScoredProperty is a property with its ranking score.
type ScoredProperty struct {
	Property Property `json:"property"`

	// Score is in [0, 1] on the personalized path and the raw affinity
	// score on the simple path. Featured fallbacks carry 0.
	Score float64 `json:"score"`

	// Reason is "personalized", "affinity" or "featured".
	Reason string `json:"reason"`
}

// Scoring reasons attached to ScoredProperty.
const (
	ReasonPersonalized = "personalized"
	ReasonAffinity     = "affinity"
	ReasonFeatured     = "featured"
)

// RecommendMode selects the recommendation path.
type RecommendMode int

const (
	// ModePersonalized scores unseen properties against the user's
	// preference vector and diversifies the result.
	ModePersonalized RecommendMode = iota
	// ModeSimple returns the user's highest affinity scores.
	ModeSimple
)

// String returns the mode name.
func (m RecommendMode) String() string {
	switch m {
	case ModePersonalized:
		return "personalized"
	case ModeSimple:
		return "simple"
	default:
		return "unknown"
	}
}

// ParseRecommendMode parses a mode name. An empty string selects
// ModePersonalized.
func ParseRecommendMode(s string) (RecommendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "personalized", "ai":
		return ModePersonalized, nil
	case "simple", "default":
		return ModeSimple, nil
	default:
		return 0, fmt.Errorf("unknown recommendation mode %q", s)
	}
}

// Request is a recommendation request.
type Request struct {
	UserID int64 `json:"user_id"`

	// Limit is the maximum number of properties returned. Zero selects
	// Limits.DefaultLimit; values above Limits.MaxLimit are clamped.
	Limit int `json:"limit"`

	Mode RecommendMode `json:"mode"`

	// RequestID is generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Response is a recommendation result.
type Response struct {
	Items []ScoredProperty `json:"items"`

	// TotalCandidates is the number of properties considered before the
	// limit was applied.
	TotalCandidates int `json:"total_candidates"`

	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a Response was produced.
type ResponseMetadata struct {
	RequestID string    `json:"request_id"`
	UserID    int64     `json:"user_id"`
	Mode      string    `json:"mode"`
	Fallback  bool      `json:"fallback"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// PropertyStore is the read side of the property catalog.
type PropertyStore interface {
	// GetProperty returns ErrPropertyNotFound for unknown IDs.
	GetProperty(ctx context.Context, id int64) (*Property, error)

	// GetAllProperties returns every property in ascending ID order.
	GetAllProperties(ctx context.Context) ([]Property, error)

	// GetFeaturedProperties returns featured properties, newest first.
	GetFeaturedProperties(ctx context.Context, limit int) ([]Property, error)

	// GetSavedProperties returns the properties on the user's saved list.
	GetSavedProperties(ctx context.Context, userID int64) ([]Property, error)

	// FindSimilarProperties returns up to maxResults properties that satisfy
	// IsSimilar(target, p), in ascending ID order.
	FindSimilarProperties(ctx context.Context, target *Property, maxResults int) ([]Property, error)
}

// InteractionLog is the append-only interaction history.
type InteractionLog interface {
	// AppendInteraction stores in, assigning an ID and time when zero, and
	// returns the stored entry. A repeated ID returns
	// ErrDuplicateInteraction.
	AppendInteraction(ctx context.Context, in Interaction) (Interaction, error)

	GetUserPropertyViews(ctx context.Context, userID int64) ([]PropertyView, error)

	// GetInteractions returns every logged interaction, oldest first.
	GetInteractions(ctx context.Context) ([]Interaction, error)
}

// AffinityStore holds AffinityScore entries. Implementations serialize
// Apply per (user, property) key.
type AffinityStore interface {
	// Apply adds delta to the entry, creating it at zero if missing, floors
	// the result at zero and returns the new score.
	Apply(ctx context.Context, userID, propertyID int64, delta float64) (float64, error)

	// Get returns the score, or zero when no entry exists.
	Get(ctx context.Context, userID, propertyID int64) (float64, error)

	// Top returns up to limit entries for the user ordered by score
	// descending, then property ID ascending.
	Top(ctx context.Context, userID int64, limit int) ([]AffinityScore, error)

	// Decay multiplies every score by factor and returns the number of
	// entries touched.
	Decay(ctx context.Context, factor float64) (int, error)

	// Replace swaps the whole contents for entries. A key absent from
	// entries is removed. Concurrent readers see each key's old or new
	// score, never an emptied store.
	Replace(ctx context.Context, entries []AffinityScore) error

	// Shared reports whether other instances write to the same store.
	Shared() bool

	// Name identifies the backend in logs and metrics.
	Name() string
}

// ResultCache stores encoded recommendation responses.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	DeletePrefix(ctx context.Context, prefix string)
	Clear(ctx context.Context)
}

// Reranker reorders a ranked list for a secondary objective.
type Reranker interface {
	// Name returns the reranker identifier.
	Name() string

	// Rerank receives items sorted by relevance and returns up to k of them.
	Rerank(ctx context.Context, items []ScoredProperty, k int) []ScoredProperty
}

// Status describes maintenance state.
type Status struct {
	AffinityBackend string    `json:"affinity_backend"`
	Rebuilding      bool      `json:"rebuilding"`
	LastRebuildAt   time.Time `json:"last_rebuild_at,omitempty"`
	LastRebuildMS   int64     `json:"last_rebuild_ms"`
	ReplayedEvents  int       `json:"replayed_events"`
	LastDecayAt     time.Time `json:"last_decay_at,omitempty"`
	DecayedEntries  int       `json:"decayed_entries"`
	LastError       string    `json:"last_error,omitempty"`
}

// Metrics contains engine counters.
type Metrics struct {
	RequestCount     int64 `json:"request_count"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	FallbackCount    int64 `json:"fallback_count"`
	InteractionCount int64 `json:"interaction_count"`
	PropagationCount int64 `json:"propagation_count"`
	ErrorCount       int64 `json:"error_count"`
}
