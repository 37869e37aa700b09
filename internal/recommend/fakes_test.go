// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var errBackendDown = errors.New("backend down")

// fakeCatalog implements PropertyStore and InteractionLog in memory.
type fakeCatalog struct {
	mu         sync.RWMutex
	properties []Property
	events     []Interaction
	views      []PropertyView
	saved      []SavedProperty
	fail       bool

	// Hooks run outside the lock, after the result was read.
	onGetInteractions func(call int)
	onGetSaved        func(userID int64)
	interactionCalls  int
}

func (c *fakeCatalog) add(p Property) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.properties = append(c.properties, p)
	sort.Slice(c.properties, func(i, j int) bool { return c.properties[i].ID < c.properties[j].ID })
}

func (c *fakeCatalog) view(userID, propertyID int64, at time.Time) {
	c.log(Interaction{UserID: userID, PropertyID: propertyID, Kind: InteractionView, OccurredAt: at})
}

func (c *fakeCatalog) save(userID, propertyID int64, at time.Time) {
	c.log(Interaction{UserID: userID, PropertyID: propertyID, Kind: InteractionSave, OccurredAt: at})
}

func (c *fakeCatalog) log(in Interaction) {
	if _, err := c.AppendInteraction(context.Background(), in); err != nil {
		panic(err)
	}
}

func (c *fakeCatalog) AppendInteraction(_ context.Context, in Interaction) (Interaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return in, errBackendDown
	}
	if in.ID == "" {
		in.ID = fmt.Sprintf("evt-%d", len(c.events)+1)
	}
	for _, ev := range c.events {
		if ev.ID == in.ID {
			return in, fmt.Errorf("%w: %s", ErrDuplicateInteraction, in.ID)
		}
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = baseTime.Add(time.Duration(len(c.events)) * time.Second)
	}
	c.events = append(c.events, in)

	switch in.Kind {
	case InteractionView:
		c.views = append(c.views, PropertyView{UserID: in.UserID, PropertyID: in.PropertyID, ViewedAt: in.OccurredAt})
	case InteractionSave:
		for _, s := range c.saved {
			if s.UserID == in.UserID && s.PropertyID == in.PropertyID {
				return in, nil
			}
		}
		c.saved = append(c.saved, SavedProperty{UserID: in.UserID, PropertyID: in.PropertyID, SavedAt: in.OccurredAt})
	case InteractionUnsave:
		kept := c.saved[:0]
		for _, s := range c.saved {
			if s.UserID != in.UserID || s.PropertyID != in.PropertyID {
				kept = append(kept, s)
			}
		}
		c.saved = kept
	}
	return in, nil
}

func (c *fakeCatalog) interactionIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.events))
	for i, ev := range c.events {
		ids[i] = ev.ID
	}
	return ids
}

func (c *fakeCatalog) GetProperty(_ context.Context, id int64) (*Property, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fail {
		return nil, errBackendDown
	}
	for i := range c.properties {
		if c.properties[i].ID == id {
			p := c.properties[i]
			return &p, nil
		}
	}
	return nil, ErrPropertyNotFound
}

func (c *fakeCatalog) GetAllProperties(_ context.Context) ([]Property, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fail {
		return nil, errBackendDown
	}
	return append([]Property(nil), c.properties...), nil
}

func (c *fakeCatalog) GetFeaturedProperties(_ context.Context, limit int) ([]Property, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fail {
		return nil, errBackendDown
	}
	out := make([]Property, 0)
	for _, p := range c.properties {
		if p.Featured {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *fakeCatalog) GetSavedProperties(_ context.Context, userID int64) ([]Property, error) {
	out, err := c.savedProperties(userID)
	if err == nil && c.onGetSaved != nil {
		c.onGetSaved(userID)
	}
	return out, err
}

func (c *fakeCatalog) savedProperties(userID int64) ([]Property, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fail {
		return nil, errBackendDown
	}
	out := make([]Property, 0)
	for _, s := range c.saved {
		if s.UserID != userID {
			continue
		}
		for _, p := range c.properties {
			if p.ID == s.PropertyID {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (c *fakeCatalog) FindSimilarProperties(_ context.Context, target *Property, maxResults int) ([]Property, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fail {
		return nil, errBackendDown
	}
	return FindSimilar(target, c.properties, maxResults), nil
}

func (c *fakeCatalog) GetUserPropertyViews(_ context.Context, userID int64) ([]PropertyView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fail {
		return nil, errBackendDown
	}
	out := make([]PropertyView, 0)
	for _, v := range c.views {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetInteractions(_ context.Context) ([]Interaction, error) {
	c.mu.Lock()
	if c.fail {
		c.mu.Unlock()
		return nil, errBackendDown
	}
	out := append([]Interaction(nil), c.events...)
	c.interactionCalls++
	call := c.interactionCalls
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	if c.onGetInteractions != nil {
		c.onGetInteractions(call)
	}
	return out, nil
}

type scoreKey struct{ user, property int64 }

// fakeScores is a mutex-guarded AffinityStore.
type fakeScores struct {
	mu     sync.Mutex
	scores map[scoreKey]float64
	fail   bool
	shared bool
}

func newFakeScores() *fakeScores {
	return &fakeScores{scores: make(map[scoreKey]float64)}
}

func (s *fakeScores) Apply(_ context.Context, userID, propertyID int64, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return 0, errBackendDown
	}
	k := scoreKey{userID, propertyID}
	v := s.scores[k] + delta
	if v < 0 {
		v = 0
	}
	s.scores[k] = v
	return v, nil
}

func (s *fakeScores) Get(_ context.Context, userID, propertyID int64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return 0, errBackendDown
	}
	return s.scores[scoreKey{userID, propertyID}], nil
}

func (s *fakeScores) Top(_ context.Context, userID int64, limit int) ([]AffinityScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AffinityScore, 0)
	for k, v := range s.scores {
		if k.user == userID {
			out = append(out, AffinityScore{UserID: userID, PropertyID: k.property, Score: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PropertyID < out[j].PropertyID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeScores) Decay(_ context.Context, factor float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.scores {
		s.scores[k] = v * factor
	}
	return len(s.scores), nil
}

func (s *fakeScores) Replace(_ context.Context, entries []AffinityScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errBackendDown
	}
	s.scores = make(map[scoreKey]float64, len(entries))
	for _, e := range entries {
		s.scores[scoreKey{e.UserID, e.PropertyID}] = e.Score
	}
	return nil
}

func (s *fakeScores) snapshot() map[scoreKey]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[scoreKey]float64, len(s.scores))
	for k, v := range s.scores {
		out[k] = v
	}
	return out
}

func (s *fakeScores) Shared() bool { return s.shared }

func (s *fakeScores) Name() string { return "fake" }

// fakeCache is a ResultCache without expiry.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *fakeCache) DeletePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

func (c *fakeCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
}

func (c *fakeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

// property builds a test property created id hours after baseTime.
func property(id int64, typ PropertyType, city string, price float64) Property {
	return Property{
		ID:        id,
		Title:     "listing",
		Type:      typ,
		City:      city,
		Price:     price,
		Area:      1200,
		Bedrooms:  intPtr(2),
		Bathrooms: intPtr(2),
		Amenities: []string{"parking"},
		CreatedAt: baseTime.Add(time.Duration(id) * time.Hour),
	}
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newTestEngine(t *testing.T, cfg *Config) (*Engine, *fakeCatalog, *fakeScores) {
	t.Helper()

	e, err := NewEngine(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	catalog := &fakeCatalog{}
	scores := newFakeScores()
	e.SetStores(catalog, catalog, scores)
	return e, catalog, scores
}
