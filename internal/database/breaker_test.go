// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package database

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/propnest/internal/recommend"
)

// stubBackend returns err from every call and counts invocations.
type stubBackend struct {
	err   error
	calls atomic.Int32
	props []recommend.Property
}

func (s *stubBackend) GetProperty(_ context.Context, id int64) (*recommend.Property, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.props {
		if s.props[i].ID == id {
			p := s.props[i]
			return &p, nil
		}
	}
	return nil, recommend.ErrPropertyNotFound
}

func (s *stubBackend) GetAllProperties(context.Context) ([]recommend.Property, error) {
	s.calls.Add(1)
	return s.props, s.err
}

func (s *stubBackend) GetFeaturedProperties(context.Context, int) ([]recommend.Property, error) {
	s.calls.Add(1)
	return s.props, s.err
}

func (s *stubBackend) GetSavedProperties(context.Context, int64) ([]recommend.Property, error) {
	s.calls.Add(1)
	return s.props, s.err
}

func (s *stubBackend) FindSimilarProperties(context.Context, *recommend.Property, int) ([]recommend.Property, error) {
	s.calls.Add(1)
	return s.props, s.err
}

func (s *stubBackend) GetUserPropertyViews(context.Context, int64) ([]recommend.PropertyView, error) {
	s.calls.Add(1)
	return nil, s.err
}

func (s *stubBackend) AppendInteraction(_ context.Context, in recommend.Interaction) (recommend.Interaction, error) {
	s.calls.Add(1)
	if s.err != nil {
		return in, s.err
	}
	in.ID = "stored-" + in.ID
	return in, nil
}

func (s *stubBackend) GetInteractions(context.Context) ([]recommend.Interaction, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []recommend.Interaction{{ID: "evt-1", UserID: 1, PropertyID: 2}}, nil
}

func TestBreakerStore_PassThrough(t *testing.T) {
	backend := &stubBackend{props: []recommend.Property{{ID: 1, Title: "one"}}}
	store := NewBreakerStore(backend)
	ctx := context.Background()

	p, err := store.GetProperty(ctx, 1)
	if err != nil || p.Title != "one" {
		t.Fatalf("GetProperty() = %v, %v", p, err)
	}

	all, err := store.GetAllProperties(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("GetAllProperties() = %v, %v", all, err)
	}

	events, err := store.GetInteractions(ctx)
	if err != nil || len(events) != 1 || events[0].ID != "evt-1" {
		t.Errorf("GetInteractions() = %v, %v", events, err)
	}

	stored, err := store.AppendInteraction(ctx, recommend.Interaction{ID: "a"})
	if err != nil || stored.ID != "stored-a" {
		t.Errorf("AppendInteraction() = %+v, %v", stored, err)
	}
}

func TestBreakerStore_DuplicateIsNotAFailure(t *testing.T) {
	backend := &stubBackend{err: fmt.Errorf("%w: evt-1", recommend.ErrDuplicateInteraction)}
	store := NewBreakerStore(backend)

	for i := 0; i < 20; i++ {
		_, err := store.AppendInteraction(context.Background(), recommend.Interaction{ID: "evt-1"})
		if !errors.Is(err, ErrDuplicateInteraction) {
			t.Fatalf("call %d: error = %v, want ErrDuplicateInteraction", i, err)
		}
		if errors.Is(err, recommend.ErrStoreUnavailable) {
			t.Fatal("duplicate must not be reported as unavailable")
		}
	}
	if store.State() != "closed" {
		t.Errorf("State() = %q, want closed", store.State())
	}
}

func TestBreakerStore_NotFoundIsNotAFailure(t *testing.T) {
	backend := &stubBackend{}
	store := NewBreakerStore(backend)

	for i := 0; i < 20; i++ {
		_, err := store.GetProperty(context.Background(), 99)
		if !errors.Is(err, recommend.ErrPropertyNotFound) {
			t.Fatalf("call %d: error = %v, want ErrPropertyNotFound", i, err)
		}
		if errors.Is(err, recommend.ErrStoreUnavailable) {
			t.Fatalf("not-found must not be reported as unavailable")
		}
	}
	if store.State() != "closed" {
		t.Errorf("State() = %q, want closed", store.State())
	}
}

func TestBreakerStore_TripsOnFailures(t *testing.T) {
	backend := &stubBackend{err: errors.New("disk I/O error")}
	store := NewBreakerStore(backend)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := store.GetAllProperties(ctx)
		if !errors.Is(err, recommend.ErrStoreUnavailable) {
			t.Fatalf("call %d: error = %v, want ErrStoreUnavailable", i, err)
		}
	}
	if store.State() != "open" {
		t.Fatalf("State() = %q, want open after 10 failures", store.State())
	}

	before := backend.calls.Load()
	_, err := store.GetFeaturedProperties(ctx, 5)
	if !errors.Is(err, recommend.ErrStoreUnavailable) {
		t.Errorf("rejected call error = %v, want ErrStoreUnavailable", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("rejected call error = %v, want ErrOpenState", err)
	}
	if backend.calls.Load() != before {
		t.Error("backend called while breaker open")
	}
}

func TestBreakerStore_WithDatabase(t *testing.T) {
	db := setupTestDB(t)
	store := NewBreakerStore(db)
	ctx := context.Background()

	p := insertProperty(t, db, recommend.Property{Title: "wired", Type: "house", City: "Pune", Price: 1, Area: 1})

	got, err := store.GetProperty(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("GetProperty() = %v, %v", got, err)
	}
	if _, err := store.GetProperty(ctx, p.ID+100); !errors.Is(err, recommend.ErrPropertyNotFound) {
		t.Errorf("unknown id error = %v", err)
	}
}

func TestStateConversions(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		name  string
		value float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
		{gobreaker.State(99), "unknown", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateToString(tt.state); got != tt.name {
				t.Errorf("StateToString() = %q, want %q", got, tt.name)
			}
			if got := StateToFloat(tt.state); got != tt.value {
				t.Errorf("StateToFloat() = %v, want %v", got, tt.value)
			}
		})
	}
}
