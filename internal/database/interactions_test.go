// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/propnest/internal/recommend"
)

func TestAppendInteraction_AssignsIDAndTime(t *testing.T) {
	db := setupTestDB(t)

	out, err := db.AppendInteraction(context.Background(), recommend.Interaction{
		UserID: 7, PropertyID: 1, Kind: recommend.InteractionView,
	})
	if err != nil {
		t.Fatalf("AppendInteraction() error = %v", err)
	}
	if out.ID == "" {
		t.Error("ID not assigned")
	}
	if out.OccurredAt.IsZero() {
		t.Error("OccurredAt not assigned")
	}
}

func TestAppendInteraction_InvalidKind(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.AppendInteraction(context.Background(), recommend.Interaction{
		UserID: 1, PropertyID: 1, Kind: recommend.InteractionKind(42),
	})
	if !errors.Is(err, recommend.ErrInvalidInteraction) {
		t.Errorf("error = %v, want ErrInvalidInteraction", err)
	}
}

func TestAppendInteraction_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	in := recommend.Interaction{ID: "evt-1", UserID: 1, PropertyID: 1, Kind: recommend.InteractionView}
	if _, err := db.AppendInteraction(ctx, in); err != nil {
		t.Fatalf("first append error = %v", err)
	}
	if _, err := db.AppendInteraction(ctx, in); !errors.Is(err, ErrDuplicateInteraction) {
		t.Errorf("second append error = %v, want ErrDuplicateInteraction", err)
	}

	views, err := db.GetUserPropertyViews(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserPropertyViews() error = %v", err)
	}
	if len(views) != 1 {
		t.Errorf("views = %d, want 1 (duplicate must not add a view)", len(views))
	}
}

func TestAppendInteraction_MaintainsDerivedTables(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p1 := insertProperty(t, db, recommend.Property{Title: "P1", Type: "apartment", City: "Pune", Price: 100, Area: 10})
	p2 := insertProperty(t, db, recommend.Property{Title: "P2", Type: "apartment", City: "Pune", Price: 110, Area: 10})

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	steps := []recommend.Interaction{
		{UserID: 1, PropertyID: p1.ID, Kind: recommend.InteractionView, OccurredAt: base},
		{UserID: 1, PropertyID: p1.ID, Kind: recommend.InteractionView, OccurredAt: base.Add(time.Minute)},
		{UserID: 1, PropertyID: p1.ID, Kind: recommend.InteractionSave, OccurredAt: base.Add(2 * time.Minute)},
		{UserID: 1, PropertyID: p1.ID, Kind: recommend.InteractionSave, OccurredAt: base.Add(3 * time.Minute)},
		{UserID: 1, PropertyID: p2.ID, Kind: recommend.InteractionSave, OccurredAt: base.Add(4 * time.Minute)},
		{UserID: 2, PropertyID: p2.ID, Kind: recommend.InteractionView, OccurredAt: base.Add(5 * time.Minute)},
		{UserID: 1, PropertyID: p2.ID, Kind: recommend.InteractionUnsave, OccurredAt: base.Add(6 * time.Minute)},
		{UserID: 3, PropertyID: p2.ID, Kind: recommend.InteractionUnsave, OccurredAt: base.Add(7 * time.Minute)},
	}
	for i, in := range steps {
		if _, err := db.AppendInteraction(ctx, in); err != nil {
			t.Fatalf("step %d: AppendInteraction() error = %v", i, err)
		}
	}

	t.Run("user views keep repeats oldest first", func(t *testing.T) {
		views, err := db.GetUserPropertyViews(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(views) != 2 {
			t.Fatalf("views = %d, want 2", len(views))
		}
		if !views[0].ViewedAt.Equal(base) || !views[1].ViewedAt.Equal(base.Add(time.Minute)) {
			t.Errorf("views not ordered oldest first: %v", views)
		}
	})

	t.Run("log is returned oldest first", func(t *testing.T) {
		events, err := db.GetInteractions(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != len(steps) {
			t.Fatalf("events = %d, want %d", len(events), len(steps))
		}
		for i, ev := range events {
			if ev.Kind != steps[i].Kind || ev.UserID != steps[i].UserID || ev.PropertyID != steps[i].PropertyID {
				t.Errorf("events[%d] = %+v, want %+v", i, ev, steps[i])
			}
			if !ev.OccurredAt.Equal(steps[i].OccurredAt) || ev.ID == "" {
				t.Errorf("events[%d] time/id = %v %q", i, ev.OccurredAt, ev.ID)
			}
		}
	})

	t.Run("save is idempotent and unsave removes", func(t *testing.T) {
		props, err := db.GetSavedProperties(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(props) != 1 || props[0].ID != p1.ID {
			t.Errorf("GetSavedProperties = %v, want [P1]", titles(props))
		}
		none, err := db.GetSavedProperties(ctx, 99)
		if err != nil || len(none) != 0 {
			t.Errorf("unknown user saved = %v, %v", titles(none), err)
		}
	})

	t.Run("log keeps every event", func(t *testing.T) {
		count, err := db.CountInteractions(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if count != int64(len(steps)) {
			t.Errorf("CountInteractions() = %d, want %d", count, len(steps))
		}
	})
}
