// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/propnest/internal/recommend"
)

// flakyPublisher fails while down is set.
type flakyPublisher struct {
	down  atomic.Bool
	calls atomic.Int32
}

func (f *flakyPublisher) Publish(_ context.Context, evt *InteractionEvent) error {
	f.calls.Add(1)
	if err := evt.Validate(); err != nil {
		return err
	}
	if f.down.Load() {
		return errors.New("broker unreachable")
	}
	return nil
}

func (f *flakyPublisher) Close() error { return nil }

func TestBreakerPublisher_TripsAndRecovers(t *testing.T) {
	inner := &flakyPublisher{}
	inner.down.Store(true)
	bp := NewBreakerPublisher(inner, "test_trip", BreakerConfig{FailureThreshold: 3, OpenTimeout: 50 * time.Millisecond})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := bp.Publish(ctx, validEvent()); err == nil {
			t.Fatalf("publish %d: expected broker error", i)
		}
	}
	if bp.State() != gobreaker.StateOpen.String() {
		t.Fatalf("State() = %q, want open", bp.State())
	}

	if err := bp.Publish(ctx, validEvent()); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open circuit publish = %v, want ErrOpenState", err)
	}
	if got := inner.calls.Load(); got != 3 {
		t.Errorf("inner calls = %d, want 3 (open circuit must not reach the broker)", got)
	}

	inner.down.Store(false)
	time.Sleep(80 * time.Millisecond)

	if err := bp.Publish(ctx, validEvent()); err != nil {
		t.Fatalf("half-open probe failed: %v", err)
	}
	if bp.State() != gobreaker.StateClosed.String() {
		t.Errorf("State() = %q after successful probe, want closed", bp.State())
	}
}

func TestBreakerPublisher_InvalidEventIsNotAnOutage(t *testing.T) {
	bp := NewBreakerPublisher(&flakyPublisher{}, "test_invalid", BreakerConfig{FailureThreshold: 1})
	bad := validEvent()
	bad.EventID = ""

	for i := 0; i < 5; i++ {
		if err := bp.Publish(context.Background(), bad); !errors.Is(err, ErrInvalidEvent) {
			t.Fatalf("Publish() = %v, want ErrInvalidEvent", err)
		}
	}
	if bp.State() != gobreaker.StateClosed.String() {
		t.Errorf("State() = %q, want closed", bp.State())
	}
}

func TestEmitter_NotifySwallowsFailures(t *testing.T) {
	inner := &flakyPublisher{}
	inner.down.Store(true)
	e := NewEmitter(inner, "api-1", "topic", "test_emit", 10*time.Millisecond)

	// Must not panic or block; the failure is only logged.
	e.Notify(context.Background(), recommend.Interaction{
		ID: "evt-x", UserID: 1, PropertyID: 2, Kind: recommend.InteractionSave, OccurredAt: time.Now(),
	})
	if inner.calls.Load() != 1 {
		t.Errorf("publisher calls = %d, want 1", inner.calls.Load())
	}
}

func TestEmitter_CanceledRequestStillPublishes(t *testing.T) {
	var gotErr error
	pub := publisherFunc(func(ctx context.Context, _ *InteractionEvent) error {
		gotErr = ctx.Err()
		return nil
	})
	e := NewEmitter(pub, "api-1", "topic", "test_cancel", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.Notify(ctx, recommend.Interaction{ID: "evt-y", UserID: 1, PropertyID: 2, OccurredAt: time.Now()})

	if gotErr != nil {
		t.Errorf("publish context error = %v, want nil", gotErr)
	}
}

type publisherFunc func(ctx context.Context, evt *InteractionEvent) error

func (f publisherFunc) Publish(ctx context.Context, evt *InteractionEvent) error { return f(ctx, evt) }
func (f publisherFunc) Close() error                                            { return nil }
