// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package events

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/propnest/internal/config"
	"github.com/tomtom215/propnest/internal/recommend"
)

func TestNewBus_Disabled(t *testing.T) {
	bus, err := NewBus(&config.EventsConfig{Backend: "none"}, newRecordingReplicator())
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	defer bus.Close(context.Background())

	if bus.Consumer != nil {
		t.Error("disabled bus should have no consumer")
	}
	if bus.Backend() != "none" || bus.BreakerState() != "disabled" {
		t.Errorf("backend=%q breaker=%q", bus.Backend(), bus.BreakerState())
	}
	if bus.InstanceID() == "" {
		t.Error("instance ID should be generated")
	}
	bus.Emitter.Notify(context.Background(), recommend.Interaction{ID: "x", UserID: 1, PropertyID: 1})
}

func TestNewBus_UnknownBackend(t *testing.T) {
	for _, backend := range []string{"rabbitmq", "channel"} {
		t.Run(backend, func(t *testing.T) {
			_, err := NewBus(&config.EventsConfig{Backend: backend, Topic: "t"}, newRecordingReplicator())
			if !errors.Is(err, ErrUnknownBackend) {
				t.Errorf("NewBus(%q) = %v, want ErrUnknownBackend", backend, err)
			}
		})
	}
}

// TestNATS_CrossInstanceReplication runs two buses against one embedded
// server; an interaction on instance A is replicated to instance B.
func TestNATS_CrossInstanceReplication(t *testing.T) {
	srv, err := StartEmbeddedServer(-1)
	if err != nil {
		t.Fatalf("StartEmbeddedServer() error = %v", err)
	}
	defer srv.Shutdown(context.Background())

	cfg := func(instance string) *config.EventsConfig {
		return &config.EventsConfig{
			Backend:          "nats",
			Topic:            "propnest.interactions",
			NATSURL:          srv.ClientURL(),
			InstanceID:       instance,
			PublishTimeout:   time.Second,
			FailureThreshold: 5,
		}
	}

	targetA := newRecordingReplicator()
	busA, err := NewBus(cfg("api-a"), targetA)
	if err != nil {
		t.Fatalf("NewBus(a) error = %v", err)
	}
	defer busA.Close(context.Background())

	targetB := newRecordingReplicator()
	busB, err := NewBus(cfg("api-b"), targetB)
	if err != nil {
		t.Fatalf("NewBus(b) error = %v", err)
	}
	defer busB.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = busA.Consumer.Serve(ctx) }()
	go func() { _ = busB.Consumer.Serve(ctx) }()

	// Core NATS drops messages published before the subscription exists,
	// so keep publishing until B reacts.
	deadline := time.Now().Add(5 * time.Second)
	for len(targetB.calls()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("instance B never replicated user 21")
		}
		busA.Emitter.Notify(ctx, recommend.Interaction{
			ID: "evt-" + time.Now().Format("150405.000000000"), UserID: 21, PropertyID: 3,
			Kind: recommend.InteractionSave, OccurredAt: time.Now(),
		})
		time.Sleep(50 * time.Millisecond)
	}

	got := targetB.interactions()[0]
	if got.UserID != 21 || got.PropertyID != 3 || got.Kind != recommend.InteractionSave {
		t.Errorf("B replicated %+v, want a save of property 3 by user 21", got)
	}
	if calls := targetA.calls(); len(calls) != 0 {
		t.Errorf("A must skip its own events, got %v", calls)
	}
}

func TestKafka_CrossInstanceReplication(t *testing.T) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}

	topic := "propnest-test-" + time.Now().Format("20060102150405")
	cfg := func(instance string) *config.EventsConfig {
		return &config.EventsConfig{
			Backend:          "kafka",
			Topic:            topic,
			KafkaBrokers:     strings.Split(brokers, ","),
			InstanceID:       instance,
			PublishTimeout:   10 * time.Second,
			FailureThreshold: 5,
		}
	}

	busA, err := NewBus(cfg("api-a"), newRecordingReplicator())
	if err != nil {
		t.Fatalf("NewBus(a) error = %v", err)
	}
	defer busA.Close(context.Background())

	targetB := newRecordingReplicator()
	busB, err := NewBus(cfg("api-b"), targetB)
	if err != nil {
		t.Fatalf("NewBus(b) error = %v", err)
	}
	defer busB.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = busB.Consumer.Serve(ctx) }()

	deadline := time.Now().Add(30 * time.Second)
	for len(targetB.calls()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("instance B never replicated user 8")
		}
		busA.Emitter.Notify(ctx, recommend.Interaction{
			ID: "evt-" + time.Now().Format("150405.000000000"), UserID: 8, PropertyID: 1,
			Kind: recommend.InteractionView, OccurredAt: time.Now(),
		})
		time.Sleep(500 * time.Millisecond)
	}
}
