// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"

	"github.com/tomtom215/propnest/internal/config"
	"github.com/tomtom215/propnest/internal/logging"
)

// Service is a long-running consumer; suture.Service is satisfied by it.
type Service interface {
	Serve(ctx context.Context) error
}

// Bus is the assembled event bus for one configured backend.
type Bus struct {
	// Emitter publishes interactions recorded through the API.
	Emitter *Emitter

	// Consumer replicates remote interactions into the local engine. Nil
	// when the bus is disabled.
	Consumer Service

	backend    string
	instanceID string
	breaker    *BreakerPublisher
	closers    []func(context.Context) error
}

// NewBus builds publisher, consumer and, for NATS_EMBEDDED, the in-process
// server. An empty instance ID is replaced by a random UUID.
func NewBus(cfg *config.EventsConfig, target Replicator) (*Bus, error) {
	instanceID := cfg.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}

	b := &Bus{backend: cfg.Backend, instanceID: instanceID}
	if !cfg.Enabled() {
		b.backend = "none"
		b.Emitter = NewEmitter(NoopPublisher{}, instanceID, cfg.Topic, b.backend, 0)
		return b, nil
	}

	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger("watermill"))
	handler := NewReplicationHandler(target, instanceID, cfg.Backend)

	var pub Publisher
	switch cfg.Backend {
	case "nats":
		url := cfg.NATSURL
		if cfg.NATSEmbedded {
			srv, err := StartEmbeddedServer(cfg.NATSEmbeddedPort)
			if err != nil {
				return nil, err
			}
			b.closers = append(b.closers, srv.Shutdown)
			url = srv.ClientURL()
			logging.Info().Str("url", url).Msg("Embedded NATS server started")
		}

		natsPub, err := NewNATSPublisher(url, wmLogger)
		if err != nil {
			_ = b.Close(context.Background())
			return nil, err
		}
		natsSub, err := NewNATSSubscriber(url, wmLogger)
		if err != nil {
			_ = natsPub.Close()
			_ = b.Close(context.Background())
			return nil, err
		}
		// Subscriber first: closers run in reverse order.
		b.closers = append(b.closers, func(context.Context) error { return natsSub.Close() })
		pub = NewWatermillPublisher(natsPub, cfg.Topic)
		b.Consumer = NewWatermillConsumer(natsSub, cfg.Topic, handler)

	case "kafka":
		groupID := cfg.KafkaGroupID
		if groupID == "" {
			groupID = "propnest-" + instanceID
		}
		pub = NewKafkaPublisher(cfg.KafkaBrokers, cfg.Topic)
		b.Consumer = NewKafkaConsumer(cfg.KafkaBrokers, cfg.Topic, groupID, handler)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	b.breaker = NewBreakerPublisher(pub, cfg.Backend, BreakerConfig{FailureThreshold: cfg.FailureThreshold})
	b.closers = append(b.closers, func(context.Context) error { return b.breaker.Close() })
	b.Emitter = NewEmitter(b.breaker, instanceID, cfg.Topic, cfg.Backend, cfg.PublishTimeout)

	logging.Info().
		Str("backend", cfg.Backend).
		Str("topic", cfg.Topic).
		Str("instance_id", instanceID).
		Msg("Event bus ready")

	return b, nil
}

// Backend returns the active backend name, "none" when disabled.
func (b *Bus) Backend() string {
	return b.backend
}

// InstanceID returns the ID stamped on this instance's events.
func (b *Bus) InstanceID() string {
	return b.instanceID
}

// BreakerState returns the publish breaker state, or "disabled".
func (b *Bus) BreakerState() string {
	if b.breaker == nil {
		return "disabled"
	}
	return b.breaker.State()
}

// Close releases publisher, subscriber and embedded server, newest first.
func (b *Bus) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
