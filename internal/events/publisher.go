// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package events

import (
	"context"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Message metadata keys set on every published event.
const (
	metaUserID         = "user_id"
	metaSourceInstance = "source_instance"
	metaCorrelationID  = "correlation_id"
)

// Publisher sends encoded interaction events to the bus.
type Publisher interface {
	Publish(ctx context.Context, evt *InteractionEvent) error
	Close() error
}

// WatermillPublisher publishes through any watermill message.Publisher,
// core NATS in production.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string

	mu     sync.RWMutex
	closed bool
}

// NewWatermillPublisher wraps a watermill publisher for the given topic.
func NewWatermillPublisher(pub message.Publisher, topic string) *WatermillPublisher {
	return &WatermillPublisher{publisher: pub, topic: topic}
}

// Publish encodes evt and sends it. The event ID doubles as the watermill
// message UUID so broker-side logs line up with ours.
func (p *WatermillPublisher) Publish(ctx context.Context, evt *InteractionEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	data, err := Marshal(evt)
	if err != nil {
		return err
	}

	msg := message.NewMessage(evt.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set(metaUserID, strconv.FormatInt(evt.UserID, 10))
	msg.Metadata.Set(metaSourceInstance, evt.SourceInstance)
	if evt.CorrelationID != "" {
		msg.Metadata.Set(metaCorrelationID, evt.CorrelationID)
	}

	return p.publisher.Publish(p.topic, msg)
}

// Close closes the underlying publisher once.
func (p *WatermillPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

// NoopPublisher discards every event. It is used when EVENTS_BACKEND=none.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, *InteractionEvent) error { return nil }

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }
