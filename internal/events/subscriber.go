// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/propnest/internal/logging"
	"github.com/tomtom215/propnest/internal/metrics"
	"github.com/tomtom215/propnest/internal/recommend"
)

// Replicator applies an interaction that was recorded on another instance.
// *recommend.Engine implements it: with an instance-local affinity store the
// interaction is logged and scored here, with a shared store only this
// instance's cached recommendations are dropped.
type Replicator interface {
	Replicate(ctx context.Context, in recommend.Interaction) error
}

// Failure stages reported to metrics and logs.
const (
	stageDecode  = "decode"
	stageApply   = "apply"
	stagePublish = "publish"
)

// ReplicationHandler feeds interaction events from other instances into the
// local engine. Events published by this instance are skipped; the API
// already applied them.
type ReplicationHandler struct {
	target     Replicator
	instanceID string
	backend    string
	log        *logging.EventLogger
}

// NewReplicationHandler creates a handler for events consumed from backend.
func NewReplicationHandler(target Replicator, instanceID, backend string) *ReplicationHandler {
	return &ReplicationHandler{
		target:     target,
		instanceID: instanceID,
		backend:    backend,
		log:        logging.NewEventLogger(backend),
	}
}

// Handle processes one payload. Undecodable payloads are logged and dropped
// since redelivering them cannot succeed. Apply failures are logged and
// counted; the message is still acknowledged.
func (h *ReplicationHandler) Handle(ctx context.Context, payload []byte) {
	evt, err := Unmarshal(payload)
	if err != nil {
		h.log.LogEventFailed(ctx, "", stageDecode, err)
		metrics.RecordEventFailed(h.backend, stageDecode)
		return
	}

	if evt.CorrelationID != "" {
		ctx = logging.ContextWithCorrelationID(ctx, evt.CorrelationID)
	}

	if evt.SourceInstance == h.instanceID {
		h.log.LogOwnEventSkipped(ctx, evt.EventID)
		return
	}

	h.log.LogInteractionReceived(ctx, evt.EventID, evt.SourceInstance, evt.UserID)

	in, err := evt.Interaction()
	if err == nil {
		err = h.target.Replicate(ctx, in)
	}
	if err != nil {
		h.log.LogEventFailed(ctx, evt.EventID, stageApply, err)
		metrics.RecordEventFailed(h.backend, stageApply)
		return
	}
	metrics.RecordEventConsumed(h.backend)
}

// WatermillConsumer is a suture service draining a watermill subscription.
type WatermillConsumer struct {
	subscriber message.Subscriber
	topic      string
	handler    *ReplicationHandler
}

// NewWatermillConsumer creates the consumer service for topic.
func NewWatermillConsumer(sub message.Subscriber, topic string, handler *ReplicationHandler) *WatermillConsumer {
	return &WatermillConsumer{subscriber: sub, topic: topic, handler: handler}
}

// Serve subscribes and handles messages until ctx is canceled. A closed
// message channel means the subscriber was closed, which suture treats as
// a failure and restarts.
func (c *WatermillConsumer) Serve(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}

	c.handler.log.LogSubscriptionStarted(c.topic, "")
	defer c.handler.log.LogSubscriptionStopped(c.topic)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription to %s closed", c.topic)
			}
			c.handler.Handle(ctx, msg.Payload)
			msg.Ack()
		}
	}
}

// String names the service in supervisor logs.
func (c *WatermillConsumer) String() string {
	return "events-watermill-consumer"
}
