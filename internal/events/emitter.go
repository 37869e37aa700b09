// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package events

import (
	"context"
	"time"

	"github.com/tomtom215/propnest/internal/logging"
	"github.com/tomtom215/propnest/internal/metrics"
	"github.com/tomtom215/propnest/internal/recommend"
)

// Emitter announces recorded interactions. Publishing is best effort: by the
// time Notify runs, the interaction is already durable in the log and
// applied to the local engine, so a broker failure only leaves other
// instances behind.
type Emitter struct {
	publisher  Publisher
	instanceID string
	topic      string
	backend    string
	timeout    time.Duration
	log        *logging.EventLogger
}

// NewEmitter creates an emitter. A non-positive timeout disables the
// per-publish deadline.
func NewEmitter(pub Publisher, instanceID, topic, backend string, timeout time.Duration) *Emitter {
	return &Emitter{
		publisher:  pub,
		instanceID: instanceID,
		topic:      topic,
		backend:    backend,
		timeout:    timeout,
		log:        logging.NewEventLogger(backend),
	}
}

// Notify publishes the interaction. It never returns an error; failures are
// logged and counted.
func (e *Emitter) Notify(ctx context.Context, in recommend.Interaction) {
	if _, noop := e.publisher.(NoopPublisher); noop {
		return
	}

	evt := NewInteractionEvent(in, e.instanceID)
	evt.CorrelationID = logging.CorrelationIDFromContext(ctx)

	// The request may finish before the broker answers; the publish must
	// not be canceled with it.
	pubCtx := context.WithoutCancel(ctx)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(pubCtx, e.timeout)
		defer cancel()
	}

	if err := e.publisher.Publish(pubCtx, evt); err != nil {
		e.log.LogPublishFailed(ctx, evt.EventID, err)
		metrics.RecordEventFailed(e.backend, stagePublish)
		return
	}
	e.log.LogInteractionPublished(ctx, evt.EventID, e.topic)
	metrics.RecordEventPublished(e.backend)
}

// InstanceID returns the ID stamped on published events.
func (e *Emitter) InstanceID() string {
	return e.instanceID
}
