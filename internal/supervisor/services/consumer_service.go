// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package services

import (
	"context"
	"errors"
	"fmt"
)

// Consumer is a blocking event consumer. Satisfied by the consumers that
// events.NewBus returns.
type Consumer interface {
	Serve(ctx context.Context) error
}

// EventConsumerService names an interaction event consumer for the
// messaging layer and normalizes its exit.
//
// A consumer that returns while ctx is still live has lost its
// subscription; the error makes suture restart it with backoff.
type EventConsumerService struct {
	consumer Consumer
	name     string
}

// NewEventConsumerService wraps consumer. backend names the service in
// supervisor logs, e.g. "event-consumer-nats".
func NewEventConsumerService(consumer Consumer, backend string) *EventConsumerService {
	return &EventConsumerService{
		consumer: consumer,
		name:     "event-consumer-" + backend,
	}
}

// ErrConsumerStopped is returned when the consumer exits without error
// before shutdown.
var ErrConsumerStopped = errors.New("event consumer stopped unexpectedly")

// Serve implements suture.Service.
func (s *EventConsumerService) Serve(ctx context.Context) error {
	err := s.consumer.Serve(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return fmt.Errorf("%s: %w", s.name, ErrConsumerStopped)
}

// String implements fmt.Stringer for logging.
func (s *EventConsumerService) String() string {
	return s.name
}
