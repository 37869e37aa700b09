// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package logging

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// EventLogger provides logging for the interaction event bus with methods
// for the publish and consume paths.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger creates an EventLogger on the global logger.
func NewEventLogger(backend string) *EventLogger {
	return NewEventLoggerWithLogger(Logger(), backend)
}

// NewEventLoggerWithLogger creates an EventLogger with a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEventLoggerWithLogger(logger zerolog.Logger, backend string) *EventLogger {
	return &EventLogger{
		logger: logger.With().Str("component", "events").Str("backend", backend).Logger(),
	}
}

// loggerWithContext returns a logger with context fields added.
func (e *EventLogger) loggerWithContext(ctx context.Context) zerolog.Logger {
	logCtx := e.logger.With()
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		logCtx = logCtx.Str("correlation_id", correlationID)
	}
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}
	return logCtx.Logger()
}

// addFieldPairs appends alternating key/value pairs to an event.
// A trailing key without a value is dropped.
func addFieldPairs(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		e = e.Interface(key, fields[i+1])
	}
	return e
}

// Info logs an info message with key/value pairs.
func (e *EventLogger) Info(msg string, fields ...interface{}) {
	addFieldPairs(e.logger.Info(), fields).Msg(msg)
}

// Warn logs a warning message with key/value pairs.
func (e *EventLogger) Warn(msg string, fields ...interface{}) {
	addFieldPairs(e.logger.Warn(), fields).Msg(msg)
}

// LogInteractionPublished logs a successful publish.
func (e *EventLogger) LogInteractionPublished(ctx context.Context, eventID, topic string) {
	logger := e.loggerWithContext(ctx)
	logger.Debug().
		Str("event_id", eventID).
		Str("topic", topic).
		Msg("interaction event published")
}

// LogPublishFailed logs a failed publish. The interaction itself has
// already been recorded, so this is a warning.
func (e *EventLogger) LogPublishFailed(ctx context.Context, eventID string, err error) {
	logger := e.loggerWithContext(ctx)
	logger.Warn().
		Str("event_id", eventID).
		Err(err).
		Msg("interaction event publish failed")
}

// LogInteractionReceived logs an event taken off the bus.
func (e *EventLogger) LogInteractionReceived(ctx context.Context, eventID, source string, userID int64) {
	logger := e.loggerWithContext(ctx)
	logger.Debug().
		Str("event_id", eventID).
		Str("source_instance", source).
		Int64("user_id", userID).
		Msg("interaction event received")
}

// LogOwnEventSkipped logs an event this instance published itself.
func (e *EventLogger) LogOwnEventSkipped(ctx context.Context, eventID string) {
	logger := e.loggerWithContext(ctx)
	logger.Trace().
		Str("event_id", eventID).
		Msg("skipping own interaction event")
}

// LogEventFailed logs an event that could not be decoded or handled.
func (e *EventLogger) LogEventFailed(ctx context.Context, eventID, stage string, err error) {
	logger := e.loggerWithContext(ctx)
	logger.Error().
		Str("event_id", eventID).
		Str("stage", stage).
		Err(err).
		Msg("interaction event processing failed")
}

// LogSubscriptionStarted logs when a subscription is started.
func (e *EventLogger) LogSubscriptionStarted(topic, group string) {
	e.Info("subscription started", "topic", topic, "group", group)
}

// LogSubscriptionStopped logs when a subscription is stopped.
func (e *EventLogger) LogSubscriptionStopped(topic string) {
	e.Info("subscription stopped", "topic", topic)
}
