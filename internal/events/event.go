// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/propnest/internal/recommend"
)

// SchemaVersion is the current payload version. Consumers accept payloads
// without a version as version 1.
const SchemaVersion = 1

// InteractionEvent is the wire payload announcing that a user viewed, saved
// or unsaved a property on some instance.
type InteractionEvent struct {
	SchemaVersion  int       `json:"schema_version,omitempty"`
	EventID        string    `json:"event_id"`
	UserID         int64     `json:"user_id"`
	PropertyID     int64     `json:"property_id"`
	Kind           string    `json:"kind"`
	OccurredAt     time.Time `json:"occurred_at"`
	SourceInstance string    `json:"source_instance"`

	// CorrelationID ties the consumer's log lines to the originating request.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// NewInteractionEvent builds the payload for an appended interaction.
func NewInteractionEvent(in recommend.Interaction, sourceInstance string) *InteractionEvent {
	return &InteractionEvent{
		SchemaVersion:  SchemaVersion,
		EventID:        in.ID,
		UserID:         in.UserID,
		PropertyID:     in.PropertyID,
		Kind:           in.Kind.String(),
		OccurredAt:     in.OccurredAt.UTC(),
		SourceInstance: sourceInstance,
	}
}

// Validate checks the fields every consumer relies on.
func (e *InteractionEvent) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	case e.UserID <= 0:
		return fmt.Errorf("%w: user_id must be positive", ErrInvalidEvent)
	case e.PropertyID <= 0:
		return fmt.Errorf("%w: property_id must be positive", ErrInvalidEvent)
	case e.SourceInstance == "":
		return fmt.Errorf("%w: source_instance is required", ErrInvalidEvent)
	case e.SchemaVersion > SchemaVersion:
		return fmt.Errorf("%w: unsupported schema_version %d", ErrInvalidEvent, e.SchemaVersion)
	}
	if _, err := recommend.ParseInteractionKind(e.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return nil
}

// Interaction converts the payload back into a log entry.
func (e *InteractionEvent) Interaction() (recommend.Interaction, error) {
	kind, err := recommend.ParseInteractionKind(e.Kind)
	if err != nil {
		return recommend.Interaction{}, err
	}
	return recommend.Interaction{
		ID:         e.EventID,
		UserID:     e.UserID,
		PropertyID: e.PropertyID,
		Kind:       kind,
		OccurredAt: e.OccurredAt,
	}, nil
}

// Marshal validates and encodes an event.
func Marshal(e *InteractionEvent) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates an event.
func Unmarshal(data []byte) (*InteractionEvent, error) {
	var e InteractionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
