// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

/*
Package events broadcasts recorded interactions between PropNest instances.

The API publishes an InteractionEvent after the interaction is durable.
Every instance consumes the topic, skips events it published itself and
hands the rest to a Replicator. With an instance-local affinity store
(memory, badger) the receiving engine logs and scores the interaction, so
every instance converges on the same scores; a repeated event ID is
ignored. With the shared redis store the score is already written, so the
receiver only drops the user's cached recommendations.

Backends (EVENTS_BACKEND):

  - none: NoopPublisher, no consumer
  - nats: watermill-nats over core NATS pub/sub, optionally against an
    embedded nats-server (NATS_EMBEDDED=true)
  - kafka: segmentio/kafka-go, user ID as message key, one consumer group
    per instance

Publishing goes through a gobreaker circuit breaker and never fails the
request; see Emitter.Notify. Consumers are suture services and are restarted
by the supervisor when the broker connection fails.

Payload:

	{"schema_version":1,"event_id":"6f1c...","user_id":42,"property_id":7,
	 "kind":"save","occurred_at":"2026-03-01T10:00:00Z",
	 "source_instance":"api-1","correlation_id":"..."}
*/
package events
