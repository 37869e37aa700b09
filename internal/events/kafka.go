// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tomtom215/propnest/internal/logging"
)

// kafkaBatchTimeout bounds how long a synchronous write waits for a batch
// to fill. kafka-go defaults to one second, far too long for a request path.
const kafkaBatchTimeout = 10 * time.Millisecond

// KafkaPublisher writes events with the user ID as message key, so one
// user's interactions stay ordered on a single partition.
type KafkaPublisher struct {
	writer *kafka.Writer

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a synchronous writer for topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           kafkaBatchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish encodes evt and writes it, blocking until the leader acknowledges.
func (p *KafkaPublisher) Publish(ctx context.Context, evt *InteractionEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	data, err := Marshal(evt)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.UserID, 10)),
		Value: data,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: metaSourceInstance, Value: []byte(evt.SourceInstance)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes and closes the writer once.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// KafkaConsumer is a suture service reading the interaction topic. Each
// instance uses its own consumer group so every instance sees every event.
type KafkaConsumer struct {
	config  kafka.ReaderConfig
	handler *ReplicationHandler
}

// NewKafkaConsumer creates the consumer service. The reader is created on
// each Serve call so suture restarts get a fresh connection.
func NewKafkaConsumer(brokers []string, topic, groupID string, handler *ReplicationHandler) *KafkaConsumer {
	return &KafkaConsumer{
		config: kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          topic,
			GroupID:        groupID,
			MinBytes:       1,
			MaxBytes:       1 << 20,
			MaxWait:        500 * time.Millisecond,
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		},
		handler: handler,
	}
}

// Serve reads until ctx is canceled or the reader fails.
func (c *KafkaConsumer) Serve(ctx context.Context) error {
	reader := kafka.NewReader(c.config)
	defer func() {
		if err := reader.Close(); err != nil {
			logging.Warn().Err(err).Msg("kafka reader close failed")
		}
	}()

	c.handler.log.LogSubscriptionStarted(c.config.Topic, c.config.GroupID)
	defer c.handler.log.LogSubscriptionStopped(c.config.Topic)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("kafka reader closed: %w", err)
			}
			return fmt.Errorf("kafka read: %w", err)
		}
		c.handler.Handle(ctx, msg.Value)
	}
}

// String names the service in supervisor logs.
func (c *KafkaConsumer) String() string {
	return "events-kafka-consumer"
}
