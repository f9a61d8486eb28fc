package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes CloudEvents to Kafka topics.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer creates a Producer for the given brokers.
func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	}
	return &Producer{writer: writer, logger: logger}
}

// PublishEvent publishes a CloudEvent to topic. key identifies the subject
// entity; events sharing a key land on the same partition and stay ordered.
// An empty key falls back to the event ID.
func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event CloudEvent) error {
	msg, err := buildMessage(topic, key, event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("type", event.Type),
	)
	return nil
}

func buildMessage(topic, key string, event CloudEvent) (kafkago.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("failed to marshal cloud event: %w", err)
	}
	if key == "" {
		key = event.ID
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}, nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
