package kafka

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one Kafka message. Returning an error leaves the
// offset uncommitted so the message is redelivered.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

const (
	defaultRetryBaseDelay = 500 * time.Millisecond
	maxRetryDelay         = 30 * time.Second
)

// Consumer reads messages from a topic within a consumer group.
type Consumer struct {
	reader         *kafkago.Reader
	logger         *zap.Logger
	retryBaseDelay time.Duration
}

// NewConsumer creates a Consumer for the given brokers, group and topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, logger: logger, retryBaseDelay: defaultRetryBaseDelay}
}

// Consume fetches messages and hands them to handler until ctx is cancelled.
// A failing handler is retried on the same message with exponential backoff;
// the offset is committed only after the handler succeeds, so no message is
// skipped past.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return context.Canceled
			}
			return err
		}

		if err := c.handleWithRetry(ctx, handler, msg); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit offset",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// handleWithRetry invokes handler until it succeeds or ctx is cancelled,
// backing off exponentially between attempts.
func (c *Consumer) handleWithRetry(ctx context.Context, handler MessageHandler, msg kafkago.Message) error {
	delay := c.retryBaseDelay
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}

		c.logger.Error("message handler failed",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
