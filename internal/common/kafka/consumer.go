package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultHandleRetries  = 5
	defaultRetryInterval  = 200 * time.Millisecond
	maxHandleRetryBackoff = 5 * time.Second
)

// MessageHandler processes one message. Returning an error retries the
// message with backoff; once retries run out the error is logged and the
// offset is committed. Handlers return nil for messages that can never succeed.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// Consumer reads one topic as part of a consumer group.
type Consumer struct {
	reader        *kafkago.Reader
	topic         string
	logger        *zap.Logger
	retries       uint64
	retryInterval time.Duration
}

// NewConsumer creates a Consumer for topic in groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	return &Consumer{
		reader:        reader,
		topic:         topic,
		logger:        logger,
		retries:       defaultHandleRetries,
		retryInterval: defaultRetryInterval,
	}
}

// Consume fetches messages until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			c.logger.Warn("failed to fetch message",
				zap.String("topic", c.topic),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		if err := c.handle(ctx, handler, msg); err != nil {
			if ctx.Err() != nil {
				// Uncommitted, so the message is redelivered after restart.
				return ctx.Err()
			}
			c.logger.Error("failed to handle message, skipping",
				zap.String("topic", c.topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Warn("failed to commit offset",
				zap.String("topic", c.topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// handle runs handler on msg, retrying failures with exponential backoff.
func (c *Consumer) handle(ctx context.Context, handler MessageHandler, msg kafkago.Message) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	bo.MaxInterval = maxHandleRetryBackoff
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.retries), ctx)
	return backoff.RetryNotify(func() error {
		return handler(ctx, msg)
	}, policy, func(err error, wait time.Duration) {
		c.logger.Warn("retrying message",
			zap.String("topic", c.topic),
			zap.Int64("offset", msg.Offset),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
