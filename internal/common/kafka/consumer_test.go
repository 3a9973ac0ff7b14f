package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConsumer(retries uint64) *Consumer {
	return &Consumer{
		topic:         "property.events",
		logger:        zap.NewNop(),
		retries:       retries,
		retryInterval: time.Millisecond,
	}
}

func TestConsumer_Handle_RetriesUntilSuccess(t *testing.T) {
	c := newTestConsumer(5)
	calls := 0

	err := c.handle(context.Background(), func(context.Context, kafkago.Message) error {
		calls++
		if calls < 3 {
			return errors.New("redis down")
		}
		return nil
	}, kafkago.Message{Offset: 7})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConsumer_Handle_GivesUp(t *testing.T) {
	c := newTestConsumer(2)
	calls := 0

	err := c.handle(context.Background(), func(context.Context, kafkago.Message) error {
		calls++
		return errors.New("redis down")
	}, kafkago.Message{})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "first attempt plus two retries")
}

func TestConsumer_Handle_StopsOnCancel(t *testing.T) {
	c := newTestConsumer(100)
	c.retryInterval = 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := c.handle(ctx, func(context.Context, kafkago.Message) error {
		calls++
		cancel()
		return errors.New("redis down")
	}, kafkago.Message{})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Error(t, ctx.Err())
}
