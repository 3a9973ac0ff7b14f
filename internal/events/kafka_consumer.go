package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/hotelstay/service-booking/internal/common/kafka"
	"github.com/hotelstay/service-booking/internal/domain/events"
)

// CacheInvalidator drops cached availability for hotels.
type CacheInvalidator interface {
	InvalidateHotels(ctx context.Context, hotelIDs ...uuid.UUID) error
}

// PropertyEventConsumer listens to property events and invalidates cached availability.
type PropertyEventConsumer struct {
	consumer *kafka.Consumer
	cache    CacheInvalidator
	logger   *zap.Logger
}

// NewPropertyEventConsumer creates a new PropertyEventConsumer.
func NewPropertyEventConsumer(
	brokers []string,
	groupID string,
	cache CacheInvalidator,
	logger *zap.Logger,
) *PropertyEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPropertyEvents, logger)
	return &PropertyEventConsumer{
		consumer: consumer,
		cache:    cache,
		logger:   logger,
	}
}

// Start begins consuming property events. This blocks until the context is cancelled.
func (c *PropertyEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PropertyEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PropertyEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from property topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PropertyRoomUpdated:
		var evt events.RoomUpdatedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse RoomUpdatedEvent data", zap.Error(err))
			return nil
		}
		return c.invalidate(ctx, cloudEvent.Type, evt.HotelID)
	case events.PropertyHotelUpdated:
		var evt events.HotelUpdatedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse HotelUpdatedEvent data", zap.Error(err))
			return nil
		}
		return c.invalidate(ctx, cloudEvent.Type, evt.HotelID)
	default:
		c.logger.Debug("ignoring unhandled property event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PropertyEventConsumer) invalidate(ctx context.Context, eventType string, hotelID uuid.UUID) error {
	if hotelID == uuid.Nil {
		c.logger.Warn("property event without hotel id", zap.String("type", eventType))
		return nil
	}
	if err := c.cache.InvalidateHotels(ctx, hotelID); err != nil {
		c.logger.Error("failed to invalidate availability cache",
			zap.String("hotel_id", hotelID.String()),
			zap.Error(err),
		)
		return err
	}
	c.logger.Info("availability cache invalidated",
		zap.String("type", eventType),
		zap.String("hotel_id", hotelID.String()),
	)
	return nil
}
