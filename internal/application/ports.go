package application

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelstay/service-booking/internal/common/domain"
	"github.com/hotelstay/service-booking/internal/common/kafka"
	bookingDomain "github.com/hotelstay/service-booking/internal/domain/booking"
	"github.com/hotelstay/service-booking/internal/domain/events"
	hotelDomain "github.com/hotelstay/service-booking/internal/domain/hotel"
	"github.com/hotelstay/service-booking/internal/domain/stay"
)

// EventPublisher publishes CloudEvents.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// AvailabilityCache is the read cache in front of availability queries.
type AvailabilityCache interface {
	HotelGeneration(ctx context.Context, hotelID uuid.UUID) (int64, error)
	GlobalGeneration(ctx context.Context) (int64, error)
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}) error
	InvalidateHotels(ctx context.Context, hotelIDs ...uuid.UUID) error
}

type noopCache struct{}

func (noopCache) HotelGeneration(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (noopCache) GlobalGeneration(context.Context) (int64, error) { return 0, nil }
func (noopCache) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noopCache) SetJSON(context.Context, string, interface{}) error { return nil }
func (noopCache) InvalidateHotels(context.Context, ...uuid.UUID) error { return nil }

func orNoop(c AvailabilityCache) AvailabilityCache {
	if c == nil {
		return noopCache{}
	}
	return c
}

// publishEvent wraps data in a CloudEvent and publishes it; failures are logged only.
func publishEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, topic, eventType, subject string, data interface{}) {
	if publisher == nil {
		return
	}
	ce, err := kafka.NewCloudEvent(events.Source, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event", zap.String("type", eventType), zap.Error(err))
		return
	}
	ce.Subject = subject
	if err := publisher.PublishEvent(ctx, topic, ce); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

// readRetryInitialInterval is the first backoff step between read attempts.
var readRetryInitialInterval = 50 * time.Millisecond

// retryRead runs op and retries retryable storage failures up to retries times.
func retryRead[T any](ctx context.Context, retries int, op func(ctx context.Context) (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = readRetryInitialInterval
	bo.MaxInterval = time.Second
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(max(retries, 0))), ctx)

	return backoff.RetryWithData(func() (T, error) {
		v, err := op(ctx)
		if err != nil && !domain.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, policy)
}

// quote prices st in room. A nil strategy falls back to the standard one.
func quote(pricing bookingDomain.PricingStrategy, room *hotelDomain.Room, st stay.Stay, guests int) (int64, error) {
	if pricing == nil {
		pricing = bookingDomain.NewStandardPricingStrategy()
	}
	price, err := pricing.Calculate(bookingDomain.PricingParams{
		NightlyRateCents: room.PricePerNightCents(),
		Nights:           st.Nights(),
		Guests:           guests,
	})
	if err != nil {
		return 0, domain.NewValidationError(err.Error())
	}
	return price, nil
}
