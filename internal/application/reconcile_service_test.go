package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotelstay/service-booking/internal/cache"
	"github.com/hotelstay/service-booking/internal/common/kafka"
	"github.com/hotelstay/service-booking/internal/domain/events"
	hotelDomain "github.com/hotelstay/service-booking/internal/domain/hotel"
)

func TestReconcileService_Reconcile_ReleasesAndNotifies(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.NewClient(cache.Config{Addr: mr.Addr(), TTL: time.Minute}, zap.NewNop())
	t.Cleanup(func() { _ = client.Close() })

	hotelID := uuid.New()
	released := []hotelDomain.ReleasedRoom{
		{RoomID: uuid.New(), HotelID: hotelID},
		{RoomID: uuid.New(), HotelID: hotelID},
	}
	today := time.Date(2025, 12, 13, 0, 0, 0, 0, time.UTC)

	rooms := new(MockRoomRepository)
	rooms.On("ReleaseElapsed", mock.Anything, today).Return(released, nil).Once()
	rooms.On("ReleaseElapsed", mock.Anything, today).Return([]hotelDomain.ReleasedRoom{}, nil).Once()
	publisher := new(MockPublisher)
	publisher.On("PublishEvent", mock.Anything, events.TopicRoomEvents, mock.MatchedBy(func(ce kafka.CloudEvent) bool {
		return ce.Type == events.RoomsReleased && ce.Subject == "2025-12-13"
	})).Return(nil).Once()

	svc := NewReconcileService(rooms, client, publisher, zap.NewNop())
	now := time.Date(2025, 12, 13, 0, 5, 0, 0, time.UTC)

	result, err := svc.Reconcile(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-13", result.Date)
	assert.Equal(t, 2, result.Released)
	assert.Len(t, result.RoomIDs, 2)
	assert.Equal(t, []uuid.UUID{hotelID}, result.HotelIDs)

	gen, err := client.HotelGeneration(context.Background(), hotelID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	second, err := svc.Reconcile(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Released)
	assert.Empty(t, second.RoomIDs)

	gen, err = client.HotelGeneration(context.Background(), hotelID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen, "a no-op sweep leaves the cache alone")

	rooms.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestReconcileService_Reconcile_UsesUTCDate(t *testing.T) {
	rooms := new(MockRoomRepository)
	rooms.On("ReleaseElapsed", mock.Anything, time.Date(2025, 12, 13, 0, 0, 0, 0, time.UTC)).
		Return([]hotelDomain.ReleasedRoom{}, nil)
	svc := NewReconcileService(rooms, nil, nil, zap.NewNop())

	local := time.FixedZone("UTC-5", -5*60*60)
	result, err := svc.Reconcile(context.Background(), time.Date(2025, 12, 12, 21, 0, 0, 0, local))

	require.NoError(t, err)
	assert.Equal(t, "2025-12-13", result.Date)
}

func TestReconcileService_Reconcile_Error(t *testing.T) {
	rooms := new(MockRoomRepository)
	rooms.On("ReleaseElapsed", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	publisher := new(MockPublisher)
	svc := NewReconcileService(rooms, nil, publisher, zap.NewNop())

	_, err := svc.Reconcile(context.Background(), time.Now())

	require.Error(t, err)
	publisher.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileService_Run(t *testing.T) {
	rooms := new(MockRoomRepository)
	rooms.On("ReleaseElapsed", mock.Anything, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)).
		Return([]hotelDomain.ReleasedRoom{}, nil)
	svc := NewReconcileService(rooms, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC) }

	require.NoError(t, svc.Run(context.Background()))
	rooms.AssertExpectations(t)
}
