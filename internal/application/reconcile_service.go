package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelstay/service-booking/internal/domain/events"
	hotelDomain "github.com/hotelstay/service-booking/internal/domain/hotel"
	"github.com/hotelstay/service-booking/internal/domain/stay"
)

// ReconcileResult summarizes one sweep.
type ReconcileResult struct {
	Date     string      `json:"date"`
	Released int         `json:"released"`
	RoomIDs  []uuid.UUID `json:"room_ids"`
	HotelIDs []uuid.UUID `json:"hotel_ids"`
}

// ReconcileService restores the availability flag of rooms whose stays have all ended.
type ReconcileService struct {
	rooms     hotelDomain.RoomRepository
	cache     AvailabilityCache
	publisher EventPublisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewReconcileService creates a new ReconcileService. cache and publisher may be nil.
func NewReconcileService(
	rooms hotelDomain.RoomRepository,
	availabilityCache AvailabilityCache,
	publisher EventPublisher,
	logger *zap.Logger,
) *ReconcileService {
	return &ReconcileService{
		rooms:     rooms,
		cache:     orNoop(availabilityCache),
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// Run sweeps as of the current time.
func (s *ReconcileService) Run(ctx context.Context) error {
	_, err := s.Reconcile(ctx, s.now())
	return err
}

// Reconcile sets the flag back for flagged rooms whose latest confirmed checkout
// is before the UTC date of now. Booking rows are never touched.
func (s *ReconcileService) Reconcile(ctx context.Context, now time.Time) (*ReconcileResult, error) {
	today := stay.Today(now)

	released, err := s.rooms.ReleaseElapsed(ctx, today)
	if err != nil {
		s.logger.Error("availability sweep failed",
			zap.String("date", today.Format(stay.DateLayout)),
			zap.Error(err),
		)
		return nil, err
	}

	result := &ReconcileResult{
		Date:     today.Format(stay.DateLayout),
		Released: len(released),
		RoomIDs:  make([]uuid.UUID, 0, len(released)),
		HotelIDs: []uuid.UUID{},
	}
	seen := make(map[uuid.UUID]struct{})
	for _, r := range released {
		result.RoomIDs = append(result.RoomIDs, r.RoomID)
		if _, ok := seen[r.HotelID]; ok {
			continue
		}
		seen[r.HotelID] = struct{}{}
		result.HotelIDs = append(result.HotelIDs, r.HotelID)
	}

	s.logger.Info("availability sweep finished",
		zap.String("date", result.Date),
		zap.Int("released", result.Released),
	)

	if result.Released == 0 {
		return result, nil
	}

	if err := s.cache.InvalidateHotels(ctx, result.HotelIDs...); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.Error(err))
	}

	evt := events.RoomsReleasedEvent{
		RoomIDs:    result.RoomIDs,
		HotelIDs:   result.HotelIDs,
		SweepDate:  result.Date,
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, events.TopicRoomEvents, events.RoomsReleased, result.Date, evt)

	return result, nil
}
