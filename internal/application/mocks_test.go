package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/hotelstay/service-booking/internal/common/domain"
	"github.com/hotelstay/service-booking/internal/common/kafka"
	bookingDomain "github.com/hotelstay/service-booking/internal/domain/booking"
	hotelDomain "github.com/hotelstay/service-booking/internal/domain/hotel"
	"github.com/hotelstay/service-booking/internal/domain/stay"
)

// MockRoomRepository is a mock implementation of RoomRepository
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*hotelDomain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hotelDomain.Room), args.Error(1)
}

func (m *MockRoomRepository) FindByHotelIDs(ctx context.Context, hotelIDs []uuid.UUID) ([]*hotelDomain.Room, error) {
	args := m.Called(ctx, hotelIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*hotelDomain.Room), args.Error(1)
}

func (m *MockRoomRepository) MarkUnavailable(ctx context.Context, roomID uuid.UUID) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MockRoomRepository) ReleaseElapsed(ctx context.Context, today time.Time) ([]hotelDomain.ReleasedRoom, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hotelDomain.ReleasedRoom), args.Error(1)
}

// MockHotelRepository is a mock implementation of HotelRepository
type MockHotelRepository struct {
	mock.Mock
}

func (m *MockHotelRepository) FindByID(ctx context.Context, id uuid.UUID) (*hotelDomain.Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hotelDomain.Hotel), args.Error(1)
}

func (m *MockHotelRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*hotelDomain.Hotel, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*hotelDomain.Hotel), args.Error(1)
}

func (m *MockHotelRepository) SearchByCity(ctx context.Context, city string) ([]*hotelDomain.Hotel, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*hotelDomain.Hotel), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error {
	args := m.Called(ctx, topic, ce)
	return args.Error(0)
}

// memoryBookings is an in-memory BookingRepository. Insert holds a mutex, so
// it serializes the check and the write the way the row lock does.
type memoryBookings struct {
	mu       sync.Mutex
	bookings []*bookingDomain.Booking

	hasOverlapErrs []error
	hasOverlapHits int
}

func (r *memoryBookings) add(b *bookingDomain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, b)
}

func (r *memoryBookings) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID() == id {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("booking", id.String())
}

func (r *memoryBookings) FindByIdempotencyKey(_ context.Context, userID uuid.UUID, key string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.UserID() == userID && b.IdempotencyKey() == key {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("booking", key)
}

func (r *memoryBookings) FindByUserID(_ context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.UserID() == userID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryBookings) FindByHotelOwner(context.Context, uuid.UUID, int, int) ([]*bookingDomain.Booking, int64, error) {
	return nil, 0, nil
}

func (r *memoryBookings) CountByStatus(context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[b.Status().String()]++
	}
	return counts, nil
}

func (r *memoryBookings) HasOverlap(_ context.Context, roomID uuid.UUID, s stay.Stay) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hasOverlapHits++
	if len(r.hasOverlapErrs) > 0 {
		err := r.hasOverlapErrs[0]
		r.hasOverlapErrs = r.hasOverlapErrs[1:]
		return false, err
	}
	return r.overlapLocked(roomID, s), nil
}

func (r *memoryBookings) BookedRoomIDs(_ context.Context, roomIDs []uuid.UUID, s stay.Stay) (map[uuid.UUID]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booked := make(map[uuid.UUID]struct{})
	for _, id := range roomIDs {
		if r.overlapLocked(id, s) {
			booked[id] = struct{}{}
		}
	}
	return booked, nil
}

func (r *memoryBookings) Insert(_ context.Context, b *bookingDomain.Booking) (*bookingDomain.Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.IdempotencyKey() != "" {
		for _, existing := range r.bookings {
			if existing.UserID() == b.UserID() && existing.IdempotencyKey() == b.IdempotencyKey() {
				return existing, true, nil
			}
		}
	}
	if r.overlapLocked(b.RoomID(), b.Stay()) {
		return nil, false, domain.NewRoomUnavailableError(b.RoomID().String())
	}
	r.bookings = append(r.bookings, b)
	return b, false, nil
}

func (r *memoryBookings) overlapLocked(roomID uuid.UUID, s stay.Stay) bool {
	for _, b := range r.bookings {
		if b.Status().BlocksRoom() && b.RoomID() == roomID && b.Stay().Overlaps(s) {
			return true
		}
	}
	return false
}

func (r *memoryBookings) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

// --- Fixtures ---

func mustStay(in, out string) stay.Stay {
	s, err := stay.Parse(in, out)
	if err != nil {
		panic(err)
	}
	return s
}

func stayPtr(in, out string) *stay.Stay {
	s := mustStay(in, out)
	return &s
}

func newTestRoom(hotelID uuid.UUID, priceCents int64, maxGuests int, available bool) *hotelDomain.Room {
	now := time.Now().UTC()
	return hotelDomain.ReconstructRoom(uuid.New(), hotelID, "101", "double", priceCents, maxGuests, available, nil, nil, now, now)
}

func newTestHotel(name, city string) *hotelDomain.Hotel {
	now := time.Now().UTC()
	return hotelDomain.ReconstructHotel(uuid.New(), uuid.New(), name, city, "1 Main St", "", "", now, now)
}

func confirmedBooking(userID uuid.UUID, room *hotelDomain.Room, s stay.Stay) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(uuid.New(), userID, room.ID(), room.HotelID(), s,
		int64(s.Nights())*room.PricePerNightCents(), 1, bookingDomain.StatusConfirmed, "", time.Now().UTC())
}
