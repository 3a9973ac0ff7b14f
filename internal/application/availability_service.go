package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelstay/service-booking/internal/cache"
	"github.com/hotelstay/service-booking/internal/common/domain"
	bookingDomain "github.com/hotelstay/service-booking/internal/domain/booking"
	hotelDomain "github.com/hotelstay/service-booking/internal/domain/hotel"
	"github.com/hotelstay/service-booking/internal/domain/stay"
)

// RoomDTO is the response representation of a room.
type RoomDTO struct {
	ID                 uuid.UUID             `json:"id"`
	HotelID            uuid.UUID             `json:"hotel_id"`
	RoomNumber         string                `json:"room_number"`
	RoomType           string                `json:"room_type"`
	PricePerNightCents int64                 `json:"price_per_night_cents"`
	MaxGuests          int                   `json:"max_guests"`
	IsAvailable        bool                  `json:"is_available"`
	Amenities          []hotelDomain.Amenity `json:"amenities"`
	Images             []string              `json:"images"`
}

// HotelDTO is the response representation of a hotel with its free rooms.
type HotelDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Address     string    `json:"address"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Rooms       []RoomDTO `json:"rooms"`
}

// AvailabilityDTO answers whether a room is free for a stay.
type AvailabilityDTO struct {
	RoomID   uuid.UUID `json:"room_id"`
	CheckIn  string    `json:"check_in"`
	CheckOut string    `json:"check_out"`
	Free     bool      `json:"free"`
}

// QuoteDTO is the price of a stay in a room.
type QuoteDTO struct {
	RoomID             uuid.UUID `json:"room_id"`
	CheckIn            string    `json:"check_in"`
	CheckOut           string    `json:"check_out"`
	Nights             int       `json:"nights"`
	PricePerNightCents int64     `json:"price_per_night_cents"`
	TotalPriceCents    int64     `json:"total_price_cents"`
}

// AvailabilityService answers availability questions from booking rows.
// The room flag is only consulted when no dates are given.
type AvailabilityService struct {
	rooms       hotelDomain.RoomRepository
	hotels      hotelDomain.HotelRepository
	bookings    bookingDomain.BookingRepository
	pricing     bookingDomain.PricingStrategy
	cache       AvailabilityCache
	readRetries int
	logger      *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService. cache may be nil.
func NewAvailabilityService(
	rooms hotelDomain.RoomRepository,
	hotels hotelDomain.HotelRepository,
	bookings bookingDomain.BookingRepository,
	pricing bookingDomain.PricingStrategy,
	availabilityCache AvailabilityCache,
	readRetries int,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		rooms:       rooms,
		hotels:      hotels,
		bookings:    bookings,
		pricing:     pricing,
		cache:       orNoop(availabilityCache),
		readRetries: readRetries,
		logger:      logger,
	}
}

// IsRoomFree reports whether no confirmed booking of roomID overlaps s.
func (s *AvailabilityService) IsRoomFree(ctx context.Context, roomID uuid.UUID, st stay.Stay) (bool, error) {
	if roomID == uuid.Nil {
		return false, domain.NewValidationError("room ID is required")
	}
	if _, err := retryRead(ctx, s.readRetries, func(ctx context.Context) (*hotelDomain.Room, error) {
		return s.rooms.FindByID(ctx, roomID)
	}); err != nil {
		return false, err
	}

	overlap, err := retryRead(ctx, s.readRetries, func(ctx context.Context) (bool, error) {
		return s.bookings.HasOverlap(ctx, roomID, st)
	})
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// CheckAvailability wraps IsRoomFree in a response DTO.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, roomID uuid.UUID, st stay.Stay) (*AvailabilityDTO, error) {
	free, err := s.IsRoomFree(ctx, roomID, st)
	if err != nil {
		return nil, err
	}
	return &AvailabilityDTO{
		RoomID:   roomID,
		CheckIn:  st.CheckIn().Format(stay.DateLayout),
		CheckOut: st.CheckOut().Format(stay.DateLayout),
		Free:     free,
	}, nil
}

// ListFreeRooms lists a hotel's rooms that are free for st, or whose flag is
// set when st is nil.
func (s *AvailabilityService) ListFreeRooms(ctx context.Context, hotelID uuid.UUID, st *stay.Stay) ([]RoomDTO, error) {
	if hotelID == uuid.Nil {
		return nil, domain.NewValidationError("hotel ID is required")
	}

	key := ""
	if gen, err := s.cache.HotelGeneration(ctx, hotelID); err != nil {
		s.logger.Warn("cache generation unavailable", zap.String("hotel_id", hotelID.String()), zap.Error(err))
	} else {
		key = cache.FreeRoomsKey(hotelID, gen, st)
		var cached []RoomDTO
		if hit := s.cacheGet(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	if _, err := retryRead(ctx, s.readRetries, func(ctx context.Context) (*hotelDomain.Hotel, error) {
		return s.hotels.FindByID(ctx, hotelID)
	}); err != nil {
		return nil, err
	}

	rooms, err := retryRead(ctx, s.readRetries, func(ctx context.Context) ([]*hotelDomain.Room, error) {
		return s.rooms.FindByHotelIDs(ctx, []uuid.UUID{hotelID})
	})
	if err != nil {
		return nil, err
	}

	free, err := s.filterFree(ctx, rooms, st)
	if err != nil {
		return nil, err
	}

	result := toRoomDTOs(free)
	if key != "" {
		s.cacheSet(ctx, key, result)
	}
	return result, nil
}

// SearchHotels finds hotels in city with at least one free room that fits guests.
// guests <= 0 means any capacity.
func (s *AvailabilityService) SearchHotels(ctx context.Context, city string, st *stay.Stay, guests int) ([]HotelDTO, error) {
	key := ""
	if gen, err := s.cache.GlobalGeneration(ctx); err != nil {
		s.logger.Warn("cache generation unavailable", zap.Error(err))
	} else {
		key = cache.SearchKey(city, guests, gen, st)
		var cached []HotelDTO
		if hit := s.cacheGet(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	hotels, err := retryRead(ctx, s.readRetries, func(ctx context.Context) ([]*hotelDomain.Hotel, error) {
		return s.hotels.SearchByCity(ctx, city)
	})
	if err != nil {
		return nil, err
	}

	if len(hotels) == 0 {
		return []HotelDTO{}, nil
	}

	hotelIDs := make([]uuid.UUID, len(hotels))
	for i, h := range hotels {
		hotelIDs[i] = h.ID()
	}
	rooms, err := retryRead(ctx, s.readRetries, func(ctx context.Context) ([]*hotelDomain.Room, error) {
		return s.rooms.FindByHotelIDs(ctx, hotelIDs)
	})
	if err != nil {
		return nil, err
	}

	fitting := make([]*hotelDomain.Room, 0, len(rooms))
	for _, r := range rooms {
		if guests <= 0 || r.CanHost(guests) {
			fitting = append(fitting, r)
		}
	}

	free, err := s.filterFree(ctx, fitting, st)
	if err != nil {
		return nil, err
	}

	byHotel := make(map[uuid.UUID][]RoomDTO)
	for _, r := range free {
		byHotel[r.HotelID()] = append(byHotel[r.HotelID()], toRoomDTO(r))
	}

	result := make([]HotelDTO, 0, len(byHotel))
	for _, h := range hotels {
		freeRooms, ok := byHotel[h.ID()]
		if !ok {
			continue
		}
		result = append(result, HotelDTO{
			ID:          h.ID(),
			Name:        h.Name(),
			City:        h.City(),
			Address:     h.Address(),
			Description: h.Description(),
			Image:       h.Image(),
			Rooms:       freeRooms,
		})
	}

	if key != "" {
		s.cacheSet(ctx, key, result)
	}
	return result, nil
}

// GetQuote prices st in roomID with the configured pricing strategy.
func (s *AvailabilityService) GetQuote(ctx context.Context, roomID uuid.UUID, st stay.Stay) (*QuoteDTO, error) {
	if roomID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}
	room, err := retryRead(ctx, s.readRetries, func(ctx context.Context) (*hotelDomain.Room, error) {
		return s.rooms.FindByID(ctx, roomID)
	})
	if err != nil {
		return nil, err
	}
	total, err := quote(s.pricing, room, st, 0)
	if err != nil {
		return nil, err
	}
	return &QuoteDTO{
		RoomID:             roomID,
		CheckIn:            st.CheckIn().Format(stay.DateLayout),
		CheckOut:           st.CheckOut().Format(stay.DateLayout),
		Nights:             st.Nights(),
		PricePerNightCents: room.PricePerNightCents(),
		TotalPriceCents:    total,
	}, nil
}

// filterFree keeps rooms without an overlapping booking when st is set, and
// rooms with the flag set otherwise.
func (s *AvailabilityService) filterFree(ctx context.Context, rooms []*hotelDomain.Room, st *stay.Stay) ([]*hotelDomain.Room, error) {
	free := make([]*hotelDomain.Room, 0, len(rooms))
	if len(rooms) == 0 {
		return free, nil
	}
	if st == nil {
		for _, r := range rooms {
			if r.IsAvailable() {
				free = append(free, r)
			}
		}
		return free, nil
	}

	ids := make([]uuid.UUID, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID()
	}
	booked, err := retryRead(ctx, s.readRetries, func(ctx context.Context) (map[uuid.UUID]struct{}, error) {
		return s.bookings.BookedRoomIDs(ctx, ids, *st)
	})
	if err != nil {
		return nil, err
	}
	for _, r := range rooms {
		if _, taken := booked[r.ID()]; !taken {
			free = append(free, r)
		}
	}
	return free, nil
}

func (s *AvailabilityService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *AvailabilityService) cacheSet(ctx context.Context, key string, v interface{}) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := s.cache.SetJSON(ctx, key, v); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func toRoomDTO(r *hotelDomain.Room) RoomDTO {
	amenities := r.Amenities()
	if amenities == nil {
		amenities = []hotelDomain.Amenity{}
	}
	images := r.Images()
	if images == nil {
		images = []string{}
	}
	return RoomDTO{
		ID:                 r.ID(),
		HotelID:            r.HotelID(),
		RoomNumber:         r.RoomNumber(),
		RoomType:           r.RoomType(),
		PricePerNightCents: r.PricePerNightCents(),
		MaxGuests:          r.MaxGuests(),
		IsAvailable:        r.IsAvailable(),
		Amenities:          amenities,
		Images:             images,
	}
}

func toRoomDTOs(rooms []*hotelDomain.Room) []RoomDTO {
	result := make([]RoomDTO, len(rooms))
	for i, r := range rooms {
		result[i] = toRoomDTO(r)
	}
	return result
}
