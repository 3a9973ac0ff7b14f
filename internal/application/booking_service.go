package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelstay/service-booking/internal/common/domain"
	bookingDomain "github.com/hotelstay/service-booking/internal/domain/booking"
	"github.com/hotelstay/service-booking/internal/domain/events"
	hotelDomain "github.com/hotelstay/service-booking/internal/domain/hotel"
	"github.com/hotelstay/service-booking/internal/domain/stay"
)

// sideEffectTimeout bounds the best-effort work done after a booking commits.
const sideEffectTimeout = 3 * time.Second

// CreateBookingRequest holds the data needed to create a new booking.
// TotalPriceCents of 0 means "price it at the room's nightly rate".
type CreateBookingRequest struct {
	RoomID          uuid.UUID `json:"room_id"`
	CheckIn         string    `json:"check_in"`
	CheckOut        string    `json:"check_out"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Guests          int       `json:"guests"`
	IdempotencyKey  string    `json:"idempotency_key,omitempty"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	RoomID          uuid.UUID `json:"room_id"`
	HotelID         uuid.UUID `json:"hotel_id"`
	HotelName       string    `json:"hotel_name,omitempty"`
	CheckIn         string    `json:"check_in"`
	CheckOut        string    `json:"check_out"`
	Nights          int       `json:"nights"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Guests          int       `json:"guests"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// BookingStatsDTO holds booking counts (admin).
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings  bookingDomain.BookingRepository
	rooms     hotelDomain.RoomRepository
	hotels    hotelDomain.HotelRepository
	pricing   bookingDomain.PricingStrategy
	cache     AvailabilityCache
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. cache and publisher may be nil.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	rooms hotelDomain.RoomRepository,
	hotels hotelDomain.HotelRepository,
	pricing bookingDomain.PricingStrategy,
	availabilityCache AvailabilityCache,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		rooms:     rooms,
		hotels:    hotels,
		pricing:   pricing,
		cache:     orNoop(availabilityCache),
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking books a room for userID. replayed is true when the idempotency
// key matched an earlier booking, which is returned unchanged.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, bool, error) {
	if req.RoomID == uuid.Nil {
		return nil, false, domain.NewValidationError("room ID is required")
	}
	st, err := stay.Parse(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, false, err
	}
	if req.Guests < 1 {
		return nil, false, domain.NewValidationError("at least one guest is required")
	}
	if req.TotalPriceCents < 0 {
		return nil, false, domain.NewValidationError("total price must not be negative")
	}
	key := strings.TrimSpace(req.IdempotencyKey)

	if key != "" {
		prior, err := s.bookings.FindByIdempotencyKey(ctx, userID, key)
		switch {
		case err == nil:
			s.logger.Info("idempotent booking replay",
				zap.String("booking_id", prior.ID().String()),
				zap.String("user_id", userID.String()),
			)
			result := toBookingDTO(prior)
			return &result, true, nil
		case !domain.IsKind(err, domain.KindNotFound):
			return nil, false, err
		}
	}

	room, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, false, err
	}
	if !room.CanHost(req.Guests) {
		return nil, false, domain.NewValidationError(
			fmt.Sprintf("room holds at most %d guests", room.MaxGuests()))
	}

	price := req.TotalPriceCents
	if price == 0 {
		price, err = quote(s.pricing, room, st, req.Guests)
		if err != nil {
			return nil, false, err
		}
	}

	bk, err := bookingDomain.NewBooking(userID, room.ID(), room.HotelID(), st, price, req.Guests, key)
	if err != nil {
		return nil, false, err
	}

	stored, replayed, err := s.bookings.Insert(ctx, bk)
	if err != nil {
		if domain.IsKind(err, domain.KindRoomUnavailable) {
			s.logger.Info("booking rejected, room unavailable",
				zap.String("room_id", room.ID().String()),
				zap.String("stay", st.String()),
			)
		}
		return nil, false, err
	}
	if replayed {
		result := toBookingDTO(stored)
		return &result, true, nil
	}

	s.logger.Info("booking confirmed",
		zap.String("booking_id", stored.ID().String()),
		zap.String("room_id", stored.RoomID().String()),
		zap.String("stay", stored.Stay().String()),
	)

	s.afterConfirm(ctx, stored)

	result := toBookingDTO(stored)
	return &result, false, nil
}

// afterConfirm runs the best-effort updates that follow a committed booking.
// None of them can undo the booking.
func (s *BookingService) afterConfirm(ctx context.Context, bk *bookingDomain.Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := s.rooms.MarkUnavailable(ctx, bk.RoomID()); err != nil {
		s.logger.Warn("failed to clear room availability flag",
			zap.String("room_id", bk.RoomID().String()),
			zap.Error(err),
		)
	}

	if err := s.cache.InvalidateHotels(ctx, bk.HotelID()); err != nil {
		s.logger.Warn("failed to invalidate availability cache",
			zap.String("hotel_id", bk.HotelID().String()),
			zap.Error(err),
		)
	}

	evt := events.BookingConfirmedEvent{
		BookingID:       bk.ID(),
		UserID:          bk.UserID(),
		RoomID:          bk.RoomID(),
		HotelID:         bk.HotelID(),
		CheckIn:         bk.Stay().CheckIn().Format(stay.DateLayout),
		CheckOut:        bk.Stay().CheckOut().Format(stay.DateLayout),
		Guests:          bk.Guests(),
		TotalPriceCents: bk.TotalPriceCents(),
		OccurredAt:      time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, events.TopicBookingEvents, events.BookingConfirmed, bk.ID().String(), evt)
}

// GetBooking retrieves one of userID's bookings.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.BelongsTo(userID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	dtos := []BookingDTO{toBookingDTO(bk)}
	s.attachHotelNames(ctx, dtos)
	return &dtos[0], nil
}

// GetUserBookings retrieves userID's bookings with hotel names attached.
func (s *BookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := toBookingDTOs(bookings)
	s.attachHotelNames(ctx, dtos)
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ListOwnerBookings retrieves bookings of rooms in hotels owned by ownerID (admin).
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByHotelOwner(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := toBookingDTOs(bookings)
	s.attachHotelNames(ctx, dtos)
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// attachHotelNames fills HotelName on dtos. A failed lookup leaves names empty.
func (s *BookingService) attachHotelNames(ctx context.Context, dtos []BookingDTO) {
	ids := make([]uuid.UUID, 0, len(dtos))
	seen := make(map[uuid.UUID]struct{}, len(dtos))
	for _, d := range dtos {
		if _, ok := seen[d.HotelID]; ok {
			continue
		}
		seen[d.HotelID] = struct{}{}
		ids = append(ids, d.HotelID)
	}
	if len(ids) == 0 {
		return
	}

	hotels, err := s.hotels.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load hotel names", zap.Error(err))
		return
	}
	names := make(map[uuid.UUID]string, len(hotels))
	for _, h := range hotels {
		names[h.ID()] = h.Name()
	}
	for i := range dtos {
		dtos[i].HotelName = names[dtos[i].HotelID]
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:              bk.ID(),
		UserID:          bk.UserID(),
		RoomID:          bk.RoomID(),
		HotelID:         bk.HotelID(),
		CheckIn:         bk.Stay().CheckIn().Format(stay.DateLayout),
		CheckOut:        bk.Stay().CheckOut().Format(stay.DateLayout),
		Nights:          bk.Stay().Nights(),
		TotalPriceCents: bk.TotalPriceCents(),
		Guests:          bk.Guests(),
		Status:          string(bk.Status()),
		CreatedAt:       bk.CreatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
