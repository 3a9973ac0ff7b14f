package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hotelstay/service-booking/internal/common/domain"
	"github.com/hotelstay/service-booking/internal/domain/stay"
)

// MaxIdempotencyKeyLength bounds client-supplied idempotency keys.
const MaxIdempotencyKeyLength = 128

// Booking is the aggregate root for the booking domain. It is immutable once created.
type Booking struct {
	id              uuid.UUID
	userID          uuid.UUID
	roomID          uuid.UUID
	hotelID         uuid.UUID
	stay            stay.Stay
	totalPriceCents int64
	guests          int
	status          BookingStatus
	idempotencyKey  string
	createdAt       time.Time
}

// NewBooking creates a confirmed Booking.
func NewBooking(
	userID uuid.UUID,
	roomID uuid.UUID,
	hotelID uuid.UUID,
	s stay.Stay,
	totalPriceCents int64,
	guests int,
	idempotencyKey string,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if roomID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}
	if s.IsZero() {
		return nil, domain.NewValidationError("check-in and check-out dates are required")
	}
	if totalPriceCents < 0 {
		return nil, domain.NewValidationError("total price must not be negative")
	}
	if guests < 1 {
		return nil, domain.NewValidationError("at least one guest is required")
	}
	key := strings.TrimSpace(idempotencyKey)
	if len(key) > MaxIdempotencyKeyLength {
		return nil, domain.NewValidationError("idempotency key is too long")
	}

	return &Booking{
		id:              uuid.New(),
		userID:          userID,
		roomID:          roomID,
		hotelID:         hotelID,
		stay:            s,
		totalPriceCents: totalPriceCents,
		guests:          guests,
		status:          StatusConfirmed,
		idempotencyKey:  key,
		createdAt:       time.Now().UTC(),
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	userID uuid.UUID,
	roomID uuid.UUID,
	hotelID uuid.UUID,
	s stay.Stay,
	totalPriceCents int64,
	guests int,
	status BookingStatus,
	idempotencyKey string,
	createdAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		userID:          userID,
		roomID:          roomID,
		hotelID:         hotelID,
		stay:            s,
		totalPriceCents: totalPriceCents,
		guests:          guests,
		status:          status,
		idempotencyKey:  idempotencyKey,
		createdAt:       createdAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// UserID returns the guest's user ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// RoomID returns the booked room.
func (b *Booking) RoomID() uuid.UUID { return b.roomID }

// HotelID returns the hotel of the booked room.
func (b *Booking) HotelID() uuid.UUID { return b.hotelID }

// Stay returns the booked nights.
func (b *Booking) Stay() stay.Stay { return b.stay }

// TotalPriceCents returns the total price in cents.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// Guests returns the number of guests requested.
func (b *Booking) Guests() int { return b.guests }

// Status returns the booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// IdempotencyKey returns the client-supplied idempotency key, or "".
func (b *Booking) IdempotencyKey() string { return b.idempotencyKey }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// --- Behavior ---

// BelongsTo reports whether the booking was made by userID.
func (b *Booking) BelongsTo(userID uuid.UUID) bool {
	return b.userID == userID
}
