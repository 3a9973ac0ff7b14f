package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/hotelstay/service-booking/internal/domain/stay"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByIdempotencyKey retrieves the booking a user created with key.
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*Booking, error)

	// FindByUserID retrieves a user's bookings, newest first, with pagination.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByHotelOwner retrieves bookings for rooms of hotels owned by ownerID (admin).
	FindByHotelOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// HasOverlap reports whether a blocking booking for roomID overlaps s.
	HasOverlap(ctx context.Context, roomID uuid.UUID, s stay.Stay) (bool, error)

	// BookedRoomIDs returns the subset of roomIDs with a blocking booking overlapping s.
	BookedRoomIDs(ctx context.Context, roomIDs []uuid.UUID, s stay.Stay) (map[uuid.UUID]struct{}, error)

	// Insert persists b only if no blocking booking for its room overlaps its stay.
	// The check and the write are atomic with respect to other Inserts for the same room.
	// If b carries an idempotency key the user already used, the earlier booking is
	// returned with replayed set and nothing is written.
	Insert(ctx context.Context, b *Booking) (stored *Booking, replayed bool, err error)
}
