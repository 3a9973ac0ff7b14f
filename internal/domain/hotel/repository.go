package hotel

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HotelRepository reads hotels.
type HotelRepository interface {
	// FindByID retrieves a hotel by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Hotel, error)

	// FindByIDs retrieves the hotels among ids that exist.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Hotel, error)

	// SearchByCity retrieves hotels whose city contains city, case-insensitively.
	// An empty city matches every hotel.
	SearchByCity(ctx context.Context, city string) ([]*Hotel, error)
}

// RoomRepository reads rooms and maintains the availability flag.
type RoomRepository interface {
	// FindByID retrieves a room by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindByHotelIDs retrieves the rooms of the given hotels.
	FindByHotelIDs(ctx context.Context, hotelIDs []uuid.UUID) ([]*Room, error)

	// MarkUnavailable clears the availability flag of a room.
	MarkUnavailable(ctx context.Context, roomID uuid.UUID) error

	// ReleaseElapsed sets the flag back for flagged rooms that have at least one
	// confirmed booking and none with a checkout on or after today. It returns
	// the hotels of the released rooms.
	ReleaseElapsed(ctx context.Context, today time.Time) ([]ReleasedRoom, error)
}

// ReleasedRoom identifies a room whose flag the sweep restored.
type ReleasedRoom struct {
	RoomID  uuid.UUID
	HotelID uuid.UUID
}
