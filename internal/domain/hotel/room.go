package hotel

import (
	"time"

	"github.com/google/uuid"
)

// Amenity is a named room feature.
type Amenity struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Room is a bookable unit of a Hotel.
//
// isAvailable is a denormalized hint: the booking path clears it and the
// nightly sweep sets it again. Date-ranged availability never depends on it.
type Room struct {
	id                 uuid.UUID
	hotelID            uuid.UUID
	roomNumber         string
	roomType           string
	pricePerNightCents int64
	maxGuests          int
	isAvailable        bool
	amenities          []Amenity
	images             []string
	createdAt          time.Time
	updatedAt          time.Time
}

// ReconstructRoom rebuilds a Room from persistence data (no validation).
func ReconstructRoom(
	id uuid.UUID,
	hotelID uuid.UUID,
	roomNumber string,
	roomType string,
	pricePerNightCents int64,
	maxGuests int,
	isAvailable bool,
	amenities []Amenity,
	images []string,
	createdAt time.Time,
	updatedAt time.Time,
) *Room {
	return &Room{
		id:                 id,
		hotelID:            hotelID,
		roomNumber:         roomNumber,
		roomType:           roomType,
		pricePerNightCents: pricePerNightCents,
		maxGuests:          maxGuests,
		isAvailable:        isAvailable,
		amenities:          amenities,
		images:             images,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// ID returns the room's unique identifier.
func (r *Room) ID() uuid.UUID { return r.id }

// HotelID returns the owning hotel.
func (r *Room) HotelID() uuid.UUID { return r.hotelID }

// RoomNumber returns the room number.
func (r *Room) RoomNumber() string { return r.roomNumber }

// RoomType returns the room type label.
func (r *Room) RoomType() string { return r.roomType }

// PricePerNightCents returns the nightly rate in cents.
func (r *Room) PricePerNightCents() int64 { return r.pricePerNightCents }

// MaxGuests returns the guest capacity.
func (r *Room) MaxGuests() int { return r.maxGuests }

// IsAvailable returns the denormalized availability flag.
func (r *Room) IsAvailable() bool { return r.isAvailable }

// Amenities returns the room's amenities.
func (r *Room) Amenities() []Amenity { return r.amenities }

// Images returns the room's image references.
func (r *Room) Images() []string { return r.images }

// CreatedAt returns the creation timestamp.
func (r *Room) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }

// CanHost reports whether the room fits guests.
func (r *Room) CanHost(guests int) bool {
	return r.maxGuests <= 0 || guests <= r.maxGuests
}
