package hotel

import (
	"time"

	"github.com/google/uuid"
)

// Hotel is read-only context for availability and booking. Property
// management owns its lifecycle.
type Hotel struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	name        string
	city        string
	address     string
	description string
	image       string
	createdAt   time.Time
	updatedAt   time.Time
}

// ReconstructHotel rebuilds a Hotel from persistence data (no validation).
func ReconstructHotel(
	id uuid.UUID,
	ownerID uuid.UUID,
	name string,
	city string,
	address string,
	description string,
	image string,
	createdAt time.Time,
	updatedAt time.Time,
) *Hotel {
	return &Hotel{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		city:        city,
		address:     address,
		description: description,
		image:       image,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the hotel's unique identifier.
func (h *Hotel) ID() uuid.UUID { return h.id }

// OwnerID returns the owning admin's user ID.
func (h *Hotel) OwnerID() uuid.UUID { return h.ownerID }

// Name returns the hotel name.
func (h *Hotel) Name() string { return h.name }

// City returns the city.
func (h *Hotel) City() string { return h.city }

// Address returns the street address.
func (h *Hotel) Address() string { return h.address }

// Description returns the description.
func (h *Hotel) Description() string { return h.description }

// Image returns the cover image reference.
func (h *Hotel) Image() string { return h.image }

// CreatedAt returns the creation timestamp.
func (h *Hotel) CreatedAt() time.Time { return h.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (h *Hotel) UpdatedAt() time.Time { return h.updatedAt }
