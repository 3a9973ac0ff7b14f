package hotel

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newRoom(price int64, maxGuests int) *Room {
	now := time.Now().UTC()
	return ReconstructRoom(uuid.New(), uuid.New(), "101", "double", price, maxGuests, true, nil, nil, now, now)
}

func TestRoom_CanHost(t *testing.T) {
	r := newRoom(10000, 2)
	assert.True(t, r.CanHost(1))
	assert.True(t, r.CanHost(2))
	assert.False(t, r.CanHost(3))

	assert.True(t, newRoom(10000, 0).CanHost(10), "unset capacity does not limit guests")
}

func TestRoom_Getters(t *testing.T) {
	r := newRoom(12500, 3)
	assert.Equal(t, int64(12500), r.PricePerNightCents())
	assert.Equal(t, 3, r.MaxGuests())
	assert.True(t, r.IsAvailable())
	assert.Equal(t, "101", r.RoomNumber())
}
