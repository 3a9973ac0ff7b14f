package booking

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelstay/service-booking/internal/common/domain"
	"github.com/hotelstay/service-booking/internal/domain/stay"
)

func mustStay(t *testing.T, in, out string) stay.Stay {
	t.Helper()
	s, err := stay.Parse(in, out)
	require.NoError(t, err)
	return s
}

func TestNewBooking(t *testing.T) {
	userID, roomID, hotelID := uuid.New(), uuid.New(), uuid.New()
	s := mustStay(t, "2025-12-10", "2025-12-12")

	bk, err := NewBooking(userID, roomID, hotelID, s, 40000, 2, "  key-1 ")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, bk.ID())
	assert.Equal(t, StatusConfirmed, bk.Status())
	assert.Equal(t, "key-1", bk.IdempotencyKey())
	assert.Equal(t, int64(40000), bk.TotalPriceCents())
	assert.True(t, bk.BelongsTo(userID))
	assert.False(t, bk.BelongsTo(uuid.New()))
	assert.False(t, bk.CreatedAt().IsZero())
}

func TestNewBooking_Validation(t *testing.T) {
	userID, roomID := uuid.New(), uuid.New()
	s := mustStay(t, "2025-12-10", "2025-12-12")

	tests := []struct {
		name string
		fn   func() (*Booking, error)
	}{
		{"missing user", func() (*Booking, error) { return NewBooking(uuid.Nil, roomID, uuid.Nil, s, 0, 1, "") }},
		{"missing room", func() (*Booking, error) { return NewBooking(userID, uuid.Nil, uuid.Nil, s, 0, 1, "") }},
		{"missing stay", func() (*Booking, error) { return NewBooking(userID, roomID, uuid.Nil, stay.Stay{}, 0, 1, "") }},
		{"negative price", func() (*Booking, error) { return NewBooking(userID, roomID, uuid.Nil, s, -1, 1, "") }},
		{"no guests", func() (*Booking, error) { return NewBooking(userID, roomID, uuid.Nil, s, 0, 0, "") }},
		{"long key", func() (*Booking, error) {
			return NewBooking(userID, roomID, uuid.Nil, s, 0, 1, strings.Repeat("k", MaxIdempotencyKeyLength+1))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindValidation))
		})
	}
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("confirmed")
	require.NoError(t, err)
	assert.True(t, s.BlocksRoom())

	_, err = ParseBookingStatus("cancelled")
	assert.Error(t, err)
}
