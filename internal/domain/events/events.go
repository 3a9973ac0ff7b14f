// Package events defines the Kafka topics, CloudEvent types and payloads
// exchanged with other services.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Source is the CloudEvent source of events produced here.
const Source = "service-booking"

// Topics.
const (
	TopicBookingEvents  = "booking.events"
	TopicRoomEvents     = "room.events"
	TopicPropertyEvents = "property.events"
)

// Event types.
const (
	BookingConfirmed     = "booking.confirmed"
	RoomsReleased        = "rooms.released"
	PropertyRoomUpdated  = "property.room.updated"
	PropertyHotelUpdated = "property.hotel.updated"
)

// BookingConfirmedEvent is published after a booking commits.
type BookingConfirmedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	UserID          uuid.UUID `json:"user_id"`
	RoomID          uuid.UUID `json:"room_id"`
	HotelID         uuid.UUID `json:"hotel_id"`
	CheckIn         string    `json:"check_in"`
	CheckOut        string    `json:"check_out"`
	Guests          int       `json:"guests"`
	TotalPriceCents int64     `json:"total_price_cents"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// RoomsReleasedEvent is published after a sweep restores availability flags.
type RoomsReleasedEvent struct {
	RoomIDs    []uuid.UUID `json:"room_ids"`
	HotelIDs   []uuid.UUID `json:"hotel_ids"`
	SweepDate  string      `json:"sweep_date"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// RoomUpdatedEvent is consumed when property management edits a room.
type RoomUpdatedEvent struct {
	RoomID     uuid.UUID `json:"room_id"`
	HotelID    uuid.UUID `json:"hotel_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// HotelUpdatedEvent is consumed when property management edits a hotel.
type HotelUpdatedEvent struct {
	HotelID    uuid.UUID `json:"hotel_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
