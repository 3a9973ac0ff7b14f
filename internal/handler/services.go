package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hotelstay/service-booking/internal/application"
	"github.com/hotelstay/service-booking/internal/common/domain"
	"github.com/hotelstay/service-booking/internal/domain/stay"
	"github.com/hotelstay/service-booking/internal/scheduler"
)

// BookingSvc is the booking use-case surface the handlers need.
type BookingSvc interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req application.CreateBookingRequest) (*application.BookingDTO, bool, error)
	GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*application.BookingDTO, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[application.BookingDTO], error)
	ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[application.BookingDTO], error)
	GetBookingStats(ctx context.Context) (*application.BookingStatsDTO, error)
}

// AvailabilitySvc is the availability read surface the handlers need.
type AvailabilitySvc interface {
	SearchHotels(ctx context.Context, city string, st *stay.Stay, guests int) ([]application.HotelDTO, error)
	ListFreeRooms(ctx context.Context, hotelID uuid.UUID, st *stay.Stay) ([]application.RoomDTO, error)
	CheckAvailability(ctx context.Context, roomID uuid.UUID, st stay.Stay) (*application.AvailabilityDTO, error)
	GetQuote(ctx context.Context, roomID uuid.UUID, st stay.Stay) (*application.QuoteDTO, error)
}

// ReconcileSvc runs the availability sweep.
type ReconcileSvc interface {
	Reconcile(ctx context.Context, now time.Time) (*application.ReconcileResult, error)
}

// SweepRunner serializes on-demand sweeps with the scheduled ones.
type SweepRunner interface {
	Exclusive(ctx context.Context, fn scheduler.Job) error
}
