package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hotelstay/service-booking/internal/common/domain"
	bookingDomain "github.com/hotelstay/service-booking/internal/domain/booking"
	"github.com/hotelstay/service-booking/internal/domain/stay"
)

const idempotencyIndex = "idx_bookings_user_idempotency"

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_bookings_user_idempotency,priority:1"`
	RoomID          uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_room_stay,priority:1"`
	HotelID         uuid.UUID `gorm:"type:uuid;not null;index"`
	CheckIn         time.Time `gorm:"type:date;not null;index:idx_bookings_room_stay,priority:2"`
	CheckOut        time.Time `gorm:"type:date;not null;index:idx_bookings_room_stay,priority:3"`
	TotalPriceCents int64     `gorm:"not null"`
	Guests          int       `gorm:"column:max_guests;not null"`
	Status          string    `gorm:"not null;size:30;index"`
	IdempotencyKey  *string   `gorm:"size:128;uniqueIndex:idx_bookings_user_idempotency,priority:2"`
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	storage
}

// NewGormBookingRepository creates a new GormBookingRepository. Every call is
// bounded by timeout.
func NewGormBookingRepository(db *gorm.DB, timeout time.Duration) *GormBookingRepository {
	return &GormBookingRepository{storage: newStorage(db, timeout)}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	var model BookingModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, mapError(ctx, "find booking by ID", err)
	}
	return toDomainBooking(&model)
}

// FindByIdempotencyKey retrieves the booking a user created with key.
func (r *GormBookingRepository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*bookingDomain.Booking, error) {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	var model BookingModel
	if err := db.Where("user_id = ? AND idempotency_key = ?", userID, key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", key)
		}
		return nil, mapError(ctx, "find booking by idempotency key", err)
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves a user's bookings with pagination.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	var total int64
	if err := db.Model(&BookingModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, mapError(ctx, "count user bookings", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, mapError(ctx, "find user bookings", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindByHotelOwner retrieves bookings for rooms of hotels owned by ownerID.
func (r *GormBookingRepository) FindByHotelOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	owned := func(tx *gorm.DB) *gorm.DB {
		return tx.Joins("JOIN hotels ON hotels.id = bookings.hotel_id").
			Where("hotels.owner_id = ?", ownerID)
	}

	var total int64
	if err := db.Model(&BookingModel{}).Scopes(owned).Count(&total).Error; err != nil {
		return nil, 0, mapError(ctx, "count owner bookings", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := db.
		Scopes(owned).
		Select("bookings.*").
		Order("bookings.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, mapError(ctx, "find owner bookings", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := db.Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, mapError(ctx, "count bookings by status", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// HasOverlap reports whether a confirmed booking for roomID overlaps s.
func (r *GormBookingRepository) HasOverlap(ctx context.Context, roomID uuid.UUID, s stay.Stay) (bool, error) {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	count, err := countOverlapping(db, roomID, s)
	if err != nil {
		return false, mapError(ctx, "check room overlap", err)
	}
	return count > 0, nil
}

// BookedRoomIDs returns the rooms among roomIDs with a confirmed booking overlapping s.
func (r *GormBookingRepository) BookedRoomIDs(ctx context.Context, roomIDs []uuid.UUID, s stay.Stay) (map[uuid.UUID]struct{}, error) {
	booked := make(map[uuid.UUID]struct{})
	if len(roomIDs) == 0 {
		return booked, nil
	}

	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	var ids []uuid.UUID
	if err := db.Model(&BookingModel{}).
		Distinct().
		Where("room_id IN ?", roomIDs).
		Scopes(overlapping(s)).
		Pluck("room_id", &ids).Error; err != nil {
		return nil, mapError(ctx, "find booked rooms", err)
	}
	for _, id := range ids {
		booked[id] = struct{}{}
	}
	return booked, nil
}

// Insert writes bk inside one transaction that first locks the room row.
// Concurrent Inserts for the same room queue on that lock, so the overlap
// count each one runs sees every booking committed before it. The exclusion
// constraint from the SQL migrations rejects anything that slips past.
func (r *GormBookingRepository) Insert(ctx context.Context, bk *bookingDomain.Booking) (*bookingDomain.Booking, bool, error) {
	model := toBookingModel(bk)
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	var prior *BookingModel
	err := db.Transaction(func(tx *gorm.DB) error {
		var room RoomModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "hotel_id").
			Where("id = ?", model.RoomID).
			First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Room", model.RoomID.String())
			}
			return err
		}
		model.HotelID = room.HotelID

		if model.IdempotencyKey != nil {
			var existing []BookingModel
			if err := tx.Where("user_id = ? AND idempotency_key = ?", model.UserID, *model.IdempotencyKey).
				Limit(1).
				Find(&existing).Error; err != nil {
				return err
			}
			if len(existing) > 0 {
				prior = &existing[0]
				return nil
			}
		}

		count, err := countOverlapping(tx, model.RoomID, bk.Stay())
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.NewRoomUnavailableError(model.RoomID.String())
		}

		return tx.Create(model).Error
	})

	if err != nil {
		code, constraint := pqCode(err)
		switch {
		case code == pgExclusionViolation:
			return nil, false, domain.NewRoomUnavailableError(model.RoomID.String())
		case code == pgUniqueViolation && constraint == idempotencyIndex && model.IdempotencyKey != nil:
			existing, findErr := r.FindByIdempotencyKey(context.WithoutCancel(ctx), model.UserID, *model.IdempotencyKey)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, true, nil
		}
		return nil, false, mapError(ctx, "insert booking", err)
	}

	if prior != nil {
		stored, err := toDomainBooking(prior)
		return stored, true, err
	}
	stored, err := toDomainBooking(model)
	return stored, false, err
}

// overlapping restricts a bookings query to confirmed rows sharing a night with s.
func overlapping(s stay.Stay) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ? AND check_in < ? AND check_out > ?",
			string(bookingDomain.StatusConfirmed), s.CheckOut(), s.CheckIn())
	}
}

func countOverlapping(tx *gorm.DB, roomID uuid.UUID, s stay.Stay) (int64, error) {
	var count int64
	err := tx.Model(&BookingModel{}).
		Where("room_id = ?", roomID).
		Scopes(overlapping(s)).
		Count(&count).Error
	return count, err
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	var key *string
	if k := bk.IdempotencyKey(); k != "" {
		key = &k
	}
	return &BookingModel{
		ID:              bk.ID(),
		UserID:          bk.UserID(),
		RoomID:          bk.RoomID(),
		HotelID:         bk.HotelID(),
		CheckIn:         bk.Stay().CheckIn(),
		CheckOut:        bk.Stay().CheckOut(),
		TotalPriceCents: bk.TotalPriceCents(),
		Guests:          bk.Guests(),
		Status:          string(bk.Status()),
		IdempotencyKey:  key,
		CreatedAt:       bk.CreatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	s, err := stay.Reconstruct(m.CheckIn, m.CheckOut)
	if err != nil {
		return nil, err
	}
	var key string
	if m.IdempotencyKey != nil {
		key = *m.IdempotencyKey
	}
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.UserID,
		m.RoomID,
		m.HotelID,
		s,
		m.TotalPriceCents,
		m.Guests,
		status,
		key,
		m.CreatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
