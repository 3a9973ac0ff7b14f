package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/hotelstay/service-booking/internal/common/domain"
	bookingDomain "github.com/hotelstay/service-booking/internal/domain/booking"
	hotelDomain "github.com/hotelstay/service-booking/internal/domain/hotel"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	HotelID            uuid.UUID      `gorm:"type:uuid;not null;index"`
	RoomNumber         string         `gorm:"size:20;not null"`
	RoomType           string         `gorm:"size:50;not null"`
	PricePerNightCents int64          `gorm:"not null"`
	MaxGuests          int            `gorm:"not null;default:1"`
	IsAvailable        bool           `gorm:"not null;default:true;index"`
	Images             pq.StringArray `gorm:"type:text[]"`
	Amenities          []AmenityModel `gorm:"many2many:room_amenities;joinForeignKey:RoomID;joinReferences:AmenityID"`
	CreatedAt          time.Time      `gorm:"not null"`
	UpdatedAt          time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// AmenityModel is the GORM model for the amenities table.
type AmenityModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"size:100;not null;uniqueIndex"`
}

// TableName returns the table name for the GORM model.
func (AmenityModel) TableName() string {
	return "amenities"
}

// GormRoomRepository is the GORM-based implementation of RoomRepository.
type GormRoomRepository struct {
	storage
}

// NewGormRoomRepository creates a new GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB, timeout time.Duration) *GormRoomRepository {
	return &GormRoomRepository{storage: newStorage(db, timeout)}
}

// FindByID retrieves a room by its unique identifier.
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*hotelDomain.Room, error) {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	var model RoomModel
	if err := db.Preload("Amenities").Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", id.String())
		}
		return nil, mapError(ctx, "find room by ID", err)
	}
	return toDomainRoom(&model), nil
}

// FindByHotelIDs retrieves the rooms of the given hotels ordered by hotel and room number.
func (r *GormRoomRepository) FindByHotelIDs(ctx context.Context, hotelIDs []uuid.UUID) ([]*hotelDomain.Room, error) {
	if len(hotelIDs) == 0 {
		return nil, nil
	}

	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	var models []RoomModel
	if err := db.Preload("Amenities").
		Where("hotel_id IN ?", hotelIDs).
		Order("hotel_id, room_number").
		Find(&models).Error; err != nil {
		return nil, mapError(ctx, "find rooms by hotel", err)
	}

	rooms := make([]*hotelDomain.Room, len(models))
	for i := range models {
		rooms[i] = toDomainRoom(&models[i])
	}
	return rooms, nil
}

// MarkUnavailable clears the availability flag of a room.
func (r *GormRoomRepository) MarkUnavailable(ctx context.Context, roomID uuid.UUID) error {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	if err := db.Model(&RoomModel{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"is_available": false,
			"updated_at":   time.Now().UTC(),
		}).Error; err != nil {
		return mapError(ctx, "mark room unavailable", err)
	}
	return nil
}

const releaseElapsedSQL = `
UPDATE rooms AS r
SET is_available = TRUE, updated_at = NOW()
WHERE r.is_available = FALSE
  AND EXISTS (
    SELECT 1 FROM bookings b
    WHERE b.room_id = r.id AND b.status = @status
  )
  AND NOT EXISTS (
    SELECT 1 FROM bookings b
    WHERE b.room_id = r.id AND b.status = @status AND b.check_out >= @today
  )
RETURNING r.id AS room_id, r.hotel_id AS hotel_id`

// ReleaseElapsed restores the flag of every flagged room whose latest confirmed
// checkout is before today, in one statement.
func (r *GormRoomRepository) ReleaseElapsed(ctx context.Context, today time.Time) ([]hotelDomain.ReleasedRoom, error) {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	var released []hotelDomain.ReleasedRoom
	if err := db.Raw(releaseElapsedSQL,
		map[string]interface{}{
			"status": string(bookingDomain.StatusConfirmed),
			"today":  today,
		},
	).Scan(&released).Error; err != nil {
		return nil, mapError(ctx, "release elapsed rooms", err)
	}
	return released, nil
}

// --- Conversion Helpers ---

func toDomainRoom(m *RoomModel) *hotelDomain.Room {
	amenities := make([]hotelDomain.Amenity, len(m.Amenities))
	for i, a := range m.Amenities {
		amenities[i] = hotelDomain.Amenity{ID: a.ID, Name: a.Name}
	}
	images := []string(m.Images)
	if images == nil {
		images = []string{}
	}
	return hotelDomain.ReconstructRoom(
		m.ID,
		m.HotelID,
		m.RoomNumber,
		m.RoomType,
		m.PricePerNightCents,
		m.MaxGuests,
		m.IsAvailable,
		amenities,
		images,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
