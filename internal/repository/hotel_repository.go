package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hotelstay/service-booking/internal/common/domain"
	hotelDomain "github.com/hotelstay/service-booking/internal/domain/hotel"
)

// HotelModel is the GORM model for the hotels table.
type HotelModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"size:200;not null"`
	City        string    `gorm:"size:100;not null;index"`
	Address     string    `gorm:"size:500"`
	Description string    `gorm:"type:text"`
	Image       string    `gorm:"size:500"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (HotelModel) TableName() string {
	return "hotels"
}

// GormHotelRepository is the GORM-based implementation of HotelRepository.
type GormHotelRepository struct {
	storage
}

// NewGormHotelRepository creates a new GormHotelRepository.
func NewGormHotelRepository(db *gorm.DB, timeout time.Duration) *GormHotelRepository {
	return &GormHotelRepository{storage: newStorage(db, timeout)}
}

// FindByID retrieves a hotel by its unique identifier.
func (r *GormHotelRepository) FindByID(ctx context.Context, id uuid.UUID) (*hotelDomain.Hotel, error) {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	var model HotelModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Hotel", id.String())
		}
		return nil, mapError(ctx, "find hotel by ID", err)
	}
	return toDomainHotel(&model), nil
}

// FindByIDs retrieves the hotels among ids that exist.
func (r *GormHotelRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*hotelDomain.Hotel, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	var models []HotelModel
	if err := db.Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, mapError(ctx, "find hotels by IDs", err)
	}
	return toDomainHotels(models), nil
}

// SearchByCity retrieves hotels whose city contains city, case-insensitively.
func (r *GormHotelRepository) SearchByCity(ctx context.Context, city string) ([]*hotelDomain.Hotel, error) {
	db, ctx, cancel := r.begin(ctx)
	defer cancel()

	q := db.Order("name")
	if city = strings.TrimSpace(city); city != "" {
		q = q.Where("city ILIKE ?", "%"+escapeLike(city)+"%")
	}

	var models []HotelModel
	if err := q.Find(&models).Error; err != nil {
		return nil, mapError(ctx, "search hotels by city", err)
	}
	return toDomainHotels(models), nil
}

// --- Conversion Helpers ---

func toDomainHotel(m *HotelModel) *hotelDomain.Hotel {
	return hotelDomain.ReconstructHotel(
		m.ID,
		m.OwnerID,
		m.Name,
		m.City,
		m.Address,
		m.Description,
		m.Image,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainHotels(models []HotelModel) []*hotelDomain.Hotel {
	hotels := make([]*hotelDomain.Hotel, len(models))
	for i := range models {
		hotels[i] = toDomainHotel(&models[i])
	}
	return hotels
}
