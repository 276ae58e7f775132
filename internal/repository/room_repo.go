package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelbooking/internal/domain"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) WithTx(tx *gorm.DB) *RoomRepository {
	return &RoomRepository{db: tx}
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "room", id)
	}
	return &room, nil
}

// GetForUpdate locks the room row; concurrent bookings of the same room queue on it.
func (r *RoomRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "room", id)
	}
	return &room, nil
}

// GetServices loads active add-ons of a hotel by ID.
func (r *RoomRepository) GetServices(ctx context.Context, hotelID int64, ids []int64) (map[int64]domain.HotelService, error) {
	out := make(map[int64]domain.HotelService, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.HotelService
	err := r.db.WithContext(ctx).
		Where("hotel_id = ? AND is_active = ? AND id IN ?", hotelID, true, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.ID] = s
	}
	return out, nil
}

func (r *RoomRepository) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *RoomRepository) GetHotel(ctx context.Context, id int64) (*domain.Hotel, error) {
	var h domain.Hotel
	if err := r.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "hotel", id)
	}
	return &h, nil
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(room).Error
}

func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(room).Error
}

// ListByHotel returns the hotel's rooms; inactive ones only when includeInactive.
func (r *RoomRepository) ListByHotel(ctx context.Context, hotelID int64, includeInactive bool) ([]domain.Room, error) {
	var rooms []domain.Room
	q := r.db.WithContext(ctx).Where("hotel_id = ?", hotelID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("id asc").Find(&rooms).Error
	return rooms, err
}

func (r *RoomRepository) CreateService(ctx context.Context, s *domain.HotelService) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *RoomRepository) ListServices(ctx context.Context, hotelID int64) ([]domain.HotelService, error) {
	var out []domain.HotelService
	err := r.db.WithContext(ctx).
		Where("hotel_id = ? AND is_active = ?", hotelID, true).
		Order("id asc").
		Find(&out).Error
	return out, err
}
