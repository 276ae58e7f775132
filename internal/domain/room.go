package domain

import "time"

type Hotel struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	Name               string    `json:"name" gorm:"size:255;not null"`
	Address            string    `json:"address,omitempty" gorm:"size:512"`
	CancellationPolicy string    `json:"cancellation_policy,omitempty" gorm:"type:text"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Room struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	HotelID     int64     `json:"hotel_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	BasePrice   int64     `json:"base_price" gorm:"not null;check:base_price >= 0"`
	Quantity    int       `json:"quantity" gorm:"not null;check:quantity >= 0"`
	MaxAdults   int       `json:"max_adults" gorm:"not null"`
	MaxChildren int       `json:"max_children" gorm:"not null"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Hotel *Hotel `json:"hotel,omitempty" gorm:"foreignKey:HotelID"`
}

// HotelService is an add-on a guest can attach to a booking.
type HotelService struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	HotelID   int64     `json:"hotel_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Price     int64     `json:"price" gorm:"not null;check:price >= 0"`
	IsActive  bool      `json:"is_active" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (HotelService) TableName() string {
	return "hotel_services"
}
