// Package testdb opens migrated in-memory SQLite databases for tests.
package testdb

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotelbooking/internal/database"
	"hotelbooking/internal/domain"
)

var seq atomic.Int64

// Open returns a fresh database limited to one connection, so concurrent
// transactions in tests are serialized the way row locks serialize them in Postgres.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	db, err := database.Connect(dsn, database.Options{MaxOpenConns: 1, LogLevel: logger.Silent})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{
		Email: fmt.Sprintf("user%d@example.com", seq.Add(1)),
		Name:  "Test User",
		Role:  role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

func CreateRoom(t *testing.T, db *gorm.DB, basePrice int64, quantity int) *domain.Room {
	t.Helper()
	hotel := &domain.Hotel{Name: "Seaside"}
	if err := db.Create(hotel).Error; err != nil {
		t.Fatalf("failed to create hotel: %v", err)
	}
	room := &domain.Room{
		HotelID:     hotel.ID,
		Name:        "Deluxe",
		BasePrice:   basePrice,
		Quantity:    quantity,
		MaxAdults:   2,
		MaxChildren: 2,
		IsActive:    true,
	}
	if err := db.Create(room).Error; err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	return room
}

func CreateService(t *testing.T, db *gorm.DB, hotelID int64, name string, price int64) *domain.HotelService {
	t.Helper()
	s := &domain.HotelService{HotelID: hotelID, Name: name, Price: price, IsActive: true}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return s
}
