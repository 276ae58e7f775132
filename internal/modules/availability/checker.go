package availability

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/repository"
)

// Checker answers whether a room still has a free unit for a stay.
type Checker struct {
	rooms    *repository.RoomRepository
	bookings *repository.BookingRepository
}

func NewChecker(db *gorm.DB) *Checker {
	return &Checker{
		rooms:    repository.NewRoomRepository(db),
		bookings: repository.NewBookingRepository(db),
	}
}

// WithTx binds the checker to tx so the count sees the caller's locks and writes.
func (c *Checker) WithTx(tx *gorm.DB) *Checker {
	return &Checker{
		rooms:    c.rooms.WithTx(tx),
		bookings: c.bookings.WithTx(tx),
	}
}

func validateRange(checkIn, checkOut time.Time) error {
	if !domain.DateOf(checkIn).Before(domain.DateOf(checkOut)) {
		return domain.NewValidationError("check_out", "must be after check_in")
	}
	return nil
}

// AvailableUnits returns room quantity minus bookings holding a unit over
// [checkIn, checkOut). excludeBookingID ignores one booking, for reschedules.
func (c *Checker) AvailableUnits(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeBookingID int64) (int, error) {
	room, err := c.rooms.GetByID(ctx, roomID)
	if err != nil {
		return 0, err
	}
	return c.availableFor(ctx, room, checkIn, checkOut, excludeBookingID)
}

// AvailableUnitsForRoom is AvailableUnits for an already loaded (and usually locked) room.
func (c *Checker) AvailableUnitsForRoom(ctx context.Context, room *domain.Room, checkIn, checkOut time.Time, excludeBookingID int64) (int, error) {
	return c.availableFor(ctx, room, checkIn, checkOut, excludeBookingID)
}

func (c *Checker) availableFor(ctx context.Context, room *domain.Room, checkIn, checkOut time.Time, excludeBookingID int64) (int, error) {
	if err := validateRange(checkIn, checkOut); err != nil {
		return 0, err
	}
	if !room.IsActive {
		return 0, nil
	}
	taken, err := c.bookings.CountOverlapping(ctx, room.ID, domain.DateOf(checkIn), domain.DateOf(checkOut), excludeBookingID)
	if err != nil {
		return 0, err
	}
	free := room.Quantity - int(taken)
	if free < 0 {
		free = 0
	}
	return free, nil
}

func (c *Checker) IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeBookingID int64) (bool, error) {
	free, err := c.AvailableUnits(ctx, roomID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return false, err
	}
	return free > 0, nil
}
