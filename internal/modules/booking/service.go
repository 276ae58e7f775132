package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/modules/availability"
	"hotelbooking/internal/repository"
)

type Service struct {
	db           *gorm.DB
	bookings     *repository.BookingRepository
	rooms        *repository.RoomRepository
	availability *availability.Checker
	quoter       Quoter
	now          func() time.Time
}

func NewService(
	db *gorm.DB,
	bookings *repository.BookingRepository,
	rooms *repository.RoomRepository,
	checker *availability.Checker,
	quoter Quoter,
) *Service {
	return &Service{
		db:           db,
		bookings:     bookings,
		rooms:        rooms,
		availability: checker,
		quoter:       quoter,
		now:          time.Now,
	}
}

type CreateInput struct {
	UserID        int64
	RoomID        int64
	CheckIn       time.Time
	CheckOut      time.Time
	Adults        int
	Children      int
	Services      []ServiceItem
	PaymentOption domain.PaymentOption
	ContactName   string
	ContactEmail  string
	ContactPhone  string
	Notes         string
}

// Create quotes the stay and inserts the booking. With a payment option the
// booking goes straight to pending_deposit and holds a unit; without one it is
// a pending draft.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Booking, error) {
	checkIn, checkOut := domain.DateOf(in.CheckIn), domain.DateOf(in.CheckOut)
	if !checkIn.Before(checkOut) {
		return nil, domain.NewValidationError("check_out", "must be after check_in")
	}
	if checkIn.Before(domain.DateOf(s.now())) {
		return nil, domain.NewValidationError("check_in", "must not be in the past")
	}
	if in.Adults < 1 {
		return nil, domain.NewValidationError("adults", "must be at least 1")
	}
	if in.Children < 0 {
		return nil, domain.NewValidationError("children", "must not be negative")
	}
	if in.PaymentOption != "" && !in.PaymentOption.Valid() {
		return nil, domain.NewValidationError("payment_option", fmt.Sprintf("unknown option %q", in.PaymentOption))
	}

	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, fmt.Errorf("room %d is inactive: %w", room.ID, domain.ErrRoomUnavailable)
	}
	if in.Adults > room.MaxAdults {
		return nil, domain.NewValidationError("adults", fmt.Sprintf("room allows at most %d", room.MaxAdults))
	}
	if in.Children > room.MaxChildren {
		return nil, domain.NewValidationError("children", fmt.Sprintf("room allows at most %d", room.MaxChildren))
	}

	services, err := s.snapshotServices(ctx, room.HotelID, in.Services, false)
	if err != nil {
		return nil, err
	}
	quote, err := s.quoter.QuoteStay(ctx, room.ID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	var servicePrice int64
	for _, svc := range services {
		servicePrice += svc.Total()
	}

	b := &domain.Booking{
		UserID:         in.UserID,
		HotelID:        room.HotelID,
		RoomID:         room.ID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Adults:         in.Adults,
		Children:       in.Children,
		RoomPrice:      quote.Total,
		ServicePrice:   servicePrice,
		TotalPrice:     quote.Total + servicePrice,
		EstimatedPrice: quote.Total + servicePrice,
		Status:         domain.BookingPending,
		PaymentStatus:  domain.PaymentUnpaid,
		PaymentOption:  in.PaymentOption,
		ContactName:    strings.TrimSpace(in.ContactName),
		ContactEmail:   strings.TrimSpace(in.ContactEmail),
		ContactPhone:   strings.TrimSpace(in.ContactPhone),
		Notes:          strings.TrimSpace(in.Notes),
		Services:       services,
	}
	if in.PaymentOption != "" {
		b.Status = domain.BookingPendingDeposit
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reserve(ctx, tx, room.ID, checkIn, checkOut, 0); err != nil {
			return err
		}
		return s.bookings.WithTx(tx).Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"booking_id": b.ID,
		"room_id":    b.RoomID,
		"user_id":    b.UserID,
		"check_in":   domain.FormatDate(b.CheckIn),
		"check_out":  domain.FormatDate(b.CheckOut),
		"total":      b.TotalPrice,
		"status":     b.Status,
	}).Info("booking created")
	return b, nil
}

// reserve locks the room row and fails when no unit is free. Every insert or
// status change that starts holding a unit goes through here inside its transaction.
func (s *Service) reserve(ctx context.Context, tx *gorm.DB, roomID int64, checkIn, checkOut time.Time, excludeID int64) error {
	room, err := s.rooms.WithTx(tx).GetForUpdate(ctx, roomID)
	if err != nil {
		return err
	}
	units, err := s.availability.WithTx(tx).AvailableUnitsForRoom(ctx, room, checkIn, checkOut, excludeID)
	if err != nil {
		return err
	}
	if units <= 0 {
		return fmt.Errorf("room %d %s..%s: %w", roomID, domain.FormatDate(checkIn), domain.FormatDate(checkOut), domain.ErrRoomUnavailable)
	}
	return nil
}

// snapshotServices resolves catalog entries and freezes their unit prices.
func (s *Service) snapshotServices(ctx context.Context, hotelID int64, items []ServiceItem, afterCreation bool) ([]domain.BookingService, error) {
	if len(items) == 0 {
		return nil, nil
	}
	qty := make(map[int64]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, domain.NewValidationError("quantity", "must be at least 1")
		}
		qty[it.ServiceID] += it.Quantity
	}
	ids := make([]int64, 0, len(qty))
	for id := range qty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	catalog, err := s.rooms.GetServices(ctx, hotelID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BookingService, 0, len(ids))
	for _, id := range ids {
		svc, ok := catalog[id]
		if !ok {
			return nil, domain.NewValidationError("service_id", fmt.Sprintf("service %d is not offered by this hotel", id))
		}
		out = append(out, domain.BookingService{
			ServiceID:          svc.ID,
			Name:               svc.Name,
			Quantity:           qty[id],
			UnitPrice:          svc.Price,
			AddedAfterCreation: afterCreation,
		})
	}
	return out, nil
}

// RequestDeposit moves a draft to pending_deposit, claiming a unit.
func (s *Service) RequestDeposit(ctx context.Context, id, userID int64, option domain.PaymentOption) (*domain.Booking, error) {
	if !option.Valid() {
		return nil, domain.NewValidationError("payment_option", fmt.Sprintf("unknown option %q", option))
	}
	var b *domain.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.bookings.WithTx(tx).GetForUpdate(ctx, id); err != nil {
			return err
		}
		if b.UserID != userID {
			return domain.ErrForbidden
		}
		if b.Status != domain.BookingPending {
			return domain.NewInvalidStateError("booking", b.ID, string(b.Status), "request deposit")
		}
		if err := s.reserve(ctx, tx, b.RoomID, b.CheckIn, b.CheckOut, b.ID); err != nil {
			return err
		}
		b.PaymentOption = option
		b.Status = domain.BookingPendingDeposit
		return s.bookings.WithTx(tx).Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"booking_id": b.ID, "option": option}).Info("booking awaiting deposit")
	return b, nil
}

// Get returns the booking to its guest or to staff.
func (s *Service) Get(ctx context.Context, id, actorID int64, isStaff bool) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && b.UserID != actorID {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID, limit, offset)
}

// loadOwned locks the booking and checks that the actor may act on it.
func (s *Service) loadOwned(ctx context.Context, tx *gorm.DB, id, actorID int64, isStaff bool) (*domain.Booking, error) {
	b, err := s.bookings.WithTx(tx).GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff && b.UserID != actorID {
		return nil, domain.ErrForbidden
	}
	return b, nil
}
