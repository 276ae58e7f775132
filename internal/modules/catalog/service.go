package catalog

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/validator"
	"hotelbooking/internal/repository"
)

type Service struct {
	roomRepo *repository.RoomRepository
}

func NewService(roomRepo *repository.RoomRepository) *Service {
	return &Service{roomRepo: roomRepo}
}

/* ---------- HOTELS ---------- */

func (s *Service) CreateHotel(ctx context.Context, req CreateHotelRequest) (*domain.Hotel, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	h := &domain.Hotel{
		Name:               req.Name,
		Address:            strings.TrimSpace(req.Address),
		CancellationPolicy: strings.TrimSpace(req.CancellationPolicy),
	}
	if err := s.roomRepo.CreateHotel(ctx, h); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"hotel_id": h.ID, "name": h.Name}).Info("hotel created")
	return h, nil
}

/* ---------- ROOMS ---------- */

func (s *Service) CreateRoom(ctx context.Context, hotelID int64, req CreateRoomRequest) (*domain.Room, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.roomRepo.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	room := &domain.Room{
		HotelID:     hotelID,
		Name:        req.Name,
		BasePrice:   req.BasePrice,
		Quantity:    req.Quantity,
		MaxAdults:   req.MaxAdults,
		MaxChildren: req.MaxChildren,
		IsActive:    true,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"room_id": room.ID, "hotel_id": hotelID}).Info("room created")
	return room, nil
}

// UpdateRoom applies only the fields present. Lowering Quantity does not
// touch existing bookings; it only limits new ones.
func (s *Service) UpdateRoom(ctx context.Context, roomID int64, req UpdateRoomRequest) (*domain.Room, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.BasePrice != nil {
		room.BasePrice = *req.BasePrice
	}
	if req.Quantity != nil {
		room.Quantity = *req.Quantity
	}
	if req.MaxAdults != nil {
		room.MaxAdults = *req.MaxAdults
	}
	if req.MaxChildren != nil {
		room.MaxChildren = *req.MaxChildren
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) GetRoom(ctx context.Context, roomID int64) (*domain.Room, error) {
	return s.roomRepo.GetByID(ctx, roomID)
}

func (s *Service) ListRooms(ctx context.Context, hotelID int64, includeInactive bool) ([]domain.Room, error) {
	if _, err := s.roomRepo.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	return s.roomRepo.ListByHotel(ctx, hotelID, includeInactive)
}

/* ---------- SERVICES ---------- */

func (s *Service) CreateService(ctx context.Context, hotelID int64, req CreateServiceRequest) (*domain.HotelService, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.roomRepo.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	svc := &domain.HotelService{HotelID: hotelID, Name: req.Name, Price: req.Price, IsActive: true}
	if err := s.roomRepo.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) ListServices(ctx context.Context, hotelID int64) ([]domain.HotelService, error) {
	return s.roomRepo.ListServices(ctx, hotelID)
}
