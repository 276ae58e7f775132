package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelbooking/internal/pkg/request"
	"hotelbooking/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, staff *gin.RouterGroup) {
	hotels := public.Group("/hotels")
	{
		hotels.GET("/:id/rooms", h.ListRooms)
		hotels.GET("/:id/services", h.ListServices)
	}
	public.GET("/rooms/:id", h.GetRoom)

	staff.POST("/hotels", h.CreateHotel)
	staff.POST("/hotels/:id/rooms", h.CreateRoom)
	staff.POST("/hotels/:id/services", h.CreateService)
	staff.PATCH("/rooms/:id", h.UpdateRoom)
}

// CreateHotel handles POST /api/v1/staff/hotels
func (h *Handler) CreateHotel(c *gin.Context) {
	var req CreateHotelRequest
	if !request.BindJSON(c, &req) {
		return
	}
	hotel, err := h.service.CreateHotel(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"hotel": hotel})
}

// CreateRoom handles POST /api/v1/staff/hotels/:id/rooms
func (h *Handler) CreateRoom(c *gin.Context) {
	hotelID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req CreateRoomRequest
	if !request.BindJSON(c, &req) {
		return
	}
	room, err := h.service.CreateRoom(c.Request.Context(), hotelID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"room": room})
}

// UpdateRoom handles PATCH /api/v1/staff/rooms/:id
func (h *Handler) UpdateRoom(c *gin.Context) {
	roomID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateRoomRequest
	if !request.BindJSON(c, &req) {
		return
	}
	room, err := h.service.UpdateRoom(c.Request.Context(), roomID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *Handler) GetRoom(c *gin.Context) {
	roomID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	room, err := h.service.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

// ListRooms handles GET /api/v1/hotels/:id/rooms
func (h *Handler) ListRooms(c *gin.Context) {
	hotelID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	rooms, err := h.service.ListRooms(c.Request.Context(), hotelID, false)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) ListServices(c *gin.Context) {
	hotelID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	services, err := h.service.ListServices(c.Request.Context(), hotelID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": services})
}

// CreateService handles POST /api/v1/staff/hotels/:id/services
func (h *Handler) CreateService(c *gin.Context) {
	hotelID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req CreateServiceRequest
	if !request.BindJSON(c, &req) {
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), hotelID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}
