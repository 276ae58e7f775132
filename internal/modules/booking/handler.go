package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/request"
	"hotelbooking/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(user, staff *gin.RouterGroup) {
	b := user.Group("/bookings")
	{
		b.POST("", h.CreateBooking)
		b.GET("", h.ListMyBookings)
		b.GET("/:id", h.GetBooking)
		b.POST("/:id/deposit", h.RequestDeposit)
		b.POST("/:id/pay", h.PayBooking)
		b.POST("/:id/services", h.AddService)
		b.POST("/:id/cancel", h.CancelBooking)
	}

	sb := staff.Group("/bookings")
	{
		sb.POST("/:id/approve", h.ApproveBooking)
		sb.POST("/:id/check-in", h.CheckIn)
		sb.POST("/:id/check-out", h.CheckOut)
		sb.POST("/:id/settle", h.SettleOutstanding)
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	var req CreateBookingRequest
	if !request.BindJSON(c, &req) {
		return
	}
	checkIn, err := domain.ParseDate(req.CheckIn)
	if err != nil {
		response.FromError(c, err)
		return
	}
	checkOut, err := domain.ParseDate(req.CheckOut)
	if err != nil {
		response.FromError(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), CreateInput{
		UserID:        userID,
		RoomID:        req.RoomID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Adults:        req.Adults,
		Children:      req.Children,
		Services:      req.Services,
		PaymentOption: domain.PaymentOption(req.PaymentOption),
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Notes:         req.Notes,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	limit, offset := request.Page(c)
	list, err := h.service.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) GetBooking(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.Get(c.Request.Context(), id, userID, request.IsStaff(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) RequestDeposit(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req RequestDepositRequest
	if !request.BindJSON(c, &req) {
		return
	}
	b, err := h.service.RequestDeposit(c.Request.Context(), id, userID, domain.PaymentOption(req.PaymentOption))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) PayBooking(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req PayRequest
	if !request.BindJSON(c, &req) {
		return
	}
	b, err := h.service.Pay(c.Request.Context(), PayInput{
		BookingID:      id,
		UserID:         userID,
		Method:         domain.PaymentMethod(req.Method),
		ProofReference: req.ProofReference,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) AddService(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req AddServiceRequest
	if !request.BindJSON(c, &req) {
		return
	}
	b, err := h.service.AddService(c.Request.Context(), id, userID, request.IsStaff(c), req.ServiceItem)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)
	b, err := h.service.Cancel(c.Request.Context(), id, userID, request.IsStaff(c), req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ApproveBooking(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.Approve(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.CheckIn(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CheckOut(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.CheckOut(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) SettleOutstanding(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req SettleRequest
	if !request.BindJSON(c, &req) {
		return
	}
	b, err := h.service.SettleOutstanding(c.Request.Context(), SettleInput{
		BookingID:      id,
		StaffID:        c.GetInt64("user_id"),
		Method:         domain.PaymentMethod(req.Method),
		ProofReference: req.ProofReference,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}
