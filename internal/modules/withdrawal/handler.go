package withdrawal

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

type createRequest struct {
	Amount int64           `json:"amount" binding:"required,gt=0"`
	Bank   domain.BankInfo `json:"bank"`
}

type adminCreateRequest struct {
	UserID int64           `json:"user_id" binding:"required,gt=0"`
	Amount int64           `json:"amount" binding:"required,gt=0"`
	Bank   domain.BankInfo `json:"bank"`
}

type confirmRequest struct {
	Token     string `json:"token" binding:"required"`
	Signature string `json:"signature"`
}

type approveRequest struct {
	AdminSignature string `json:"admin_signature"`
}

type rejectRequest struct {
	Note string `json:"note"`
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	var req createRequest
	if !request.BindJSON(c, &req) {
		return
	}
	w, err := h.service.Create(c.Request.Context(), CreateInput{UserID: userID, Amount: req.Amount, Bank: req.Bank})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"withdrawal": w})
}

func (h *Handler) AdminCreate(c *gin.Context) {
	var req adminCreateRequest
	if !request.BindJSON(c, &req) {
		return
	}
	w, err := h.service.Create(c.Request.Context(), CreateInput{
		UserID:    req.UserID,
		Amount:    req.Amount,
		Bank:      req.Bank,
		CreatedBy: c.GetInt64("user_id"),
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"withdrawal": w})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	limit, offset := request.Page(c)
	list, err := h.service.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawals": list})
}

// load fetches the request and enforces owner-or-staff access.
func (h *Handler) load(c *gin.Context) (*domain.WithdrawalRequest, bool) {
	userID, ok := request.UserID(c)
	if !ok {
		return nil, false
	}
	id, ok := request.ParamID(c, "id")
	if !ok {
		return nil, false
	}
	w, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return nil, false
	}
	if w.UserID != userID && !request.IsStaff(c) {
		response.FromError(c, domain.ErrForbidden)
		return nil, false
	}
	return w, true
}

func (h *Handler) Get(c *gin.Context) {
	w, ok := h.load(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawal": w})
}

// RequestConfirmation returns the plaintext token once; delivery to the
// account holder happens out of band.
func (h *Handler) RequestConfirmation(c *gin.Context) {
	w, ok := h.load(c)
	if !ok {
		return
	}
	w, token, err := h.service.RequestConfirmation(c.Request.Context(), w.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"withdrawal": w,
		"token":      token,
		"expires_at": w.TokenExpiresAt,
	})
}

func (h *Handler) Confirm(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	var req confirmRequest
	if !request.BindJSON(c, &req) {
		return
	}
	w, err := h.service.Confirm(c.Request.Context(), userID, req.Token, req.Signature)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawal": w})
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req approveRequest
	if !request.BindJSON(c, &req) {
		return
	}
	w, txn, err := h.service.Approve(c.Request.Context(), id, c.GetInt64("user_id"), req.AdminSignature)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawal": w, "transaction": txn})
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req rejectRequest
	if !request.BindJSON(c, &req) {
		return
	}
	w, err := h.service.Reject(c.Request.Context(), id, c.GetInt64("user_id"), req.Note)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawal": w})
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	w, err := h.service.Complete(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"withdrawal": w})
}
