package wallet

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelbooking/internal/pkg/request"
	"hotelbooking/internal/pkg/response"
)

type Handler struct {
	ledger  *Ledger
	service *Service
}

func NewHandler(ledger *Ledger, service *Service) *Handler {
	return &Handler{ledger: ledger, service: service}
}

type createDepositRequest struct {
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	Method         string `json:"method"`
	ProofReference string `json:"proof_reference" binding:"required"`
}

type rejectRequest struct {
	Note string `json:"note"`
}

type grantBonusRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description"`
}

func (h *Handler) GetMyWallet(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	bal, err := h.ledger.Balance(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, bal)
}

func (h *Handler) ListMyTransactions(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	limit, offset := request.Page(c)
	txns, err := h.ledger.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transactions": txns})
}

func (h *Handler) CreateDeposit(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	var req createDepositRequest
	if !request.BindJSON(c, &req) {
		return
	}
	dep, err := h.service.CreateDeposit(c.Request.Context(), CreateDepositInput{
		UserID:         userID,
		Amount:         req.Amount,
		Method:         req.Method,
		ProofReference: req.ProofReference,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"deposit": dep})
}

func (h *Handler) ApproveDeposit(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	dep, txn, err := h.service.ApproveDeposit(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deposit": dep, "transaction": txn})
}

func (h *Handler) RejectDeposit(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req rejectRequest
	if !request.BindJSON(c, &req) {
		return
	}
	dep, err := h.service.RejectDeposit(c.Request.Context(), id, c.GetInt64("user_id"), req.Note)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deposit": dep})
}

func (h *Handler) GrantBonus(c *gin.Context) {
	userID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req grantBonusRequest
	if !request.BindJSON(c, &req) {
		return
	}
	txn, err := h.service.GrantBonus(c.Request.Context(), userID, c.GetInt64("user_id"), req.Amount, req.Description)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"transaction": txn})
}

func (h *Handler) VerifyUserLedger(c *gin.Context) {
	userID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	res, err := h.ledger.Replay(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"consistent": res.Consistent(), "replay": res})
}
