package pricing

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

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

type ruleRequest struct {
	Name          string              `json:"name" binding:"required"`
	RoomIDs       []int64             `json:"room_ids" binding:"required,min=1"`
	Kind          domain.RuleKind     `json:"kind" binding:"required"`
	StartDate     string              `json:"start_date"`
	EndDate       string              `json:"end_date"`
	ModifierKind  domain.ModifierKind `json:"modifier_kind" binding:"required"`
	ModifierValue decimal.Decimal     `json:"modifier_value"`
	Active        *bool               `json:"active"`
}

func (r ruleRequest) toInput(id int64) (RuleInput, error) {
	in := RuleInput{
		ID:            id,
		Name:          r.Name,
		RoomIDs:       r.RoomIDs,
		Kind:          r.Kind,
		ModifierKind:  r.ModifierKind,
		ModifierValue: r.ModifierValue,
		Active:        r.Active,
	}
	var err error
	if in.StartDate, err = optionalDate("start_date", r.StartDate); err != nil {
		return in, err
	}
	if in.EndDate, err = optionalDate("end_date", r.EndDate); err != nil {
		return in, err
	}
	return in, nil
}

func optionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be YYYY-MM-DD")
	}
	return &d, nil
}

func (h *Handler) CreateRule(c *gin.Context) {
	h.saveRule(c, 0, http.StatusCreated)
}

func (h *Handler) UpdateRule(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	h.saveRule(c, id, http.StatusOK)
}

func (h *Handler) saveRule(c *gin.Context, id int64, status int) {
	var req ruleRequest
	if !request.BindJSON(c, &req) {
		return
	}
	in, err := req.toInput(id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	rule, err := h.service.UpsertRule(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, status, gin.H{"rule": rule})
}

func (h *Handler) DeactivateRule(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeactivateRule(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "active": false})
}

func (h *Handler) ListRoomRules(c *gin.Context) {
	roomID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	rules, err := h.service.ListRulesForRoom(c.Request.Context(), roomID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rules": rules})
}

func (h *Handler) GetPrice(c *gin.Context) {
	roomID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	night, err := h.service.ResolvePrice(c.Request.Context(), roomID, date)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, night)
}

func (h *Handler) GetQuote(c *gin.Context) {
	roomID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	in, err := domain.ParseDate(c.Query("check_in"))
	if err != nil {
		response.FromError(c, domain.NewValidationError("check_in", "must be YYYY-MM-DD"))
		return
	}
	out, err := domain.ParseDate(c.Query("check_out"))
	if err != nil {
		response.FromError(c, domain.NewValidationError("check_out", "must be YYYY-MM-DD"))
		return
	}
	q, err := h.service.QuoteStay(c.Request.Context(), roomID, in, out)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, q)
}
