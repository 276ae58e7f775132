package availability

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/request"
	"hotelbooking/internal/pkg/response"
)

type Handler struct {
	checker *Checker
}

func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/rooms/:id/availability", h.GetAvailability)
}

// GetAvailability handles GET /rooms/:id/availability?check_in=&check_out=
func (h *Handler) GetAvailability(c *gin.Context) {
	roomID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	in, err := domain.ParseDate(c.Query("check_in"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	out, err := domain.ParseDate(c.Query("check_out"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	units, err := h.checker.AvailableUnits(c.Request.Context(), roomID, in, out, 0)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"room_id":         roomID,
		"check_in":        domain.FormatDate(in),
		"check_out":       domain.FormatDate(out),
		"available_units": units,
		"available":       units > 0,
	})
}
