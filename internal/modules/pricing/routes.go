package pricing

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(public, staff *gin.RouterGroup) {
	public.GET("/rooms/:id/price", h.GetPrice)
	public.GET("/rooms/:id/quote", h.GetQuote)

	rules := staff.Group("/pricing-rules")
	{
		rules.POST("", h.CreateRule)
		rules.PUT("/:id", h.UpdateRule)
		rules.POST("/:id/deactivate", h.DeactivateRule)
	}
	staff.GET("/rooms/:id/pricing-rules", h.ListRoomRules)
}
