package withdrawal

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(user, staff *gin.RouterGroup) {
	w := user.Group("/withdrawals")
	{
		w.POST("", h.Create)
		w.GET("", h.ListMine)
		w.POST("/confirm", h.Confirm)
		w.GET("/:id", h.Get)
		w.POST("/:id/request-confirmation", h.RequestConfirmation)
	}

	sw := staff.Group("/withdrawals")
	{
		sw.POST("", h.AdminCreate)
		sw.POST("/:id/approve", h.Approve)
		sw.POST("/:id/reject", h.Reject)
		sw.POST("/:id/complete", h.Complete)
	}
}
