package wallet

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts guest routes on user and staff-only routes on staff.
func (h *Handler) RegisterRoutes(user, staff *gin.RouterGroup) {
	wallet := user.Group("/wallet")
	{
		wallet.GET("", h.GetMyWallet)
		wallet.GET("/transactions", h.ListMyTransactions)
		wallet.POST("/deposits", h.CreateDeposit)
	}

	staff.POST("/deposits/:id/approve", h.ApproveDeposit)
	staff.POST("/deposits/:id/reject", h.RejectDeposit)
	staff.POST("/users/:id/bonus", h.GrantBonus)
	staff.GET("/users/:id/ledger", h.VerifyUserLedger)
}
