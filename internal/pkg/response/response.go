package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"hotelbooking/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// AbortError writes the error envelope and stops the handler chain.
func AbortError(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

// FromError maps a core error to its HTTP status and error code.
func FromError(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		fundsErr      *domain.InsufficientFundsError
		stateErr      *domain.InvalidStateError
		ruleErr       *domain.InvalidRuleError
	)

	switch {
	case errors.As(err, &validationErr):
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error(),
			gin.H{"field": validationErr.Field, "reason": validationErr.Reason})
	case errors.Is(err, domain.ErrValidation):
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, domain.ErrRoomUnavailable):
		Error(c, http.StatusConflict, "ROOM_UNAVAILABLE", "Room is not available for the selected dates")
	case errors.As(err, &fundsErr):
		ErrorWithDetails(c, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient wallet balance",
			gin.H{
				"cash_available":  fundsErr.CashAvailable,
				"cash_requested":  fundsErr.CashRequested,
				"bonus_available": fundsErr.BonusAvailable,
				"bonus_requested": fundsErr.BonusRequested,
			})
	case errors.As(err, &stateErr):
		ErrorWithDetails(c, http.StatusConflict, "INVALID_STATE", stateErr.Error(),
			gin.H{"entity": stateErr.Entity, "from": stateErr.From, "action": stateErr.Action})
	case errors.As(err, &ruleErr):
		Error(c, http.StatusBadRequest, "INVALID_RULE", ruleErr.Error())
	case errors.Is(err, domain.ErrTokenExpired):
		Error(c, http.StatusGone, "TOKEN_EXPIRED", "Confirmation token has expired")
	case errors.Is(err, domain.ErrTokenInvalid):
		Error(c, http.StatusBadRequest, "TOKEN_INVALID", "Confirmation token is invalid")
	default:
		if errors.Is(err, domain.ErrLedgerInconsistency) {
			log.WithError(err).Error("ledger inconsistency surfaced to client")
		}
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
