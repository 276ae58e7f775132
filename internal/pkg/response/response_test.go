package response

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"hotelbooking/internal/domain"
)

func render(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	FromError(c, err)
	return w
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.NewValidationError("amount", "must be >= 1000"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", fmt.Errorf("booking 7: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"unavailable", domain.ErrRoomUnavailable, http.StatusConflict, "ROOM_UNAVAILABLE"},
		{"funds", &domain.InsufficientFundsError{UserID: 1, CashAvailable: 10, CashRequested: 20}, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{"state", domain.NewInvalidStateError("withdrawal", 3, "pending", "approve"), http.StatusConflict, "INVALID_STATE"},
		{"rule", &domain.InvalidRuleError{Reason: "bad"}, http.StatusBadRequest, "INVALID_RULE"},
		{"token expired", domain.ErrTokenExpired, http.StatusGone, "TOKEN_EXPIRED"},
		{"token invalid", domain.ErrTokenInvalid, http.StatusBadRequest, "TOKEN_INVALID"},
		{"ledger", &domain.LedgerInconsistencyError{UserID: 1, Reason: "drift"}, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := render(tt.err)
			assert.Equal(t, tt.status, w.Code)
			body := w.Body.String()
			assert.False(t, gjson.Get(body, "success").Bool())
			assert.Equal(t, tt.code, gjson.Get(body, "error.code").String())
		})
	}
}

func TestFromError_Details(t *testing.T) {
	w := render(&domain.InsufficientFundsError{UserID: 1, CashAvailable: 10, CashRequested: 20})
	assert.Equal(t, int64(20), gjson.Get(w.Body.String(), "error.details.cash_requested").Int())

	w = render(domain.NewValidationError("bank_name", "is required"))
	assert.Equal(t, "bank_name", gjson.Get(w.Body.String(), "error.details.field").String())
}
