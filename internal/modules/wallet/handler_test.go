package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/testdb"
)

type handlerEnv struct {
	router *gin.Engine
	ledger *Ledger
	guest  *domain.User
	staff  *domain.User
}

func setupTestRouter(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	ledger := NewLedger(db)
	h := NewHandler(ledger, NewService(db, ledger))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-Test-User-ID"); userID != "" {
			id, _ := strconv.ParseInt(userID, 10, 64)
			c.Set("user_id", id)
			c.Set("role", c.GetHeader("X-Test-Role"))
		}
		c.Next()
	})
	v1 := r.Group("/api/v1")
	h.RegisterRoutes(v1, v1.Group("/staff"))

	return &handlerEnv{
		router: r,
		ledger: ledger,
		guest:  testdb.CreateUser(t, db, domain.RoleGuest),
		staff:  testdb.CreateUser(t, db, domain.RoleStaff),
	}
}

func doJSONRequest(r http.Handler, method, path string, body any, user *domain.User) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("X-Test-User-ID", strconv.FormatInt(user.ID, 10))
		req.Header.Set("X-Test-Role", string(user.Role))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestWalletEndpoints_Unauthorized(t *testing.T) {
	env := setupTestRouter(t)

	for _, path := range []string{"/api/v1/wallet", "/api/v1/wallet/transactions"} {
		rr := doJSONRequest(env.router, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestDepositFlowOverHTTP(t *testing.T) {
	env := setupTestRouter(t)

	rr := doJSONRequest(env.router, http.MethodPost, "/api/v1/wallet/deposits",
		map[string]any{"amount": 2500, "proof_reference": "r.png"}, env.guest)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	depID := gjson.Get(rr.Body.String(), "data.deposit.id").Int()

	rr = doJSONRequest(env.router, http.MethodPost, fmt.Sprintf("/api/v1/staff/deposits/%d/approve", depID), nil, env.staff)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "approved", gjson.Get(rr.Body.String(), "data.deposit.status").String())
	assert.Equal(t, int64(2500), gjson.Get(rr.Body.String(), "data.transaction.balance_after").Int())

	rr = doJSONRequest(env.router, http.MethodGet, "/api/v1/wallet", nil, env.guest)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(2500), gjson.Get(rr.Body.String(), "data.available").Int())

	rr = doJSONRequest(env.router, http.MethodPost, fmt.Sprintf("/api/v1/staff/deposits/%d/approve", depID), nil, env.staff)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "INVALID_STATE", gjson.Get(rr.Body.String(), "error.code").String())
}

func TestCreateDeposit_InvalidBody(t *testing.T) {
	env := setupTestRouter(t)

	rr := doJSONRequest(env.router, http.MethodPost, "/api/v1/wallet/deposits", map[string]any{"amount": -1}, env.guest)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", gjson.Get(rr.Body.String(), "error.code").String())
}

func TestGrantBonusAndVerifyLedger(t *testing.T) {
	env := setupTestRouter(t)

	rr := doJSONRequest(env.router, http.MethodPost, fmt.Sprintf("/api/v1/staff/users/%d/bonus", env.guest.ID),
		map[string]any{"amount": 400, "description": "loyalty"}, env.staff)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSONRequest(env.router, http.MethodGet, fmt.Sprintf("/api/v1/staff/users/%d/ledger", env.guest.ID), nil, env.staff)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, gjson.Get(rr.Body.String(), "data.consistent").Bool())
	assert.Equal(t, int64(400), gjson.Get(rr.Body.String(), "data.replay.ledger_bonus").Int())

	txns, err := env.ledger.ListTransactions(context.Background(), env.guest.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}
