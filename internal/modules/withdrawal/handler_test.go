package withdrawal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/modules/wallet"
	"hotelbooking/internal/pkg/testdb"
)

type handlerEnv struct {
	router *gin.Engine
	guest  *domain.User
	other  *domain.User
	staff  *domain.User
}

func setupTestRouter(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	h := NewHandler(NewService(db, Config{MinAmount: 1000, TokenTTL: time.Hour}))

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

	env := &handlerEnv{
		router: r,
		guest:  testdb.CreateUser(t, db, domain.RoleGuest),
		other:  testdb.CreateUser(t, db, domain.RoleGuest),
		staff:  testdb.CreateUser(t, db, domain.RoleAdmin),
	}
	_, err := wallet.NewLedger(db).Apply(context.Background(), wallet.Entry{UserID: env.guest.ID, Type: domain.TxDeposit, Amount: 5000})
	require.NoError(t, err)
	return env
}

func doJSONRequest(r http.Handler, method, path string, body any, user *domain.User) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("X-Test-User-ID", strconv.FormatInt(user.ID, 10))
		req.Header.Set("X-Test-Role", string(user.Role))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestWithdrawalFlow_HTTP(t *testing.T) {
	env := setupTestRouter(t)

	rr := doJSONRequest(env.router, http.MethodPost, "/api/v1/withdrawals", gin.H{
		"amount": 2000,
		"bank":   gin.H{"bank_name": "Halyk", "account_number": "KZ77", "account_name": "Guest"},
	}, env.guest)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	id := gjson.Get(rr.Body.String(), "data.withdrawal.id").Int()
	assert.Equal(t, "pending", gjson.Get(rr.Body.String(), "data.withdrawal.status").String())
	assert.False(t, gjson.Get(rr.Body.String(), "data.withdrawal.token_hash").Exists())

	rr = doJSONRequest(env.router, http.MethodGet, fmt.Sprintf("/api/v1/withdrawals/%d", id), nil, env.other)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSONRequest(env.router, http.MethodPost, fmt.Sprintf("/api/v1/withdrawals/%d/request-confirmation", id), nil, env.guest)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	token := gjson.Get(rr.Body.String(), "data.token").String()
	require.NotEmpty(t, token)

	rr = doJSONRequest(env.router, http.MethodPost, fmt.Sprintf("/api/v1/staff/withdrawals/%d/approve", id), gin.H{"admin_signature": "boss"}, env.staff)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "INVALID_STATE", gjson.Get(rr.Body.String(), "error.code").String())

	rr = doJSONRequest(env.router, http.MethodPost, "/api/v1/withdrawals/confirm", gin.H{"token": "bogus", "signature": "me"}, env.guest)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "TOKEN_INVALID", gjson.Get(rr.Body.String(), "error.code").String())

	rr = doJSONRequest(env.router, http.MethodPost, "/api/v1/withdrawals/confirm", gin.H{"token": token, "signature": "me"}, env.guest)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, gjson.Get(rr.Body.String(), "data.withdrawal.confirmed_at").Exists())

	rr = doJSONRequest(env.router, http.MethodPost, fmt.Sprintf("/api/v1/staff/withdrawals/%d/approve", id), gin.H{"admin_signature": "boss"}, env.staff)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "approved", gjson.Get(rr.Body.String(), "data.withdrawal.status").String())
	assert.Equal(t, int64(3000), gjson.Get(rr.Body.String(), "data.transaction.balance_after").Int())

	rr = doJSONRequest(env.router, http.MethodPost, fmt.Sprintf("/api/v1/staff/withdrawals/%d/complete", id), nil, env.staff)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "completed", gjson.Get(rr.Body.String(), "data.withdrawal.status").String())
}

func TestCreate_InsufficientFunds_HTTP(t *testing.T) {
	env := setupTestRouter(t)

	rr := doJSONRequest(env.router, http.MethodPost, "/api/v1/withdrawals", gin.H{
		"amount": 9000,
		"bank":   gin.H{"bank_name": "Halyk", "account_number": "KZ77", "account_name": "Guest"},
	}, env.guest)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "INSUFFICIENT_FUNDS", gjson.Get(rr.Body.String(), "error.code").String())
}

func TestCreate_Unauthorized_HTTP(t *testing.T) {
	env := setupTestRouter(t)
	rr := doJSONRequest(env.router, http.MethodPost, "/api/v1/withdrawals", gin.H{"amount": 2000}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
