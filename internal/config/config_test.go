package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, int64(1000), cfg.WithdrawalMinAmount)
	assert.Equal(t, 24*time.Hour, cfg.WithdrawalTokenTTL)
	assert.Equal(t, "0 3 * * *", cfg.LedgerAuditSchedule)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsProdLike())
}

func TestLoad_DatabaseURLDefaultsToSQLiteInDev(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cfg.DatabaseURL, "file:"))

	t.Setenv("APP_ENV", "release")
	t.Setenv("JWT_SECRET", "a-real-secret")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WITHDRAWAL_MIN_AMOUNT", "5000")
	t.Setenv("WITHDRAWAL_TOKEN_TTL", "30m")
	t.Setenv("APP_ENV", " Dev ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(5000), cfg.WithdrawalMinAmount)
	assert.Equal(t, 30*time.Minute, cfg.WithdrawalTokenTTL)
	assert.Equal(t, "dev", cfg.AppEnv)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProdRequiresSecretAndPostgres(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "file:local.db")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProdLike())
}

func TestLoad_NonPositiveMinimumRejected(t *testing.T) {
	t.Setenv("WITHDRAWAL_MIN_AMOUNT", "0")

	_, err := Load()
	assert.Error(t, err)
}
