package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/domain"
)

func TestStruct_BankInfo(t *testing.T) {
	err := Struct(domain.BankInfo{BankName: "Kaspi", AccountNumber: "KZ01"})
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "account_name", verr.Field)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.NoError(t, Struct(domain.BankInfo{BankName: "Kaspi", AccountNumber: "KZ01", AccountName: "A. Guest"}))
}

func TestValidate_ReportsEveryField(t *testing.T) {
	fields := Validate(domain.BankInfo{})
	assert.Equal(t, map[string]string{
		"bank_name":      "required",
		"account_number": "required",
		"account_name":   "required",
	}, fields)
}
