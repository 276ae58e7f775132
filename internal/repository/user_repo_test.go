package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/testdb"
)

func TestUserRepository_GetByID(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.CreateUser(t, db, domain.RoleGuest)
	repo := NewUserRepository(db)

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = repo.GetByID(context.Background(), u.ID+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_GetForUpdateInsideTx(t *testing.T) {
	db := testdb.Open(t)
	u := testdb.CreateUser(t, db, domain.RoleGuest)
	repo := NewUserRepository(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetForUpdate(context.Background(), u.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, u.ID, locked.ID)
		return nil
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.WithTx(tx).GetForUpdate(context.Background(), 9999)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
