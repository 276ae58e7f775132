package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/testdb"
)

func setupService(t *testing.T) (*Service, *Ledger, *domain.User, *domain.User) {
	t.Helper()
	db := testdb.Open(t)
	ledger := NewLedger(db)
	guest := testdb.CreateUser(t, db, domain.RoleGuest)
	staff := testdb.CreateUser(t, db, domain.RoleStaff)
	return NewService(db, ledger), ledger, guest, staff
}

func TestService_ApproveDeposit_CreditsLedger(t *testing.T) {
	svc, ledger, guest, staff := setupService(t)
	ctx := context.Background()

	dep, err := svc.CreateDeposit(ctx, CreateDepositInput{UserID: guest.ID, Amount: 3000, ProofReference: "receipt-1.png"})
	require.NoError(t, err)
	assert.Equal(t, domain.DepositPending, dep.Status)
	assert.Equal(t, string(domain.MethodBankTransfer), dep.Method)

	approved, txn, err := svc.ApproveDeposit(ctx, dep.ID, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DepositApproved, approved.Status)
	require.NotNil(t, approved.ProcessedBy)
	assert.Equal(t, staff.ID, *approved.ProcessedBy)
	assert.Equal(t, domain.DepositRef(dep.ID), txn.Ref())

	bal, err := ledger.Balance(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), bal.Cash)

	_, _, err = svc.ApproveDeposit(ctx, dep.ID, staff.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	bal, err = ledger.Balance(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), bal.Cash, "double approval must not credit twice")
}

func TestService_RejectDeposit(t *testing.T) {
	svc, ledger, guest, staff := setupService(t)
	ctx := context.Background()

	dep, err := svc.CreateDeposit(ctx, CreateDepositInput{UserID: guest.ID, Amount: 3000, ProofReference: "r.png"})
	require.NoError(t, err)

	rejected, err := svc.RejectDeposit(ctx, dep.ID, staff.ID, "  blurry receipt ")
	require.NoError(t, err)
	assert.Equal(t, domain.DepositRejected, rejected.Status)
	assert.Equal(t, "blurry receipt", rejected.AdminNote)

	_, _, err = svc.ApproveDeposit(ctx, dep.ID, staff.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	bal, err := ledger.Balance(ctx, guest.ID)
	require.NoError(t, err)
	assert.Zero(t, bal.Cash)
}

func TestService_CreateDeposit_Validation(t *testing.T) {
	svc, _, guest, _ := setupService(t)

	_, err := svc.CreateDeposit(context.Background(), CreateDepositInput{UserID: guest.ID, Amount: 0, ProofReference: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateDeposit(context.Background(), CreateDepositInput{UserID: guest.ID, Amount: 10})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_ApproveDeposit_NotFound(t *testing.T) {
	svc, _, _, staff := setupService(t)
	_, _, err := svc.ApproveDeposit(context.Background(), 404, staff.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_GrantBonus(t *testing.T) {
	svc, ledger, guest, staff := setupService(t)
	ctx := context.Background()

	txn, err := svc.GrantBonus(ctx, guest.ID, staff.ID, 700, "")
	require.NoError(t, err)
	assert.Equal(t, domain.TxBonus, txn.Type)
	assert.Equal(t, "Bonus", txn.Description)

	bal, err := ledger.Balance(ctx, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(700), bal.Bonus)
	assert.Zero(t, bal.Cash)

	_, err = svc.GrantBonus(ctx, guest.ID, staff.ID, -5, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
