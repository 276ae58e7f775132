package withdrawal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/modules/wallet"
	"hotelbooking/internal/pkg/testdb"
)

var testBank = domain.BankInfo{BankName: "Kaspi", AccountNumber: "KZ001122", AccountName: "Test Guest"}

type WithdrawalSuite struct {
	suite.Suite
	ctx    context.Context
	svc    *Service
	ledger *wallet.Ledger
	guest  *domain.User
	staff  *domain.User
	clock  time.Time
}

func (s *WithdrawalSuite) SetupTest() {
	db := testdb.Open(s.T())
	s.ctx = context.Background()
	s.ledger = wallet.NewLedger(db)
	s.svc = NewService(db, Config{MinAmount: 1000, TokenTTL: time.Hour})
	s.clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.svc.now = func() time.Time { return s.clock }
	s.guest = testdb.CreateUser(s.T(), db, domain.RoleGuest)
	s.staff = testdb.CreateUser(s.T(), db, domain.RoleStaff)

	_, err := s.ledger.Apply(s.ctx, wallet.Entry{UserID: s.guest.ID, Type: domain.TxDeposit, Amount: 10000})
	s.Require().NoError(err)
}

func TestWithdrawalSuite(t *testing.T) {
	suite.Run(t, new(WithdrawalSuite))
}

func (s *WithdrawalSuite) create(amount int64) *domain.WithdrawalRequest {
	w, err := s.svc.Create(s.ctx, CreateInput{UserID: s.guest.ID, Amount: amount, Bank: testBank})
	s.Require().NoError(err)
	return w
}

func (s *WithdrawalSuite) confirmed(amount int64) *domain.WithdrawalRequest {
	w := s.create(amount)
	_, token, err := s.svc.RequestConfirmation(s.ctx, w.ID)
	s.Require().NoError(err)
	w, err = s.svc.Confirm(s.ctx, s.guest.ID, token, "guest-sig")
	s.Require().NoError(err)
	return w
}

func (s *WithdrawalSuite) available() int64 {
	bal, err := s.ledger.Balance(s.ctx, s.guest.ID)
	s.Require().NoError(err)
	return bal.Available
}

func (s *WithdrawalSuite) TestCreate_BelowMinimum() {
	_, err := s.svc.Create(s.ctx, CreateInput{UserID: s.guest.ID, Amount: 500, Bank: testBank})
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *WithdrawalSuite) TestCreate_RequiresBankInfo() {
	_, err := s.svc.Create(s.ctx, CreateInput{
		UserID: s.guest.ID,
		Amount: 2000,
		Bank:   domain.BankInfo{BankName: "Kaspi", AccountName: "  "},
	})
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *WithdrawalSuite) TestCreate_HoldBlocksSecondRequest() {
	w := s.create(7000)
	s.Equal(domain.WithdrawalPending, w.Status)
	s.Equal(int64(3000), s.available())

	_, err := s.svc.Create(s.ctx, CreateInput{UserID: s.guest.ID, Amount: 4000, Bank: testBank})
	s.ErrorIs(err, domain.ErrInsufficientFunds)

	s.create(3000)
	s.Zero(s.available())
}

func (s *WithdrawalSuite) TestReject_ReleasesHold() {
	w := s.create(7000)
	_, _, err := s.svc.RequestConfirmation(s.ctx, w.ID)
	s.Require().NoError(err)

	rejected, err := s.svc.Reject(s.ctx, w.ID, s.staff.ID, "account name mismatch")
	s.Require().NoError(err)
	s.Equal(domain.WithdrawalRejected, rejected.Status)
	s.Nil(rejected.TokenHash)
	s.Equal(int64(10000), s.available())

	_, err = s.svc.Reject(s.ctx, w.ID, s.staff.ID, "again")
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *WithdrawalSuite) TestConfirm_WrongTokenKeepsState() {
	w := s.create(2000)
	_, _, err := s.svc.RequestConfirmation(s.ctx, w.ID)
	s.Require().NoError(err)

	_, err = s.svc.Confirm(s.ctx, s.guest.ID, "not-the-token", "sig")
	s.ErrorIs(err, domain.ErrTokenInvalid)

	got, err := s.svc.Get(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(domain.WithdrawalPendingConfirmation, got.Status)
	s.Nil(got.ConfirmedAt)
	s.NotNil(got.TokenHash)
}

func (s *WithdrawalSuite) TestConfirm_TokenIsSingleUse() {
	w := s.create(2000)
	_, token, err := s.svc.RequestConfirmation(s.ctx, w.ID)
	s.Require().NoError(err)

	first, err := s.svc.Confirm(s.ctx, s.guest.ID, token, "sig")
	s.Require().NoError(err)
	s.Require().NotNil(first.ConfirmedAt)
	s.Nil(first.TokenHash)

	s.clock = s.clock.Add(time.Minute)
	_, err = s.svc.Confirm(s.ctx, s.guest.ID, token, "sig")
	s.ErrorIs(err, domain.ErrTokenInvalid)

	got, err := s.svc.Get(s.ctx, w.ID)
	s.Require().NoError(err)
	s.True(first.ConfirmedAt.Equal(*got.ConfirmedAt))
}

func (s *WithdrawalSuite) TestConfirm_Expired() {
	w := s.create(2000)
	_, token, err := s.svc.RequestConfirmation(s.ctx, w.ID)
	s.Require().NoError(err)

	s.clock = s.clock.Add(2 * time.Hour)
	_, err = s.svc.Confirm(s.ctx, s.guest.ID, token, "sig")
	s.ErrorIs(err, domain.ErrTokenExpired)

	// a fresh token replaces the expired one
	_, fresh, err := s.svc.RequestConfirmation(s.ctx, w.ID)
	s.Require().NoError(err)
	s.NotEqual(token, fresh)
	_, err = s.svc.Confirm(s.ctx, s.guest.ID, token, "sig")
	s.ErrorIs(err, domain.ErrTokenInvalid)
	_, err = s.svc.Confirm(s.ctx, s.guest.ID, fresh, "sig")
	s.NoError(err)
}

func (s *WithdrawalSuite) TestConfirm_OtherUserCannotConsume() {
	w := s.create(2000)
	_, token, err := s.svc.RequestConfirmation(s.ctx, w.ID)
	s.Require().NoError(err)

	_, err = s.svc.Confirm(s.ctx, s.staff.ID, token, "sig")
	s.ErrorIs(err, domain.ErrTokenInvalid)
}

func (s *WithdrawalSuite) TestRequestConfirmation_NotAfterConfirm() {
	w := s.confirmed(2000)
	_, _, err := s.svc.RequestConfirmation(s.ctx, w.ID)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *WithdrawalSuite) TestApprove_BeforeConfirm() {
	w := s.create(2000)
	_, _, err := s.svc.Approve(s.ctx, w.ID, s.staff.ID, "admin-sig")
	s.ErrorIs(err, domain.ErrInvalidState)

	_, _, err = s.svc.RequestConfirmation(s.ctx, w.ID)
	s.Require().NoError(err)
	_, _, err = s.svc.Approve(s.ctx, w.ID, s.staff.ID, "admin-sig")
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *WithdrawalSuite) TestApprove_DebitsLedger() {
	w := s.confirmed(7000)
	s.Equal(int64(3000), s.available())

	_, _, err := s.svc.Approve(s.ctx, w.ID, s.staff.ID, "  ")
	s.ErrorIs(err, domain.ErrValidation)

	approved, txn, err := s.svc.Approve(s.ctx, w.ID, s.staff.ID, "admin-sig")
	s.Require().NoError(err)
	s.Equal(domain.WithdrawalApproved, approved.Status)
	s.Equal(domain.TxWithdrawal, txn.Type)
	s.Equal(domain.WithdrawalRef(w.ID), txn.Ref())
	s.Equal(int64(10000), txn.BalanceBefore)
	s.Equal(int64(3000), txn.BalanceAfter)

	bal, err := s.ledger.Balance(s.ctx, s.guest.ID)
	s.Require().NoError(err)
	s.Equal(int64(3000), bal.Cash)
	s.Zero(bal.Held)

	completed, err := s.svc.Complete(s.ctx, w.ID, s.staff.ID)
	s.Require().NoError(err)
	s.Equal(domain.WithdrawalCompleted, completed.Status)

	_, err = s.svc.Reject(s.ctx, w.ID, s.staff.ID, "late")
	s.ErrorIs(err, domain.ErrInvalidState)
	s.NoError(s.ledger.VerifyUser(s.ctx, s.guest.ID))
}

func (s *WithdrawalSuite) TestComplete_RequiresApproval() {
	w := s.create(2000)
	_, err := s.svc.Complete(s.ctx, w.ID, s.staff.ID)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *WithdrawalSuite) TestAdminCreated() {
	w, err := s.svc.Create(s.ctx, CreateInput{UserID: s.guest.ID, Amount: 1000, Bank: testBank, CreatedBy: s.staff.ID})
	s.Require().NoError(err)
	s.True(w.IsAdminCreated)
}

func TestHashToken(t *testing.T) {
	tok := newToken()
	require.Len(t, tok, 64)
	assert.Equal(t, hashToken(tok), hashToken(" "+tok+"\n"))
	assert.NotEqual(t, tok, hashToken(tok))
	assert.NotEqual(t, newToken(), tok)
}
