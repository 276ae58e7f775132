package wallet

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/repository"
)

// Entry is one requested balance mutation.
type Entry struct {
	UserID      int64
	Type        domain.TransactionType
	Amount      int64
	BonusAmount int64
	Description string
	Ref         domain.TransactionRef
}

func (e Entry) validate() error {
	if e.UserID <= 0 {
		return domain.NewValidationError("user_id", "must be positive")
	}
	if !e.Type.Valid() {
		return domain.NewValidationError("type", fmt.Sprintf("unknown transaction type %q", e.Type))
	}
	if e.Amount < 0 {
		return domain.NewValidationError("amount", "must not be negative")
	}
	if e.BonusAmount < 0 {
		return domain.NewValidationError("bonus_amount", "must not be negative")
	}
	if e.Amount == 0 && e.BonusAmount == 0 {
		return domain.NewValidationError("amount", "must be positive")
	}
	switch e.Type {
	case domain.TxDeposit, domain.TxWithdrawal:
		if e.BonusAmount != 0 {
			return domain.NewValidationError("bonus_amount", fmt.Sprintf("not allowed for %s", e.Type))
		}
	case domain.TxBonus:
		if e.Amount != 0 {
			return domain.NewValidationError("amount", "bonus credits only the bonus balance")
		}
	}
	return e.Ref.Validate()
}

// Ledger is the only writer of user balances.
type Ledger struct {
	db    *gorm.DB
	users *repository.UserRepository
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, users: repository.NewUserRepository(db)}
}

// Apply runs ApplyTx in its own transaction.
func (l *Ledger) Apply(ctx context.Context, e Entry) (*domain.WalletTransaction, error) {
	var txn *domain.WalletTransaction
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = ApplyTx(tx, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ApplyTx mutates the user's balances and appends the ledger row inside tx.
// The user row stays locked until tx ends, so callers can compose several
// ledger entries with their own writes atomically.
func ApplyTx(tx *gorm.DB, e Entry) (*domain.WalletTransaction, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	user, err := LockUser(tx, e.UserID)
	if err != nil {
		return nil, err
	}
	if err := checkChainHead(tx, user); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("ledger chain head mismatch, refusing mutation")
		return nil, err
	}

	txn := domain.WalletTransaction{
		UserID:             user.ID,
		Type:               e.Type,
		Amount:             e.Amount,
		BonusAmount:        e.BonusAmount,
		BalanceBefore:      user.CashBalance,
		BonusBalanceBefore: user.BonusBalance,
		Description:        e.Description,
		RefKind:            e.Ref.Kind,
		RefID:              e.Ref.ID,
		Status:             domain.TxStatusCompleted,
	}

	if e.Type.IsDebit() {
		var held int64
		if e.Amount > 0 {
			var err error
			if held, err = HeldAmount(tx, user.ID); err != nil {
				return nil, err
			}
		}
		available := user.CashBalance - held
		if available < e.Amount || user.BonusBalance < e.BonusAmount {
			return nil, &domain.InsufficientFundsError{
				UserID:         user.ID,
				CashAvailable:  available,
				CashRequested:  e.Amount,
				BonusAvailable: user.BonusBalance,
				BonusRequested: e.BonusAmount,
			}
		}
	}

	txn.BalanceAfter = txn.BalanceBefore + txn.CashDelta()
	txn.BonusBalanceAfter = txn.BonusBalanceBefore + txn.BonusDelta()
	if txn.BalanceAfter < 0 || txn.BonusBalanceAfter < 0 {
		return nil, &domain.LedgerInconsistencyError{UserID: user.ID, Reason: "balance would become negative"}
	}

	res := tx.Model(&domain.User{}).
		Where("id = ? AND cash_balance = ? AND bonus_balance = ?", user.ID, user.CashBalance, user.BonusBalance).
		Updates(map[string]any{
			"cash_balance":  txn.BalanceAfter,
			"bonus_balance": txn.BonusBalanceAfter,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected != 1 {
		return nil, &domain.LedgerInconsistencyError{UserID: user.ID, Reason: "balance changed underneath the ledger"}
	}

	if err := tx.Create(&txn).Error; err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":     user.ID,
		"txn_id":      txn.ID,
		"type":        txn.Type,
		"amount":      txn.Amount,
		"bonus":       txn.BonusAmount,
		"cash_after":  txn.BalanceAfter,
		"bonus_after": txn.BonusBalanceAfter,
	}).Debug("ledger entry applied")
	return &txn, nil
}

// LockUser takes the row lock that serialises all balance reads and writes of a user within tx.
func LockUser(tx *gorm.DB, userID int64) (*domain.User, error) {
	return repository.NewUserRepository(tx).GetForUpdate(tx.Statement.Context, userID)
}

// checkChainHead verifies the stored balances equal the after-snapshot of the
// user's latest ledger row.
func checkChainHead(tx *gorm.DB, user *domain.User) error {
	var last []domain.WalletTransaction
	if err := tx.Where("user_id = ?", user.ID).Order("id desc").Limit(1).Find(&last).Error; err != nil {
		return err
	}
	wantCash, wantBonus := int64(0), int64(0)
	if len(last) == 1 {
		wantCash, wantBonus = last[0].BalanceAfter, last[0].BonusBalanceAfter
	}
	if user.CashBalance != wantCash || user.BonusBalance != wantBonus {
		return &domain.LedgerInconsistencyError{
			UserID: user.ID,
			Reason: fmt.Sprintf("stored balances cash=%d bonus=%d, ledger head cash=%d bonus=%d",
				user.CashBalance, user.BonusBalance, wantCash, wantBonus),
		}
	}
	return nil
}

// HeldAmount sums the cash reserved by the user's open withdrawal requests.
func HeldAmount(tx *gorm.DB, userID int64) (int64, error) {
	var held int64
	err := tx.Model(&domain.WithdrawalRequest{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND status IN ?", userID, domain.HeldWithdrawalStatuses).
		Scan(&held).Error
	return held, err
}

// Balance is a point-in-time view of a wallet.
type Balance struct {
	UserID    int64 `json:"user_id"`
	Cash      int64 `json:"cash"`
	Bonus     int64 `json:"bonus"`
	Held      int64 `json:"held"`
	Available int64 `json:"available"`
}

func (l *Ledger) Balance(ctx context.Context, userID int64) (*Balance, error) {
	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	held, err := HeldAmount(l.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	return &Balance{
		UserID:    user.ID,
		Cash:      user.CashBalance,
		Bonus:     user.BonusBalance,
		Held:      held,
		Available: user.CashBalance - held,
	}, nil
}

// ListTransactions returns the user's ledger, newest first.
func (l *Ledger) ListTransactions(ctx context.Context, userID int64, limit, offset int) ([]domain.WalletTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var txns []domain.WalletTransaction
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	return txns, err
}
