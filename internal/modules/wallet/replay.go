package wallet

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotelbooking/internal/domain"
)

// ReplayResult compares the stored balances with the sum of ledger deltas.
type ReplayResult struct {
	UserID        int64    `json:"user_id"`
	Transactions  int      `json:"transactions"`
	LedgerCash    int64    `json:"ledger_cash"`
	LedgerBonus   int64    `json:"ledger_bonus"`
	StoredCash    int64    `json:"stored_cash"`
	StoredBonus   int64    `json:"stored_bonus"`
	Discrepancies []string `json:"discrepancies,omitempty"`
}

func (r *ReplayResult) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// Replay walks the user's ledger in ID order and checks every snapshot.
// Stored balances and ledger rows are read under the user's row lock, so a
// concurrent ApplyTx lands either wholly before or wholly after the replay.
func (l *Ledger) Replay(ctx context.Context, userID int64) (*ReplayResult, error) {
	var res *ReplayResult
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := LockUser(tx, userID)
		if err != nil {
			return err
		}
		res = &ReplayResult{UserID: user.ID, StoredCash: user.CashBalance, StoredBonus: user.BonusBalance}

		var batch []domain.WalletTransaction
		// FindInBatches pages in primary key order, which is ledger order.
		return tx.Where("user_id = ?", userID).
			FindInBatches(&batch, 500, func(_ *gorm.DB, _ int) error {
				for _, txn := range batch {
					res.check(txn)
				}
				return nil
			}).Error
	})
	if err != nil {
		return nil, err
	}

	if res.LedgerCash != res.StoredCash {
		res.addf("stored cash %d != ledger cash %d", res.StoredCash, res.LedgerCash)
	}
	if res.LedgerBonus != res.StoredBonus {
		res.addf("stored bonus %d != ledger bonus %d", res.StoredBonus, res.LedgerBonus)
	}
	return res, nil
}

func (r *ReplayResult) check(txn domain.WalletTransaction) {
	r.Transactions++
	if txn.BalanceBefore != r.LedgerCash || txn.BonusBalanceBefore != r.LedgerBonus {
		r.addf("txn %d: before snapshot cash=%d bonus=%d, expected cash=%d bonus=%d",
			txn.ID, txn.BalanceBefore, txn.BonusBalanceBefore, r.LedgerCash, r.LedgerBonus)
	}
	r.LedgerCash += txn.CashDelta()
	r.LedgerBonus += txn.BonusDelta()
	if txn.BalanceAfter != r.LedgerCash || txn.BonusBalanceAfter != r.LedgerBonus {
		r.addf("txn %d: after snapshot cash=%d bonus=%d, expected cash=%d bonus=%d",
			txn.ID, txn.BalanceAfter, txn.BonusBalanceAfter, r.LedgerCash, r.LedgerBonus)
	}
}

func (r *ReplayResult) addf(format string, args ...any) {
	r.Discrepancies = append(r.Discrepancies, fmt.Sprintf(format, args...))
}

// VerifyUser returns a *domain.LedgerInconsistencyError when replay disagrees
// with the stored balances.
func (l *Ledger) VerifyUser(ctx context.Context, userID int64) error {
	res, err := l.Replay(ctx, userID)
	if err != nil {
		return err
	}
	if !res.Consistent() {
		return &domain.LedgerInconsistencyError{UserID: userID, Reason: res.Discrepancies[0]}
	}
	return nil
}

// VerifyAll replays every user's ledger and returns the inconsistent ones.
func (l *Ledger) VerifyAll(ctx context.Context) ([]ReplayResult, error) {
	var (
		ids []int64
		bad []ReplayResult
	)
	if err := l.db.WithContext(ctx).Model(&domain.User{}).Order("id asc").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return bad, err
		}
		res, err := l.Replay(ctx, id)
		if err != nil {
			return bad, err
		}
		if !res.Consistent() {
			log.WithFields(log.Fields{
				"user_id":       id,
				"discrepancies": res.Discrepancies,
			}).Error("ledger replay mismatch")
			bad = append(bad, *res)
		}
	}
	log.WithFields(log.Fields{"users": len(ids), "inconsistent": len(bad)}).Info("ledger verification finished")
	return bad, nil
}
