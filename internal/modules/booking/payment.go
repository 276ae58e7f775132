package booking

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/modules/wallet"
)

type PayInput struct {
	BookingID      int64
	UserID         int64
	Method         domain.PaymentMethod
	ProofReference string
}

// split is how much of a charge the wallet covers.
type split struct {
	cash  int64
	bonus int64
}

func (s split) total() int64 { return s.cash + s.bonus }

// walletSplit locks the user and works out what the wallet can cover of due.
// use_bonus draws the bonus balance first.
func walletSplit(tx *gorm.DB, userID, due int64, option domain.PaymentOption) (split, *domain.User, int64, error) {
	user, err := wallet.LockUser(tx, userID)
	if err != nil {
		return split{}, nil, 0, err
	}
	held, err := wallet.HeldAmount(tx, userID)
	if err != nil {
		return split{}, nil, 0, err
	}
	cashAvailable := user.CashBalance - held
	if cashAvailable < 0 {
		cashAvailable = 0
	}

	var sp split
	if option == domain.OptionUseBonus {
		sp.bonus = min(user.BonusBalance, due)
	}
	sp.cash = min(cashAvailable, due-sp.bonus)
	return sp, user, cashAvailable, nil
}

// Pay settles the deposit of a pending_deposit booking and moves it to
// awaiting_approval. Ledger settlement and the status change commit together.
func (s *Service) Pay(ctx context.Context, in PayInput) (*domain.Booking, error) {
	if !in.Method.Valid() {
		return nil, domain.NewValidationError("method", fmt.Sprintf("unknown payment method %q", in.Method))
	}
	proof := strings.TrimSpace(in.ProofReference)

	var (
		b   *domain.Booking
		txn *domain.WalletTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.loadOwned(ctx, tx, in.BookingID, in.UserID, false); err != nil {
			return err
		}
		if b.Status != domain.BookingPendingDeposit {
			return domain.NewInvalidStateError("booking", b.ID, string(b.Status), "pay")
		}
		option := b.PaymentOption
		if option == "" {
			option = domain.OptionUseMainOnly
		}
		due := b.TotalPrice - b.PaidTotal()

		var sp split
		if in.Method != domain.MethodBankTransfer && due > 0 {
			var (
				user          *domain.User
				cashAvailable int64
			)
			if sp, user, cashAvailable, err = walletSplit(tx, b.UserID, due, option); err != nil {
				return err
			}
			if in.Method == domain.MethodWallet && sp.total() < due {
				return &domain.InsufficientFundsError{
					UserID:         user.ID,
					CashAvailable:  cashAvailable,
					CashRequested:  due - sp.bonus,
					BonusAvailable: user.BonusBalance,
					BonusRequested: sp.bonus,
				}
			}
		}

		remainder := due - sp.total()
		if remainder > 0 && proof == "" {
			return domain.NewValidationError("proof_reference", "is required for bank transfer")
		}

		if sp.total() > 0 {
			txn, err = wallet.ApplyTx(tx, wallet.Entry{
				UserID:      b.UserID,
				Type:        domain.TxPayment,
				Amount:      sp.cash,
				BonusAmount: sp.bonus,
				Description: fmt.Sprintf("Payment for booking #%d", b.ID),
				Ref:         domain.BookingRef(b.ID),
			})
			if err != nil {
				return err
			}
		}

		b.PaidFromWallet += sp.cash
		b.PaidFromBonus += sp.bonus
		b.PaymentMethod = in.Method
		if remainder > 0 {
			b.ProofReference = proof
			b.PaymentStatus = domain.PaymentAwaitingProof
		} else {
			b.PaymentStatus = domain.PaymentPaid
		}
		b.Status = domain.BookingAwaitingApproval
		return s.bookings.WithTx(tx).Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	fields := log.Fields{
		"booking_id":       b.ID,
		"method":           b.PaymentMethod,
		"paid_from_wallet": b.PaidFromWallet,
		"paid_from_bonus":  b.PaidFromBonus,
	}
	if txn != nil {
		fields["txn_id"] = txn.ID
	}
	log.WithFields(fields).Info("booking paid")
	return b, nil
}

// Approve confirms the stay. A transfer remainder that staff verified is
// recorded as paid externally.
func (s *Service) Approve(ctx context.Context, id, staffID int64) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.bookings.WithTx(tx).GetForUpdate(ctx, id); err != nil {
			return err
		}
		if b.Status != domain.BookingAwaitingApproval {
			return domain.NewInvalidStateError("booking", b.ID, string(b.Status), "approve")
		}
		if b.PaymentStatus == domain.PaymentAwaitingProof {
			b.PaidExternal += b.TotalPrice - b.PaidTotal()
			b.PaymentStatus = domain.PaymentPaid
		}
		b.Status = domain.BookingConfirmed
		return s.bookings.WithTx(tx).Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"booking_id": b.ID, "staff_id": staffID, "paid_external": b.PaidExternal}).Info("booking confirmed")
	return b, nil
}

type SettleInput struct {
	BookingID      int64
	StaffID        int64
	Method         domain.PaymentMethod
	ProofReference string
}

// SettleOutstanding clears the balance left open at checkout and completes the booking.
func (s *Service) SettleOutstanding(ctx context.Context, in SettleInput) (*domain.Booking, error) {
	if in.Method != domain.MethodWallet && in.Method != domain.MethodBankTransfer {
		return nil, domain.NewValidationError("method", "must be wallet or bank_transfer")
	}
	proof := strings.TrimSpace(in.ProofReference)
	if in.Method == domain.MethodBankTransfer && proof == "" {
		return nil, domain.NewValidationError("proof_reference", "is required for bank transfer")
	}

	var b *domain.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.bookings.WithTx(tx).GetForUpdate(ctx, in.BookingID); err != nil {
			return err
		}
		if b.Status != domain.BookingConfirmed || b.OutstandingAmount <= 0 {
			return domain.NewInvalidStateError("booking", b.ID, string(b.Status), "settle outstanding")
		}

		amount := b.OutstandingAmount
		if in.Method == domain.MethodWallet {
			if _, err := wallet.ApplyTx(tx, wallet.Entry{
				UserID:      b.UserID,
				Type:        domain.TxPayment,
				Amount:      amount,
				Description: fmt.Sprintf("Checkout balance for booking #%d", b.ID),
				Ref:         domain.BookingRef(b.ID),
			}); err != nil {
				return err
			}
			b.PaidOnSettlement += amount
		} else {
			b.PaidExternal += amount
			b.ProofReference = proof
		}
		b.OutstandingAmount = 0
		b.PaymentStatus = domain.PaymentPaid
		b.Status = domain.BookingCompleted
		return s.bookings.WithTx(tx).Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"booking_id": b.ID, "staff_id": in.StaffID, "method": in.Method}).Info("outstanding balance settled")
	return b, nil
}
