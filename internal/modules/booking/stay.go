package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/modules/wallet"
)

func (s *Service) CheckIn(ctx context.Context, id, staffID int64) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.bookings.WithTx(tx).GetForUpdate(ctx, id); err != nil {
			return err
		}
		if b.Status != domain.BookingConfirmed || b.ActualCheckIn != nil {
			return domain.NewInvalidStateError("booking", b.ID, string(b.Status), "check in")
		}
		now := s.now()
		b.ActualCheckIn = &now
		return s.bookings.WithTx(tx).Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"booking_id": b.ID, "staff_id": staffID}).Info("guest checked in")
	return b, nil
}

// AddService attaches an extra to a live booking. TotalPrice is not touched;
// the extra is charged through the final price at checkout.
func (s *Service) AddService(ctx context.Context, id, actorID int64, isStaff bool, item ServiceItem) (*domain.Booking, error) {
	current, err := s.Get(ctx, id, actorID, isStaff)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshotServices(ctx, current.HotelID, []ServiceItem{item}, true)
	if err != nil {
		return nil, err
	}

	var b *domain.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.loadOwned(ctx, tx, id, actorID, isStaff); err != nil {
			return err
		}
		if b.Status.IsTerminal() || b.ActualCheckOut != nil {
			return domain.NewInvalidStateError("booking", b.ID, string(b.Status), "add service")
		}
		svc := snap[0]
		svc.BookingID = b.ID
		if err := s.bookings.WithTx(tx).AddService(ctx, &svc); err != nil {
			return err
		}
		b.Services = append(b.Services, svc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"booking_id": b.ID, "service_id": item.ServiceID, "quantity": item.Quantity}).Info("service added to booking")
	return b, nil
}

// stayNights is the priced interval for the actual stay, at least one night.
func stayNights(actualIn, actualOut time.Time) (time.Time, time.Time) {
	in, out := domain.DateOf(actualIn), domain.DateOf(actualOut)
	if !out.After(in) {
		out = in.AddDate(0, 0, 1)
	}
	return in, out
}

// CheckOut prices the actual stay and settles the difference against what was
// paid. A shortfall the wallet cannot cover stays open as OutstandingAmount and
// the booking remains confirmed until SettleOutstanding.
func (s *Service) CheckOut(ctx context.Context, id, staffID int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.BookingConfirmed || current.ActualCheckIn == nil || current.ActualCheckOut != nil {
		return nil, domain.NewInvalidStateError("booking", current.ID, string(current.Status), "check out")
	}
	now := s.now()
	in, out := stayNights(*current.ActualCheckIn, now)
	quote, err := s.quoter.QuoteStay(ctx, current.RoomID, in, out)
	if err != nil {
		return nil, err
	}

	var (
		b     *domain.Booking
		delta int64
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.bookings.WithTx(tx).GetForUpdate(ctx, id); err != nil {
			return err
		}
		if b.Status != domain.BookingConfirmed || b.ActualCheckIn == nil || b.ActualCheckOut != nil {
			return domain.NewInvalidStateError("booking", b.ID, string(b.Status), "check out")
		}

		final := quote.Total
		for _, svc := range b.Services {
			final += svc.Total()
		}
		b.FinalPrice = &final
		b.ActualCheckOut = &now
		delta = final - b.PaidTotal()

		switch {
		case delta < 0:
			if err := s.refund(tx, b, -delta, "Checkout refund"); err != nil {
				return err
			}
			b.PaymentStatus = domain.PaymentPaid
			b.Status = domain.BookingCompleted
		case delta > 0:
			sp, _, _, err := walletSplit(tx, b.UserID, delta, domain.OptionUseMainOnly)
			if err != nil {
				return err
			}
			if sp.cash < delta {
				b.OutstandingAmount = delta
				b.PaymentStatus = domain.PaymentOutstanding
				break
			}
			if _, err := wallet.ApplyTx(tx, wallet.Entry{
				UserID:      b.UserID,
				Type:        domain.TxPayment,
				Amount:      delta,
				Description: fmt.Sprintf("Checkout charge for booking #%d", b.ID),
				Ref:         domain.BookingRef(b.ID),
			}); err != nil {
				return err
			}
			b.PaidOnSettlement += delta
			b.PaymentStatus = domain.PaymentPaid
			b.Status = domain.BookingCompleted
		default:
			b.PaymentStatus = domain.PaymentPaid
			b.Status = domain.BookingCompleted
		}
		return s.bookings.WithTx(tx).Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"booking_id":  b.ID,
		"staff_id":    staffID,
		"final_price": *b.FinalPrice,
		"delta":       delta,
		"status":      b.Status,
	}).Info("guest checked out")
	return b, nil
}

// refund credits amount back, cash first up to what was paid in cash or by
// transfer, the rest to bonus.
func (s *Service) refund(tx *gorm.DB, b *domain.Booking, amount int64, reason string) error {
	cashPaid := b.PaidFromWallet + b.PaidExternal + b.PaidOnSettlement
	cash := min(amount, cashPaid)
	bonus := amount - cash
	if bonus > b.PaidFromBonus {
		return &domain.LedgerInconsistencyError{UserID: b.UserID, Reason: fmt.Sprintf("refund %d exceeds paid amount on booking %d", amount, b.ID)}
	}
	if _, err := wallet.ApplyTx(tx, wallet.Entry{
		UserID:      b.UserID,
		Type:        domain.TxRefund,
		Amount:      cash,
		BonusAmount: bonus,
		Description: fmt.Sprintf("%s for booking #%d", reason, b.ID),
		Ref:         domain.BookingRef(b.ID),
	}); err != nil {
		return err
	}
	b.RefundedAmount += amount
	return nil
}

// Cancel releases the unit and returns wallet and bonus payments in one refund.
// Transfers made outside the wallet are not refunded here.
func (s *Service) Cancel(ctx context.Context, id, actorID int64, isStaff bool, reason string) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = s.loadOwned(ctx, tx, id, actorID, isStaff); err != nil {
			return err
		}
		if b.Status.IsTerminal() || b.ActualCheckIn != nil {
			return domain.NewInvalidStateError("booking", b.ID, string(b.Status), "cancel")
		}

		if cash, bonus := b.PaidFromWallet, b.PaidFromBonus; cash+bonus > 0 {
			if _, err := wallet.ApplyTx(tx, wallet.Entry{
				UserID:      b.UserID,
				Type:        domain.TxRefund,
				Amount:      cash,
				BonusAmount: bonus,
				Description: fmt.Sprintf("Cancellation refund for booking #%d", b.ID),
				Ref:         domain.BookingRef(b.ID),
			}); err != nil {
				return err
			}
			b.RefundedAmount += cash + bonus
			b.PaymentStatus = domain.PaymentRefunded
		}

		now := s.now()
		b.Status = domain.BookingCancelled
		b.CancelledAt = &now
		b.CancellationReason = strings.TrimSpace(reason)
		return s.bookings.WithTx(tx).Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"booking_id": b.ID, "actor_id": actorID, "refunded": b.RefundedAmount}).Info("booking cancelled")
	return b, nil
}
