package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelbooking/internal/domain"
)

// Service handles deposit requests and staff bonus grants on top of the ledger.
type Service struct {
	db     *gorm.DB
	ledger *Ledger
	now    func() time.Time
}

func NewService(db *gorm.DB, ledger *Ledger) *Service {
	return &Service{db: db, ledger: ledger, now: time.Now}
}

type CreateDepositInput struct {
	UserID         int64
	Amount         int64
	Method         string
	ProofReference string
}

func (s *Service) CreateDeposit(ctx context.Context, in CreateDepositInput) (*domain.DepositRequest, error) {
	if in.Amount <= 0 {
		return nil, domain.NewValidationError("amount", "must be positive")
	}
	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = string(domain.MethodBankTransfer)
	}
	if strings.TrimSpace(in.ProofReference) == "" {
		return nil, domain.NewValidationError("proof_reference", "is required")
	}

	dep := &domain.DepositRequest{
		UserID:         in.UserID,
		Amount:         in.Amount,
		Method:         method,
		ProofReference: strings.TrimSpace(in.ProofReference),
		Status:         domain.DepositPending,
	}
	if err := s.db.WithContext(ctx).Create(dep).Error; err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"deposit_id": dep.ID, "user_id": dep.UserID, "amount": dep.Amount}).Info("deposit requested")
	return dep, nil
}

// ApproveDeposit credits the ledger and closes the request atomically.
func (s *Service) ApproveDeposit(ctx context.Context, depositID, staffID int64) (*domain.DepositRequest, *domain.WalletTransaction, error) {
	var (
		dep domain.DepositRequest
		txn *domain.WalletTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockDeposit(tx, depositID, &dep); err != nil {
			return err
		}
		if dep.Status != domain.DepositPending {
			return domain.NewInvalidStateError("deposit", dep.ID, string(dep.Status), "approve")
		}

		now := s.now()
		dep.Status = domain.DepositApproved
		dep.ProcessedBy = &staffID
		dep.ProcessedAt = &now
		if err := tx.Save(&dep).Error; err != nil {
			return err
		}

		var err error
		txn, err = ApplyTx(tx, Entry{
			UserID:      dep.UserID,
			Type:        domain.TxDeposit,
			Amount:      dep.Amount,
			Description: fmt.Sprintf("Deposit #%d", dep.ID),
			Ref:         domain.DepositRef(dep.ID),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	log.WithFields(log.Fields{"deposit_id": dep.ID, "staff_id": staffID, "txn_id": txn.ID}).Info("deposit approved")
	return &dep, txn, nil
}

func (s *Service) RejectDeposit(ctx context.Context, depositID, staffID int64, note string) (*domain.DepositRequest, error) {
	var dep domain.DepositRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockDeposit(tx, depositID, &dep); err != nil {
			return err
		}
		if dep.Status != domain.DepositPending {
			return domain.NewInvalidStateError("deposit", dep.ID, string(dep.Status), "reject")
		}
		now := s.now()
		dep.Status = domain.DepositRejected
		dep.AdminNote = strings.TrimSpace(note)
		dep.ProcessedBy = &staffID
		dep.ProcessedAt = &now
		return tx.Save(&dep).Error
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"deposit_id": dep.ID, "staff_id": staffID}).Info("deposit rejected")
	return &dep, nil
}

func (s *Service) GetDeposit(ctx context.Context, depositID int64) (*domain.DepositRequest, error) {
	var dep domain.DepositRequest
	if err := s.db.WithContext(ctx).First(&dep, "id = ?", depositID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("deposit %d: %w", depositID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &dep, nil
}

// GrantBonus credits the bonus balance on behalf of staff.
func (s *Service) GrantBonus(ctx context.Context, userID, staffID, amount int64, description string) (*domain.WalletTransaction, error) {
	if amount <= 0 {
		return nil, domain.NewValidationError("amount", "must be positive")
	}
	if strings.TrimSpace(description) == "" {
		description = "Bonus"
	}
	txn, err := s.ledger.Apply(ctx, Entry{
		UserID:      userID,
		Type:        domain.TxBonus,
		BonusAmount: amount,
		Description: description,
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": userID, "staff_id": staffID, "amount": amount}).Info("bonus granted")
	return txn, nil
}

func lockDeposit(tx *gorm.DB, id int64, dep *domain.DepositRequest) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(dep, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("deposit %d: %w", id, domain.ErrNotFound)
	}
	return err
}
