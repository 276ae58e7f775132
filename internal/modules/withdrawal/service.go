package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelbooking/internal/database"
	"hotelbooking/internal/domain"
	"hotelbooking/internal/modules/wallet"
	"hotelbooking/internal/pkg/validator"
)

const maxTokenAttempts = 3

type Config struct {
	MinAmount int64
	TokenTTL  time.Duration
}

type Service struct {
	db       *gorm.DB
	cfg      Config
	now      func() time.Time
	newToken func() string
}

func NewService(db *gorm.DB, cfg Config) *Service {
	if cfg.MinAmount <= 0 {
		cfg.MinAmount = 1000
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Service{db: db, cfg: cfg, now: time.Now, newToken: newToken}
}

type CreateInput struct {
	UserID int64
	Amount int64
	Bank   domain.BankInfo
	// Set when staff files the request on the user's behalf.
	CreatedBy int64
}

// Create files a pending request. The amount is held against the user's
// available cash from this point until approval or rejection.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.WithdrawalRequest, error) {
	if in.Amount < s.cfg.MinAmount {
		return nil, domain.NewValidationError("amount", fmt.Sprintf("must be at least %d", s.cfg.MinAmount))
	}
	in.Bank.BankName = strings.TrimSpace(in.Bank.BankName)
	in.Bank.AccountNumber = strings.TrimSpace(in.Bank.AccountNumber)
	in.Bank.AccountName = strings.TrimSpace(in.Bank.AccountName)
	if err := validator.Struct(in.Bank); err != nil {
		return nil, err
	}

	req := &domain.WithdrawalRequest{
		UserID:         in.UserID,
		Amount:         in.Amount,
		Bank:           in.Bank,
		Status:         domain.WithdrawalPending,
		IsAdminCreated: in.CreatedBy != 0,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := wallet.LockUser(tx, in.UserID)
		if err != nil {
			return err
		}

		held, err := wallet.HeldAmount(tx, user.ID)
		if err != nil {
			return err
		}
		if available := user.CashBalance - held; available < in.Amount {
			return &domain.InsufficientFundsError{
				UserID:         user.ID,
				CashAvailable:  available,
				CashRequested:  in.Amount,
				BonusAvailable: user.BonusBalance,
			}
		}
		return tx.Create(req).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"withdrawal_id": req.ID,
		"user_id":       req.UserID,
		"amount":        req.Amount,
		"admin_created": req.IsAdminCreated,
	}).Info("withdrawal requested")
	return req, nil
}

// RequestConfirmation issues a single-use token and moves the request to
// pending_confirmation. An unconsumed token may be reissued, which revokes the old one.
func (s *Service) RequestConfirmation(ctx context.Context, id int64) (*domain.WithdrawalRequest, string, error) {
	var (
		req   domain.WithdrawalRequest
		token string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRequest(tx, id, &req); err != nil {
			return err
		}
		reissue := req.Status == domain.WithdrawalPendingConfirmation && !req.IsConfirmed()
		if req.Status != domain.WithdrawalPending && !reissue {
			return domain.NewInvalidStateError("withdrawal", req.ID, string(req.Status), "request confirmation")
		}

		var err error
		if token, err = s.uniqueToken(tx); err != nil {
			return err
		}
		hash := hashToken(token)
		expires := s.now().Add(s.cfg.TokenTTL)
		req.TokenHash = &hash
		req.TokenExpiresAt = &expires
		req.Status = domain.WithdrawalPendingConfirmation
		if err := tx.Save(&req).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("confirmation token collision: %w", err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	log.WithFields(log.Fields{"withdrawal_id": req.ID, "expires_at": req.TokenExpiresAt}).Info("withdrawal confirmation requested")
	return &req, token, nil
}

// uniqueToken draws tokens until one whose digest is unused.
func (s *Service) uniqueToken(tx *gorm.DB) (string, error) {
	for i := 0; i < maxTokenAttempts; i++ {
		token := s.newToken()
		var n int64
		if err := tx.Model(&domain.WithdrawalRequest{}).Where("token_hash = ?", hashToken(token)).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return token, nil
		}
	}
	return "", errors.New("could not generate a unique confirmation token")
}

// Confirm consumes the token on behalf of the account holder. Status stays
// pending_confirmation; confirmation only unlocks staff approval.
func (s *Service) Confirm(ctx context.Context, userID int64, token, userSignature string) (*domain.WithdrawalRequest, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}
	userSignature = strings.TrimSpace(userSignature)
	if userSignature == "" {
		return nil, domain.NewValidationError("signature", "is required")
	}

	var req domain.WithdrawalRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, "token_hash = ?", hashToken(token)).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrTokenInvalid
		}
		if err != nil {
			return err
		}
		if req.UserID != userID || req.Status != domain.WithdrawalPendingConfirmation || req.IsConfirmed() {
			return domain.ErrTokenInvalid
		}
		now := s.now()
		if req.TokenExpiresAt == nil || now.After(*req.TokenExpiresAt) {
			return domain.ErrTokenExpired
		}

		req.ConfirmedAt = &now
		req.UserSignature = userSignature
		req.TokenHash = nil
		req.TokenExpiresAt = nil
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"withdrawal_id": req.ID, "user_id": userID}).Info("withdrawal confirmed by account holder")
	return &req, nil
}

// Approve debits the ledger and moves the confirmed request to approved.
func (s *Service) Approve(ctx context.Context, id, staffID int64, adminSignature string) (*domain.WithdrawalRequest, *domain.WalletTransaction, error) {
	adminSignature = strings.TrimSpace(adminSignature)
	if adminSignature == "" {
		return nil, nil, domain.NewValidationError("admin_signature", "is required")
	}

	var (
		req domain.WithdrawalRequest
		txn *domain.WalletTransaction
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRequest(tx, id, &req); err != nil {
			return err
		}
		if req.Status != domain.WithdrawalPendingConfirmation || !req.IsConfirmed() {
			return domain.NewInvalidStateError("withdrawal", req.ID, string(req.Status), "approve")
		}

		now := s.now()
		req.Status = domain.WithdrawalApproved
		req.AdminSignature = adminSignature
		req.ProcessedBy = &staffID
		req.ProcessedAt = &now
		// The status change releases the hold before the debit checks available cash.
		if err := tx.Save(&req).Error; err != nil {
			return err
		}

		var err error
		txn, err = wallet.ApplyTx(tx, wallet.Entry{
			UserID:      req.UserID,
			Type:        domain.TxWithdrawal,
			Amount:      req.Amount,
			Description: fmt.Sprintf("Withdrawal #%d to %s", req.ID, req.Bank.BankName),
			Ref:         domain.WithdrawalRef(req.ID),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{"withdrawal_id": req.ID, "staff_id": staffID, "txn_id": txn.ID}).Info("withdrawal approved")
	return &req, txn, nil
}

// Reject closes an open request. No funds ever moved, so the ledger is untouched.
func (s *Service) Reject(ctx context.Context, id, staffID int64, note string) (*domain.WithdrawalRequest, error) {
	var req domain.WithdrawalRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRequest(tx, id, &req); err != nil {
			return err
		}
		if !req.Status.HoldsFunds() {
			return domain.NewInvalidStateError("withdrawal", req.ID, string(req.Status), "reject")
		}
		now := s.now()
		req.Status = domain.WithdrawalRejected
		req.AdminNote = strings.TrimSpace(note)
		req.ProcessedBy = &staffID
		req.ProcessedAt = &now
		req.TokenHash = nil
		req.TokenExpiresAt = nil
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"withdrawal_id": req.ID, "staff_id": staffID}).Info("withdrawal rejected")
	return &req, nil
}

// Complete records that the bank transfer went out.
func (s *Service) Complete(ctx context.Context, id, staffID int64) (*domain.WithdrawalRequest, error) {
	var req domain.WithdrawalRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRequest(tx, id, &req); err != nil {
			return err
		}
		if req.Status != domain.WithdrawalApproved {
			return domain.NewInvalidStateError("withdrawal", req.ID, string(req.Status), "complete")
		}
		req.Status = domain.WithdrawalCompleted
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"withdrawal_id": req.ID, "staff_id": staffID}).Info("withdrawal completed")
	return &req, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.WithdrawalRequest, error) {
	var req domain.WithdrawalRequest
	err := s.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("withdrawal %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]domain.WithdrawalRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.WithdrawalRequest
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

func lockRequest(tx *gorm.DB, id int64, req *domain.WithdrawalRequest) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("withdrawal %d: %w", id, domain.ErrNotFound)
	}
	return err
}
