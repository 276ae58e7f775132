package domain

import "time"

type WithdrawalStatus string

const (
	WithdrawalPending             WithdrawalStatus = "pending"
	WithdrawalPendingConfirmation WithdrawalStatus = "pending_confirmation"
	WithdrawalApproved            WithdrawalStatus = "approved"
	WithdrawalRejected            WithdrawalStatus = "rejected"
	WithdrawalCompleted           WithdrawalStatus = "completed"
)

// HoldsFunds reports whether a request in this status reserves cash.
func (s WithdrawalStatus) HoldsFunds() bool {
	return s == WithdrawalPending || s == WithdrawalPendingConfirmation
}

// HeldWithdrawalStatuses lists the statuses that reserve cash.
var HeldWithdrawalStatuses = []WithdrawalStatus{WithdrawalPending, WithdrawalPendingConfirmation}

type BankInfo struct {
	BankName      string `json:"bank_name" gorm:"size:255;not null" validate:"required,max=255"`
	AccountNumber string `json:"account_number" gorm:"size:64;not null" validate:"required,max=64"`
	AccountName   string `json:"account_name" gorm:"size:255;not null" validate:"required,max=255"`
}

type WithdrawalRequest struct {
	ID     int64            `json:"id" gorm:"primaryKey"`
	UserID int64            `json:"user_id" gorm:"not null;index"`
	Amount int64            `json:"amount" gorm:"not null"`
	Bank   BankInfo         `json:"bank" gorm:"embedded"`
	Status WithdrawalStatus `json:"status" gorm:"size:32;not null;index"`

	AdminNote      string     `json:"admin_note,omitempty" gorm:"type:text"`
	AdminSignature string     `json:"admin_signature,omitempty" gorm:"type:text"`
	ProcessedBy    *int64     `json:"processed_by,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	IsAdminCreated bool       `json:"is_admin_created" gorm:"not null"`

	// Digest of the outstanding confirmation token; nil once consumed.
	TokenHash      *string    `json:"-" gorm:"size:64;uniqueIndex"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
	UserSignature  string     `json:"user_signature,omitempty" gorm:"type:text"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *WithdrawalRequest) IsConfirmed() bool {
	return w.ConfirmedAt != nil
}
