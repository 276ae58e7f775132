package domain

import (
	"fmt"
	"time"
)

type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxPayment    TransactionType = "payment"
	TxRefund     TransactionType = "refund"
	TxBonus      TransactionType = "bonus"
)

// IsDebit reports whether the type removes funds from the wallet.
func (t TransactionType) IsDebit() bool {
	return t == TxWithdrawal || t == TxPayment
}

func (t TransactionType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxPayment, TxRefund, TxBonus:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusApproved  TransactionStatus = "approved"
	TxStatusRejected  TransactionStatus = "rejected"
	TxStatusCompleted TransactionStatus = "completed"
)

type RefKind string

const (
	RefBooking           RefKind = "booking"
	RefDepositRequest    RefKind = "deposit_request"
	RefWithdrawalRequest RefKind = "withdrawal_request"
)

// TransactionRef points a ledger entry at the record that caused it.
// The zero value means no reference.
type TransactionRef struct {
	Kind RefKind `json:"kind"`
	ID   int64   `json:"id"`
}

func BookingRef(id int64) TransactionRef    { return TransactionRef{Kind: RefBooking, ID: id} }
func DepositRef(id int64) TransactionRef    { return TransactionRef{Kind: RefDepositRequest, ID: id} }
func WithdrawalRef(id int64) TransactionRef { return TransactionRef{Kind: RefWithdrawalRequest, ID: id} }

func (r TransactionRef) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}

func (r TransactionRef) Validate() error {
	if r.IsZero() {
		return nil
	}
	switch r.Kind {
	case RefBooking, RefDepositRequest, RefWithdrawalRequest:
	default:
		return NewValidationError("reference", fmt.Sprintf("unknown kind %q", r.Kind))
	}
	if r.ID <= 0 {
		return NewValidationError("reference", "id must be positive")
	}
	return nil
}

// WalletTransaction is an append-only ledger row. ID order is ledger order.
type WalletTransaction struct {
	ID                 int64             `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID             int64             `json:"user_id" gorm:"not null;index"`
	Type               TransactionType   `json:"type" gorm:"size:16;not null;index"`
	Amount             int64             `json:"amount" gorm:"not null;check:amount >= 0"`
	BonusAmount        int64             `json:"bonus_amount" gorm:"not null;check:bonus_amount >= 0"`
	BalanceBefore      int64             `json:"balance_before" gorm:"not null"`
	BalanceAfter       int64             `json:"balance_after" gorm:"not null"`
	BonusBalanceBefore int64             `json:"bonus_balance_before" gorm:"not null"`
	BonusBalanceAfter  int64             `json:"bonus_balance_after" gorm:"not null"`
	Description        string            `json:"description,omitempty" gorm:"size:512"`
	RefKind            RefKind           `json:"ref_kind,omitempty" gorm:"size:32;index:idx_wallet_tx_ref"`
	RefID              int64             `json:"ref_id,omitempty" gorm:"index:idx_wallet_tx_ref"`
	Status             TransactionStatus `json:"status" gorm:"size:16;not null"`
	CreatedAt          time.Time         `json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

func (t WalletTransaction) Ref() TransactionRef {
	return TransactionRef{Kind: t.RefKind, ID: t.RefID}
}

// CashDelta is the signed change to the cash balance.
func (t WalletTransaction) CashDelta() int64 {
	if t.Type.IsDebit() {
		return -t.Amount
	}
	return t.Amount
}

func (t WalletTransaction) BonusDelta() int64 {
	if t.Type.IsDebit() {
		return -t.BonusAmount
	}
	return t.BonusAmount
}

type DepositStatus string

const (
	DepositPending  DepositStatus = "pending"
	DepositApproved DepositStatus = "approved"
	DepositRejected DepositStatus = "rejected"
)

// DepositRequest is a guest top-up awaiting staff verification of the transfer.
type DepositRequest struct {
	ID             int64         `json:"id" gorm:"primaryKey"`
	UserID         int64         `json:"user_id" gorm:"not null;index"`
	Amount         int64         `json:"amount" gorm:"not null;check:amount > 0"`
	Method         string        `json:"method" gorm:"size:32;not null"`
	ProofReference string        `json:"proof_reference,omitempty" gorm:"size:512"`
	Status         DepositStatus `json:"status" gorm:"size:16;not null;index"`
	AdminNote      string        `json:"admin_note,omitempty" gorm:"type:text"`
	ProcessedBy    *int64        `json:"processed_by,omitempty"`
	ProcessedAt    *time.Time    `json:"processed_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
