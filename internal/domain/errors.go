package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrRoomUnavailable     = errors.New("room unavailable")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidRule         = errors.New("invalid special price rule")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrTokenInvalid        = errors.New("confirmation token invalid")
	ErrTokenExpired        = errors.New("confirmation token expired")
	ErrLedgerInconsistency = errors.New("ledger inconsistency")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientFundsError carries the balances that were checked.
type InsufficientFundsError struct {
	UserID         int64
	CashAvailable  int64
	CashRequested  int64
	BonusAvailable int64
	BonusRequested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for user %d: cash %d/%d, bonus %d/%d",
		e.UserID, e.CashAvailable, e.CashRequested, e.BonusAvailable, e.BonusRequested)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// InvalidStateError reports an action attempted from a state that does not permit it.
type InvalidStateError struct {
	Entity string
	ID     int64
	From   string
	Action string
}

func NewInvalidStateError(entity string, id int64, from, action string) *InvalidStateError {
	return &InvalidStateError{Entity: entity, ID: id, From: from, Action: action}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %d in state %q", e.Action, e.Entity, e.ID, e.From)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

type InvalidRuleError struct {
	RuleID int64
	Reason string
}

func (e *InvalidRuleError) Error() string {
	if e.RuleID == 0 {
		return fmt.Sprintf("invalid special price rule: %s", e.Reason)
	}
	return fmt.Sprintf("invalid special price rule %d: %s", e.RuleID, e.Reason)
}

func (e *InvalidRuleError) Unwrap() error { return ErrInvalidRule }

// LedgerInconsistencyError is fatal: the mutating operation must not complete.
type LedgerInconsistencyError struct {
	UserID int64
	Reason string
}

func (e *LedgerInconsistencyError) Error() string {
	return fmt.Sprintf("ledger inconsistency for user %d: %s", e.UserID, e.Reason)
}

func (e *LedgerInconsistencyError) Unwrap() error { return ErrLedgerInconsistency }

// IsClientError reports whether err was caused by caller input or state rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrRoomUnavailable) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInvalidRule) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenExpired)
}
