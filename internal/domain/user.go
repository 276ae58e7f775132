package domain

import "time"

type UserRole string

const (
	RoleGuest UserRole = "guest"
	RoleStaff UserRole = "staff"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User carries the wallet balances. Balances are a cache of the ledger and
// are written only by the wallet ledger.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex"`
	Name         string    `json:"name" gorm:"size:255"`
	Phone        string    `json:"phone,omitempty" gorm:"size:32"`
	Role         UserRole  `json:"role" gorm:"size:16;not null"`
	CashBalance  int64     `json:"cash_balance" gorm:"not null;default:0"`
	BonusBalance int64     `json:"bonus_balance" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
