package models

import (
	"time"
)

// Account represents one entry in the chart of accounts. The code is a short
// human-assigned identifier ("1000", "4000", ...) that stays stable for the
// lifetime of the books; the type is fixed at creation and never changes.
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"column:account_code;uniqueIndex;not null" json:"account_code"`
	Name      string    `gorm:"column:account_name;not null" json:"account_name"`
	Type      string    `gorm:"column:account_type;not null;index" json:"account_type"`
	Active    bool      `gorm:"column:is_active;default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// Account type constants
const (
	AccountTypeAsset     = "asset"
	AccountTypeLiability = "liability"
	AccountTypeEquity    = "equity"
	AccountTypeRevenue   = "revenue"
	AccountTypeExpense   = "expense"
)

// ValidAccountType reports whether t is one of the five account types.
func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}
