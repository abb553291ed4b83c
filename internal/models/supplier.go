package models

import (
	"time"
)

// Supplier is a party the organization buys from. Carries remittance bank
// details for payment runs. Suppliers cannot be deleted while purchase orders
// still reference them.
type Supplier struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SupplierType  string    `gorm:"not null" json:"supplier_type"`
	Name          string    `gorm:"not null;index" json:"name"`
	PostalCode    *string   `json:"postal_code"`
	Address       *string   `json:"address"`
	Phone         *string   `json:"phone"`
	Email         *string   `json:"email"`
	PaymentTerms  int       `gorm:"default:30" json:"payment_terms"`
	BankName      *string   `json:"bank_name"`
	BranchName    *string   `json:"branch_name"`
	AccountType   *string   `json:"account_type"`
	AccountNumber *string   `json:"account_number"`
	AccountHolder *string   `json:"account_holder"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Associations
	Contacts []SupplierContact `gorm:"foreignKey:SupplierID" json:"contacts,omitempty"`
}

// TableName specifies the table name for Supplier
func (Supplier) TableName() string {
	return "suppliers"
}

// SupplierContact is a named contact person at a supplier.
type SupplierContact struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SupplierID uint      `gorm:"not null;index" json:"supplier_id"`
	Name       string    `gorm:"not null" json:"name"`
	Department *string   `json:"department"`
	Position   *string   `json:"position"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	IsPrimary  bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for SupplierContact
func (SupplierContact) TableName() string {
	return "supplier_contacts"
}
