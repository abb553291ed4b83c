package models

import (
	"time"
)

// Customer is a party the organization sells to. Customers cannot be deleted
// while documents still reference them.
type Customer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CustomerType string    `gorm:"not null" json:"customer_type"`
	Name         string    `gorm:"not null;index" json:"name"`
	PostalCode   *string   `json:"postal_code"`
	Address      *string   `json:"address"`
	Phone        *string   `json:"phone"`
	Email        *string   `json:"email"`
	PaymentTerms int       `gorm:"default:30" json:"payment_terms"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Associations
	Contacts []CustomerContact `gorm:"foreignKey:CustomerID" json:"contacts,omitempty"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// Customer type constants
const (
	CustomerTypeCompany    = "company"
	CustomerTypeIndividual = "individual"
)

// CustomerContact is a named contact person at a customer.
type CustomerContact struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Name       string    `gorm:"not null" json:"name"`
	Department *string   `json:"department"`
	Position   *string   `json:"position"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	IsPrimary  bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for CustomerContact
func (CustomerContact) TableName() string {
	return "customer_contacts"
}
