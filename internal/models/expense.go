package models

import (
	"time"
)

// Expense is a standalone spend record, typically captured from a paper
// receipt. Only the stored receipt image path lives here; text extraction is
// handled outside this service.
type Expense struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Date         time.Time `gorm:"type:date;not null;index" json:"date"`
	Vendor       string    `gorm:"not null" json:"vendor"`
	Amount       float64   `gorm:"not null" json:"amount"`
	Category     *string   `gorm:"index" json:"category"`
	Description  *string   `json:"description"`
	ReceiptImage *string   `json:"receipt_image"`
	CreatedBy    uint      `gorm:"index" json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for Expense
func (Expense) TableName() string {
	return "expenses"
}
