package models

import (
	"math"
	"time"
)

// Document is a sales-side business document: quotation, order confirmation,
// delivery note or invoice. Only invoices have an accounting effect, and only
// once issued.
type Document struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	DocumentNumber string     `gorm:"uniqueIndex;not null" json:"document_number"`
	DocumentType   string     `gorm:"not null;index" json:"document_type"`
	CustomerID     uint       `gorm:"not null;index" json:"customer_id"`
	IssueDate      time.Time  `gorm:"type:date;not null" json:"issue_date"`
	DueDate        *time.Time `gorm:"type:date" json:"due_date"`
	PaymentDate    *time.Time `gorm:"type:date" json:"payment_date"`
	Status         string     `gorm:"default:draft;not null;index" json:"status"`
	TaxType        string     `gorm:"default:exclusive" json:"tax_type"`
	TaxRate        float64    `gorm:"default:10" json:"tax_rate"`
	Subtotal       float64    `gorm:"default:0" json:"subtotal"`
	TaxAmount      float64    `gorm:"default:0" json:"tax_amount"`
	TotalAmount    float64    `gorm:"default:0" json:"total_amount"`
	Notes          *string    `json:"notes"`
	CreatedBy      uint       `gorm:"index" json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Associations
	Customer Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []DocumentItem `gorm:"foreignKey:DocumentID" json:"items,omitempty"`
}

// TableName specifies the table name for Document
func (Document) TableName() string {
	return "documents"
}

// Document type constants
const (
	DocumentTypeQuotation    = "quotation"
	DocumentTypeOrder        = "order"
	DocumentTypeDeliveryNote = "delivery_note"
	DocumentTypeInvoice      = "invoice"
)

// Document status constants
const (
	DocumentStatusDraft     = "draft"
	DocumentStatusIssued    = "issued"
	DocumentStatusPaid      = "paid"
	DocumentStatusCancelled = "cancelled"
)

// Tax type constants
const (
	TaxTypeExclusive = "exclusive"
	TaxTypeInclusive = "inclusive"
)

// MayIssue returns true if the document can transition to issued
func (d *Document) MayIssue() bool {
	return d.Status == DocumentStatusDraft
}

// MayMarkPaid returns true if the document can be marked paid
func (d *Document) MayMarkPaid() bool {
	return d.DocumentType == DocumentTypeInvoice && d.Status == DocumentStatusIssued
}

// MayCancel returns true if the document can be cancelled
func (d *Document) MayCancel() bool {
	return d.Status == DocumentStatusDraft || d.Status == DocumentStatusIssued
}

// IsInvoice returns true for invoice documents
func (d *Document) IsInvoice() bool {
	return d.DocumentType == DocumentTypeInvoice
}

// PostingEligible reports whether the document should have journal entries:
// an invoice that has been issued (or already paid).
func (d *Document) PostingEligible() bool {
	return d.IsInvoice() && (d.Status == DocumentStatusIssued || d.Status == DocumentStatusPaid)
}

// RecalculateTotals recomputes subtotal, tax and total from the item lines.
// Tax is floored to the currency unit, matching receipt arithmetic.
func (d *Document) RecalculateTotals() {
	subtotal := 0.0
	for i := range d.Items {
		d.Items[i].Amount = d.Items[i].UnitPrice * d.Items[i].Quantity
		subtotal += d.Items[i].Amount
	}
	d.Subtotal = subtotal
	if d.TaxType == TaxTypeInclusive {
		// Tax already contained in the line prices
		d.TaxAmount = math.Floor(subtotal * d.TaxRate / (100 + d.TaxRate))
		d.TotalAmount = subtotal
		return
	}
	d.TaxAmount = math.Floor(subtotal * d.TaxRate / 100)
	d.TotalAmount = subtotal + d.TaxAmount
}

// DocumentItem is one line of a document.
type DocumentItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	DocumentID  uint    `gorm:"not null;index" json:"document_id"`
	ItemName    string  `gorm:"not null" json:"item_name"`
	Description *string `json:"description"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	TaxRate     float64 `gorm:"default:10" json:"tax_rate"`
	Amount      float64 `gorm:"not null" json:"amount"`
}

// TableName specifies the table name for DocumentItem
func (DocumentItem) TableName() string {
	return "document_items"
}

// DocumentResponse is the JSON response format for documents
type DocumentResponse struct {
	ID             uint           `json:"id"`
	DocumentNumber string         `json:"document_number"`
	DocumentType   string         `json:"document_type"`
	CustomerID     uint           `json:"customer_id"`
	CustomerName   string         `json:"customer_name,omitempty"`
	IssueDate      time.Time      `json:"issue_date"`
	DueDate        *time.Time     `json:"due_date"`
	PaymentDate    *time.Time     `json:"payment_date"`
	Status         string         `json:"status"`
	TaxType        string         `json:"tax_type"`
	TaxRate        float64        `json:"tax_rate"`
	Subtotal       float64        `json:"subtotal"`
	TaxAmount      float64        `json:"tax_amount"`
	TotalAmount    float64        `json:"total_amount"`
	Notes          *string        `json:"notes"`
	Items          []DocumentItem `json:"items,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ToResponse converts Document to DocumentResponse
func (d *Document) ToResponse() DocumentResponse {
	resp := DocumentResponse{
		ID:             d.ID,
		DocumentNumber: d.DocumentNumber,
		DocumentType:   d.DocumentType,
		CustomerID:     d.CustomerID,
		IssueDate:      d.IssueDate,
		DueDate:        d.DueDate,
		PaymentDate:    d.PaymentDate,
		Status:         d.Status,
		TaxType:        d.TaxType,
		TaxRate:        d.TaxRate,
		Subtotal:       d.Subtotal,
		TaxAmount:      d.TaxAmount,
		TotalAmount:    d.TotalAmount,
		Notes:          d.Notes,
		Items:          d.Items,
		CreatedAt:      d.CreatedAt,
	}
	if d.Customer.ID != 0 {
		resp.CustomerName = d.Customer.Name
	}
	return resp
}
