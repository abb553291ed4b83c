package models

import (
	"math"
	"time"
)

// PurchaseOrder is an order placed with a supplier. It gains an accounting
// effect only once delivered.
type PurchaseOrder struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	OrderNumber          string     `gorm:"uniqueIndex;not null" json:"order_number"`
	SupplierID           uint       `gorm:"not null;index" json:"supplier_id"`
	OrderDate            time.Time  `gorm:"type:date;not null" json:"order_date"`
	ExpectedDeliveryDate *time.Time `gorm:"type:date" json:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time `gorm:"type:date" json:"actual_delivery_date"`
	Status               string     `gorm:"default:draft;not null;index" json:"status"`
	TaxRate              float64    `gorm:"default:10" json:"tax_rate"`
	Subtotal             float64    `gorm:"default:0" json:"subtotal"`
	TaxAmount            float64    `gorm:"default:0" json:"tax_amount"`
	TotalAmount          float64    `gorm:"default:0" json:"total_amount"`
	Notes                *string    `json:"notes"`
	CreatedBy            uint       `gorm:"index" json:"created_by"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// Associations
	Supplier Supplier            `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Items    []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items,omitempty"`
}

// TableName specifies the table name for PurchaseOrder
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// Purchase order status constants
const (
	PurchaseOrderStatusDraft     = "draft"
	PurchaseOrderStatusOrdered   = "ordered"
	PurchaseOrderStatusDelivered = "delivered"
	PurchaseOrderStatusCancelled = "cancelled"
)

// MayOrder returns true if the order can transition to ordered
func (o *PurchaseOrder) MayOrder() bool {
	return o.Status == PurchaseOrderStatusDraft
}

// MayDeliver returns true if the order can be marked delivered
func (o *PurchaseOrder) MayDeliver() bool {
	return o.Status == PurchaseOrderStatusOrdered
}

// MayCancel returns true if the order can be cancelled
func (o *PurchaseOrder) MayCancel() bool {
	return o.Status == PurchaseOrderStatusDraft || o.Status == PurchaseOrderStatusOrdered
}

// PostingEligible reports whether the order should have a journal entry.
func (o *PurchaseOrder) PostingEligible() bool {
	return o.Status == PurchaseOrderStatusDelivered
}

// EntryDate picks the accounting date for the purchase entry: the actual
// delivery date, falling back to the expected delivery date, then the order
// date.
func (o *PurchaseOrder) EntryDate() time.Time {
	if o.ActualDeliveryDate != nil {
		return *o.ActualDeliveryDate
	}
	if o.ExpectedDeliveryDate != nil {
		return *o.ExpectedDeliveryDate
	}
	return o.OrderDate
}

// RecalculateTotals recomputes subtotal, tax and total from the item lines.
func (o *PurchaseOrder) RecalculateTotals() {
	subtotal := 0.0
	for i := range o.Items {
		o.Items[i].Amount = o.Items[i].UnitPrice * o.Items[i].Quantity
		subtotal += o.Items[i].Amount
	}
	o.Subtotal = subtotal
	o.TaxAmount = math.Floor(subtotal * o.TaxRate / 100)
	o.TotalAmount = subtotal + o.TaxAmount
}

// PurchaseOrderItem is one line of a purchase order. InventoryItemID links the
// line to a stock item so delivery can receive it into inventory.
type PurchaseOrderItem struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	PurchaseOrderID uint    `gorm:"not null;index" json:"purchase_order_id"`
	ItemName        string  `gorm:"not null" json:"item_name"`
	Description     *string `json:"description"`
	InventoryItemID *uint   `gorm:"index" json:"inventory_item_id"`
	Quantity        float64 `gorm:"not null" json:"quantity"`
	UnitPrice       float64 `gorm:"not null" json:"unit_price"`
	TaxRate         float64 `gorm:"default:10" json:"tax_rate"`
	Amount          float64 `gorm:"not null" json:"amount"`
}

// TableName specifies the table name for PurchaseOrderItem
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// PurchaseOrderResponse is the JSON response format for purchase orders
type PurchaseOrderResponse struct {
	ID                   uint                `json:"id"`
	OrderNumber          string              `json:"order_number"`
	SupplierID           uint                `json:"supplier_id"`
	SupplierName         string              `json:"supplier_name,omitempty"`
	OrderDate            time.Time           `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time          `json:"actual_delivery_date"`
	Status               string              `json:"status"`
	Subtotal             float64             `json:"subtotal"`
	TaxAmount            float64             `json:"tax_amount"`
	TotalAmount          float64             `json:"total_amount"`
	Notes                *string             `json:"notes"`
	Items                []PurchaseOrderItem `json:"items,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
}

// ToResponse converts PurchaseOrder to PurchaseOrderResponse
func (o *PurchaseOrder) ToResponse() PurchaseOrderResponse {
	resp := PurchaseOrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		SupplierID:           o.SupplierID,
		OrderDate:            o.OrderDate,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		ActualDeliveryDate:   o.ActualDeliveryDate,
		Status:               o.Status,
		Subtotal:             o.Subtotal,
		TaxAmount:            o.TaxAmount,
		TotalAmount:          o.TotalAmount,
		Notes:                o.Notes,
		Items:                o.Items,
		CreatedAt:            o.CreatedAt,
	}
	if o.Supplier.ID != 0 {
		resp.SupplierName = o.Supplier.Name
	}
	return resp
}
