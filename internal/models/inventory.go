package models

import (
	"time"
)

// InventoryItem is a stocked ingredient or product with reorder thresholds.
type InventoryItem struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ItemName        string     `gorm:"not null;index" json:"item_name"`
	Category        *string    `gorm:"index" json:"category"`
	SupplierID      *uint      `gorm:"index" json:"supplier_id"`
	Unit            string     `gorm:"default:個" json:"unit"`
	CurrentStock    float64    `gorm:"default:0" json:"current_stock"`
	ReorderPoint    float64    `gorm:"default:0" json:"reorder_point"`
	OptimalStock    float64    `gorm:"default:0" json:"optimal_stock"`
	UnitCost        float64    `gorm:"default:0" json:"unit_cost"`
	ExpiryDate      *time.Time `gorm:"type:date" json:"expiry_date"`
	StorageLocation *string    `json:"storage_location"`
	Notes           *string    `json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Associations
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

// TableName specifies the table name for InventoryItem
func (InventoryItem) TableName() string {
	return "inventory"
}

// Stock status constants derived from the reorder thresholds
const (
	StockStatusLow     = "low"
	StockStatusNormal  = "normal"
	StockStatusOptimal = "optimal"
)

// StockStatus classifies the current level against the thresholds.
func (i *InventoryItem) StockStatus() string {
	switch {
	case i.CurrentStock <= i.ReorderPoint:
		return StockStatusLow
	case i.OptimalStock > 0 && i.CurrentStock >= i.OptimalStock:
		return StockStatusOptimal
	default:
		return StockStatusNormal
	}
}

// NeedsReorder returns true when the stock level has reached the reorder point
func (i *InventoryItem) NeedsReorder() bool {
	return i.CurrentStock <= i.ReorderPoint
}

// ExpiresWithin returns true when the item has an expiry date inside the
// next d days (and not already past).
func (i *InventoryItem) ExpiresWithin(d int) bool {
	if i.ExpiryDate == nil {
		return false
	}
	now := time.Now()
	limit := now.AddDate(0, 0, d)
	return !i.ExpiryDate.Before(now.Truncate(24*time.Hour)) && !i.ExpiryDate.After(limit)
}

// InventoryMovement records a stock change. Quantity is signed: positive for
// inbound and adjustments, negative for outbound.
type InventoryMovement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	InventoryID   uint      `gorm:"not null;index" json:"inventory_id"`
	MovementType  string    `gorm:"not null;index" json:"movement_type"`
	Quantity      float64   `gorm:"not null" json:"quantity"`
	UnitCost      float64   `json:"unit_cost"`
	ReferenceType *string   `json:"reference_type"`
	ReferenceID   *uint     `json:"reference_id"`
	Notes         *string   `json:"notes"`
	PerformedBy   uint      `gorm:"index" json:"performed_by"`
	PerformedAt   time.Time `gorm:"not null;index" json:"performed_at"`

	// Associations
	Item InventoryItem `gorm:"foreignKey:InventoryID" json:"item,omitempty"`
}

// TableName specifies the table name for InventoryMovement
func (InventoryMovement) TableName() string {
	return "inventory_movements"
}

// Movement type constants
const (
	MovementTypeIn         = "in"
	MovementTypeOut        = "out"
	MovementTypeAdjustment = "adjustment"
	MovementTypeInitial    = "initial"
)

// Movement reference type constants
const (
	MovementReferencePurchase = "purchase"
	MovementReferenceManual   = "manual"
)

// BooksToLedger reports whether this movement must produce a journal entry:
// only purchase-driven inbound stock is capitalized.
func (m *InventoryMovement) BooksToLedger() bool {
	return m.MovementType == MovementTypeIn &&
		m.ReferenceType != nil && *m.ReferenceType == MovementReferencePurchase
}

// StockAlert flags an inventory item needing attention. Alerts auto-resolve
// when stock recovers; manually dismissed alerts are never recreated.
type StockAlert struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	InventoryID       uint       `gorm:"not null;index" json:"inventory_id"`
	AlertType         string     `gorm:"not null" json:"alert_type"`
	AlertLevel        string     `gorm:"default:warning" json:"alert_level"`
	Message           string     `gorm:"not null" json:"message"`
	Resolved          bool       `gorm:"column:is_resolved;default:false;index" json:"is_resolved"`
	ResolvedAt        *time.Time `json:"resolved_at"`
	ResolvedBy        *uint      `json:"resolved_by"`
	ManuallyDismissed bool       `gorm:"default:false" json:"manually_dismissed"`
	CreatedAt         time.Time  `json:"created_at"`

	// Associations
	Item InventoryItem `gorm:"foreignKey:InventoryID" json:"item,omitempty"`
}

// TableName specifies the table name for StockAlert
func (StockAlert) TableName() string {
	return "stock_alerts"
}

// Alert type constants
const (
	AlertTypeLowStock      = "low_stock"
	AlertTypeExpiryWarning = "expiry_warning"
)

// Alert level constants
const (
	AlertLevelWarning = "warning"
	AlertLevelUrgent  = "urgent"
)
