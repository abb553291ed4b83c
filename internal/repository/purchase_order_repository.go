package repository

import (
	"context"

	"github.com/ncnwin/backoffice-api/internal/models"
	"gorm.io/gorm"
)

// PurchaseOrderRepository defines the interface for purchase order data access
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uint) (*models.PurchaseOrder, error)
	Create(ctx context.Context, order *models.PurchaseOrder) error
	Update(ctx context.Context, order *models.PurchaseOrder) error
	UpdateWithItems(ctx context.Context, order *models.PurchaseOrder) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.PurchaseOrder, int64, error)
	LastNumberForPrefix(ctx context.Context, prefix string) (string, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

// NewPurchaseOrderRepository creates a new purchase order repository
func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) FindByID(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("purchase_order_items.id ASC")
		}).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepository) Create(ctx context.Context, order *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *purchaseOrderRepository) Update(ctx context.Context, order *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit("Items", "Supplier").Save(order).Error
}

// UpdateWithItems replaces the order and its line items in one transaction
func (r *purchaseOrderRepository) UpdateWithItems(ctx context.Context, order *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", order.ID).Delete(&models.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].ID = 0
			order.Items[i].PurchaseOrderID = order.ID
		}
		return tx.Omit("Supplier").Save(order).Error
	})
}

func (r *purchaseOrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", id).Delete(&models.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PurchaseOrder{}, id).Error
	})
}

func (r *purchaseOrderRepository) List(ctx context.Context, query *ListQuery) ([]models.PurchaseOrder, int64, error) {
	var orders []models.PurchaseOrder
	var total int64

	db := r.db.WithContext(ctx).Model(&models.PurchaseOrder{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("order_number ILIKE ?", search)
	}
	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["supplier_id"] != "" {
		db = db.Where("supplier_id = ?", query.Filters["supplier_id"])
	}
	if query.Filters["from"] != "" {
		db = db.Where("order_date >= ?", query.Filters["from"])
	}
	if query.Filters["to"] != "" {
		db = db.Where("order_date <= ?", query.Filters["to"])
	}

	db.Count(&total)

	db = applyOrder(db, query, "order_date DESC, id DESC")
	db = applyPagination(db, query)

	err := db.Preload("Supplier").Preload("Items").Find(&orders).Error
	return orders, total, err
}

// LastNumberForPrefix returns the highest order number starting with prefix,
// or empty string when none exist yet.
func (r *purchaseOrderRepository) LastNumberForPrefix(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Select("order_number").
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Scan(&number).Error
	return number, err
}
