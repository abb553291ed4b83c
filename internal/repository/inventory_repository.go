package repository

import (
	"context"

	"github.com/ncnwin/backoffice-api/internal/models"
	"gorm.io/gorm"
)

// InventoryRepository defines the interface for inventory data access
type InventoryRepository interface {
	FindByID(ctx context.Context, id uint) (*models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.InventoryItem, int64, error)
	FindAll(ctx context.Context) ([]models.InventoryItem, error)

	CreateMovement(ctx context.Context, movement *models.InventoryMovement) error
	FindMovement(ctx context.Context, id uint) (*models.InventoryMovement, error)
	ListMovements(ctx context.Context, inventoryID uint, query *ListQuery) ([]models.InventoryMovement, int64, error)
	ApplyMovement(ctx context.Context, movement *models.InventoryMovement, newStock float64) error

	FindOpenAlert(ctx context.Context, inventoryID uint, alertType string) (*models.StockAlert, error)
	FindLatestAlert(ctx context.Context, inventoryID uint, alertType string) (*models.StockAlert, error)
	CreateAlert(ctx context.Context, alert *models.StockAlert) error
	UpdateAlert(ctx context.Context, alert *models.StockAlert) error
	ListAlerts(ctx context.Context, includeResolved bool) ([]models.StockAlert, error)
	FindAlert(ctx context.Context, id uint) (*models.StockAlert, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *inventoryRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Omit("Supplier").Save(item).Error
}

func (r *inventoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("inventory_id = ?", id).Delete(&models.StockAlert{}).Error; err != nil {
			return err
		}
		if err := tx.Where("inventory_id = ?", id).Delete(&models.InventoryMovement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.InventoryItem{}, id).Error
	})
}

func (r *inventoryRepository) List(ctx context.Context, query *ListQuery) ([]models.InventoryItem, int64, error) {
	var items []models.InventoryItem
	var total int64

	db := r.db.WithContext(ctx).Model(&models.InventoryItem{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("item_name ILIKE ? OR category ILIKE ?", search, search)
	}
	if query.Filters["category"] != "" {
		db = db.Where("category = ?", query.Filters["category"])
	}
	if query.Filters["supplier_id"] != "" {
		db = db.Where("supplier_id = ?", query.Filters["supplier_id"])
	}
	if query.Filters["low_stock"] == "true" {
		db = db.Where("current_stock <= reorder_point")
	}

	db.Count(&total)

	db = applyOrder(db, query, "item_name ASC")
	db = applyPagination(db, query)

	err := db.Preload("Supplier").Find(&items).Error
	return items, total, err
}

func (r *inventoryRepository) FindAll(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).Order("item_name ASC").Find(&items).Error
	return items, err
}

func (r *inventoryRepository) CreateMovement(ctx context.Context, movement *models.InventoryMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *inventoryRepository) FindMovement(ctx context.Context, id uint) (*models.InventoryMovement, error) {
	var movement models.InventoryMovement
	err := r.db.WithContext(ctx).
		Preload("Item").
		First(&movement, id).Error
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *inventoryRepository) ListMovements(ctx context.Context, inventoryID uint, query *ListQuery) ([]models.InventoryMovement, int64, error) {
	var movements []models.InventoryMovement
	var total int64

	db := r.db.WithContext(ctx).Model(&models.InventoryMovement{})
	if inventoryID != 0 {
		db = db.Where("inventory_id = ?", inventoryID)
	}
	if query.Filters["movement_type"] != "" {
		db = db.Where("movement_type = ?", query.Filters["movement_type"])
	}

	db.Count(&total)

	db = applyOrder(db, query, "performed_at DESC, id DESC")
	db = applyPagination(db, query)

	err := db.Preload("Item").Find(&movements).Error
	return movements, total, err
}

// ApplyMovement records the movement and writes the resulting stock level in
// one transaction so a failed insert never leaves the level shifted.
func (r *inventoryRepository) ApplyMovement(ctx context.Context, movement *models.InventoryMovement, newStock float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movement).Error; err != nil {
			return err
		}
		return tx.Model(&models.InventoryItem{}).
			Where("id = ?", movement.InventoryID).
			Update("current_stock", newStock).Error
	})
}

func (r *inventoryRepository) FindOpenAlert(ctx context.Context, inventoryID uint, alertType string) (*models.StockAlert, error) {
	var alert models.StockAlert
	err := r.db.WithContext(ctx).
		Where("inventory_id = ? AND alert_type = ? AND is_resolved = false", inventoryID, alertType).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *inventoryRepository) FindLatestAlert(ctx context.Context, inventoryID uint, alertType string) (*models.StockAlert, error) {
	var alert models.StockAlert
	err := r.db.WithContext(ctx).
		Where("inventory_id = ? AND alert_type = ?", inventoryID, alertType).
		Order("created_at DESC").
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *inventoryRepository) CreateAlert(ctx context.Context, alert *models.StockAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *inventoryRepository) UpdateAlert(ctx context.Context, alert *models.StockAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

func (r *inventoryRepository) ListAlerts(ctx context.Context, includeResolved bool) ([]models.StockAlert, error) {
	var alerts []models.StockAlert
	db := r.db.WithContext(ctx).Preload("Item")
	if !includeResolved {
		db = db.Where("is_resolved = false")
	}
	err := db.Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

func (r *inventoryRepository) FindAlert(ctx context.Context, id uint) (*models.StockAlert, error) {
	var alert models.StockAlert
	if err := r.db.WithContext(ctx).First(&alert, id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}
