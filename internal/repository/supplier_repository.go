package repository

import (
	"context"

	"github.com/ncnwin/backoffice-api/internal/models"
	"gorm.io/gorm"
)

// SupplierRepository defines the interface for supplier data access
type SupplierRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Supplier, error)
	Create(ctx context.Context, supplier *models.Supplier) error
	Update(ctx context.Context, supplier *models.Supplier) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Supplier, int64, error)
	CountPurchaseOrders(ctx context.Context, supplierID uint) (int64, error)
	AddContact(ctx context.Context, contact *models.SupplierContact) error
	UpdateContact(ctx context.Context, contact *models.SupplierContact) error
	DeleteContact(ctx context.Context, contactID uint) error
	FindContact(ctx context.Context, contactID uint) (*models.SupplierContact, error)
}

type supplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) FindByID(ctx context.Context, id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).
		Preload("Contacts").
		First(&supplier, id).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *supplierRepository) Update(ctx context.Context, supplier *models.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

func (r *supplierRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_id = ?", id).Delete(&models.SupplierContact{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Supplier{}, id).Error
	})
}

func (r *supplierRepository) List(ctx context.Context, query *ListQuery) ([]models.Supplier, int64, error) {
	var suppliers []models.Supplier
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Supplier{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?",
			search, search, search)
	}

	db.Count(&total)

	db = applyOrder(db, query, "name ASC")
	db = applyPagination(db, query)

	err := db.Preload("Contacts").Find(&suppliers).Error
	return suppliers, total, err
}

// CountPurchaseOrders returns how many purchase orders reference the supplier
func (r *supplierRepository) CountPurchaseOrders(ctx context.Context, supplierID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("supplier_id = ?", supplierID).
		Count(&count).Error
	return count, err
}

func (r *supplierRepository) AddContact(ctx context.Context, contact *models.SupplierContact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *supplierRepository) UpdateContact(ctx context.Context, contact *models.SupplierContact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *supplierRepository) DeleteContact(ctx context.Context, contactID uint) error {
	return r.db.WithContext(ctx).Delete(&models.SupplierContact{}, contactID).Error
}

func (r *supplierRepository) FindContact(ctx context.Context, contactID uint) (*models.SupplierContact, error) {
	var contact models.SupplierContact
	if err := r.db.WithContext(ctx).First(&contact, contactID).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}
