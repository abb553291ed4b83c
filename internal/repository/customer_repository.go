package repository

import (
	"context"

	"github.com/ncnwin/backoffice-api/internal/models"
	"gorm.io/gorm"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Customer, int64, error)
	CountDocuments(ctx context.Context, customerID uint) (int64, error)
	AddContact(ctx context.Context, contact *models.CustomerContact) error
	UpdateContact(ctx context.Context, contact *models.CustomerContact) error
	DeleteContact(ctx context.Context, contactID uint) error
	FindContact(ctx context.Context, contactID uint) (*models.CustomerContact, error)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Preload("Contacts").
		First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&models.CustomerContact{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Customer{}, id).Error
	})
}

func (r *customerRepository) List(ctx context.Context, query *ListQuery) ([]models.Customer, int64, error) {
	var customers []models.Customer
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Customer{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?",
			search, search, search)
	}
	if query.Filters["customer_type"] != "" {
		db = db.Where("customer_type = ?", query.Filters["customer_type"])
	}

	db.Count(&total)

	db = applyOrder(db, query, "name ASC")
	db = applyPagination(db, query)

	err := db.Preload("Contacts").Find(&customers).Error
	return customers, total, err
}

// CountDocuments returns how many documents reference the customer
func (r *customerRepository) CountDocuments(ctx context.Context, customerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

func (r *customerRepository) AddContact(ctx context.Context, contact *models.CustomerContact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *customerRepository) UpdateContact(ctx context.Context, contact *models.CustomerContact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *customerRepository) DeleteContact(ctx context.Context, contactID uint) error {
	return r.db.WithContext(ctx).Delete(&models.CustomerContact{}, contactID).Error
}

func (r *customerRepository) FindContact(ctx context.Context, contactID uint) (*models.CustomerContact, error) {
	var contact models.CustomerContact
	if err := r.db.WithContext(ctx).First(&contact, contactID).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}
