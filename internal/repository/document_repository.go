package repository

import (
	"context"

	"github.com/ncnwin/backoffice-api/internal/models"
	"gorm.io/gorm"
)

// DocumentRepository defines the interface for sales document data access
type DocumentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Document, error)
	Create(ctx context.Context, document *models.Document) error
	Update(ctx context.Context, document *models.Document) error
	UpdateWithItems(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Document, int64, error)
	LastNumberForPrefix(ctx context.Context, prefix string) (string, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) FindByID(ctx context.Context, id uint) (*models.Document, error) {
	var document models.Document
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("document_items.id ASC")
		}).
		First(&document, id).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) Update(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Omit("Items", "Customer").Save(document).Error
}

// UpdateWithItems replaces the document and its line items in one transaction
func (r *documentRepository) UpdateWithItems(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", document.ID).Delete(&models.DocumentItem{}).Error; err != nil {
			return err
		}
		for i := range document.Items {
			document.Items[i].ID = 0
			document.Items[i].DocumentID = document.ID
		}
		return tx.Omit("Customer").Save(document).Error
	})
}

func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.DocumentItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, id).Error
	})
}

func (r *documentRepository) List(ctx context.Context, query *ListQuery) ([]models.Document, int64, error) {
	var documents []models.Document
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Document{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("document_number ILIKE ?", search)
	}
	if query.Filters["document_type"] != "" {
		db = db.Where("document_type = ?", query.Filters["document_type"])
	}
	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["customer_id"] != "" {
		db = db.Where("customer_id = ?", query.Filters["customer_id"])
	}
	if query.Filters["from"] != "" {
		db = db.Where("issue_date >= ?", query.Filters["from"])
	}
	if query.Filters["to"] != "" {
		db = db.Where("issue_date <= ?", query.Filters["to"])
	}

	db.Count(&total)

	db = applyOrder(db, query, "issue_date DESC, id DESC")
	db = applyPagination(db, query)

	err := db.Preload("Customer").Preload("Items").Find(&documents).Error
	return documents, total, err
}

// LastNumberForPrefix returns the highest document number starting with prefix,
// or empty string when none exist yet.
func (r *documentRepository) LastNumberForPrefix(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Select("document_number").
		Where("document_number LIKE ?", prefix+"%").
		Order("document_number DESC").
		Limit(1).
		Scan(&number).Error
	return number, err
}
