package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User          UserRepository
	Customer      CustomerRepository
	Supplier      SupplierRepository
	Document      DocumentRepository
	PurchaseOrder PurchaseOrderRepository
	Inventory     InventoryRepository
	Expense       ExpenseRepository
	Account       AccountRepository
	Journal       JournalRepository
	Audit         AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Customer:      NewCustomerRepository(db),
		Supplier:      NewSupplierRepository(db),
		Document:      NewDocumentRepository(db),
		PurchaseOrder: NewPurchaseOrderRepository(db),
		Inventory:     NewInventoryRepository(db),
		Expense:       NewExpenseRepository(db),
		Account:       NewAccountRepository(db),
		Journal:       NewJournalRepository(db),
		Audit:         NewAuditRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

func applyOrder(db *gorm.DB, query *ListQuery, fallback string) *gorm.DB {
	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		return db.Order(order)
	}
	return db.Order(fallback)
}

func applyPagination(db *gorm.DB, query *ListQuery) *gorm.DB {
	if query.PerPage > 0 {
		return db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}
	return db
}
