package services

import (
	"github.com/ncnwin/backoffice-api/internal/config"
	"github.com/ncnwin/backoffice-api/internal/jobs"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth          *AuthService
	User          *UserService
	Customer      *CustomerService
	Supplier      *SupplierService
	Document      *DocumentService
	PurchaseOrder *PurchaseOrderService
	Inventory     *InventoryService
	Expense       *ExpenseService
	Posting       *PostingService
	Accounting    *AccountingService
	Export        *ExportService
	Audit         *AuditService
	Worker        *jobs.Worker
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config) *Services {
	auditSvc := NewAuditService(repos.Audit)
	postingSvc := NewPostingService(repos.Journal, repos.Account, cfg.Accounts)
	accountingSvc := NewAccountingService(repos.Account, repos.Journal, auditSvc)
	inventorySvc := NewInventoryService(repos.Inventory, postingSvc, auditSvc)

	return &Services{
		Auth:          NewAuthService(repos.User, auditSvc, cfg),
		User:          NewUserService(repos.User, auditSvc),
		Customer:      NewCustomerService(repos.Customer, auditSvc),
		Supplier:      NewSupplierService(repos.Supplier, auditSvc),
		Document:      NewDocumentService(repos.Document, repos.Customer, postingSvc, auditSvc),
		PurchaseOrder: NewPurchaseOrderService(repos.PurchaseOrder, repos.Supplier, inventorySvc, postingSvc, auditSvc),
		Inventory:     inventorySvc,
		Expense:       NewExpenseService(repos.Expense, store, auditSvc),
		Posting:       postingSvc,
		Accounting:    accountingSvc,
		Export:        NewExportService(accountingSvc),
		Audit:         auditSvc,
		Worker:        worker,
	}
}
