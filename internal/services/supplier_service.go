package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"gorm.io/gorm"
)

// SupplierService handles supplier registry operations
type SupplierService struct {
	supplierRepo repository.SupplierRepository
	auditSvc     *AuditService
}

// NewSupplierService creates a new supplier service
func NewSupplierService(supplierRepo repository.SupplierRepository, auditSvc *AuditService) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		auditSvc:     auditSvc,
	}
}

// SupplierInput carries the writable supplier fields
type SupplierInput struct {
	SupplierType  string  `json:"supplier_type" binding:"required,oneof=company individual"`
	Name          string  `json:"name" binding:"required"`
	PostalCode    *string `json:"postal_code"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	PaymentTerms  int     `json:"payment_terms"`
	BankName      *string `json:"bank_name"`
	BranchName    *string `json:"branch_name"`
	AccountType   *string `json:"account_type"`
	AccountNumber *string `json:"account_number"`
	AccountHolder *string `json:"account_holder"`
	Notes         *string `json:"notes"`
}

// Create registers a new supplier
func (s *SupplierService) Create(ctx context.Context, input SupplierInput, userID uint) (*models.Supplier, error) {
	supplier := &models.Supplier{
		SupplierType:  input.SupplierType,
		Name:          input.Name,
		PostalCode:    input.PostalCode,
		Address:       input.Address,
		Phone:         input.Phone,
		Email:         input.Email,
		PaymentTerms:  input.PaymentTerms,
		BankName:      input.BankName,
		BranchName:    input.BranchName,
		AccountType:   input.AccountType,
		AccountNumber: input.AccountNumber,
		AccountHolder: input.AccountHolder,
		Notes:         input.Notes,
	}
	if supplier.PaymentTerms == 0 {
		supplier.PaymentTerms = 30
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "create", "supplier", supplier.ID, supplier.Name, "")
	return supplier, nil
}

// Get returns one supplier with contacts
func (s *SupplierService) Get(ctx context.Context, id uint) (*models.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return supplier, nil
}

// Update modifies an existing supplier
func (s *SupplierService) Update(ctx context.Context, id uint, input SupplierInput, userID uint) (*models.Supplier, error) {
	supplier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	supplier.SupplierType = input.SupplierType
	supplier.Name = input.Name
	supplier.PostalCode = input.PostalCode
	supplier.Address = input.Address
	supplier.Phone = input.Phone
	supplier.Email = input.Email
	if input.PaymentTerms > 0 {
		supplier.PaymentTerms = input.PaymentTerms
	}
	supplier.BankName = input.BankName
	supplier.BranchName = input.BranchName
	supplier.AccountType = input.AccountType
	supplier.AccountNumber = input.AccountNumber
	supplier.AccountHolder = input.AccountHolder
	supplier.Notes = input.Notes

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "update", "supplier", supplier.ID, supplier.Name, "")
	return supplier, nil
}

// Delete removes a supplier. Blocked while purchase orders still reference it.
func (s *SupplierService) Delete(ctx context.Context, id uint, userID uint) error {
	supplier, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.supplierRepo.CountPurchaseOrders(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: 発注書 %d 件", ErrReferenced, count)
	}

	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, userID, "delete", "supplier", id, supplier.Name, "")
	return nil
}

// List returns suppliers matching the query
func (s *SupplierService) List(ctx context.Context, query *repository.ListQuery) ([]models.Supplier, int64, error) {
	return s.supplierRepo.List(ctx, query)
}

// AddContact attaches a contact person to a supplier
func (s *SupplierService) AddContact(ctx context.Context, supplierID uint, input ContactInput) (*models.SupplierContact, error) {
	if _, err := s.Get(ctx, supplierID); err != nil {
		return nil, err
	}

	contact := &models.SupplierContact{
		SupplierID: supplierID,
		Name:       input.Name,
		Department: input.Department,
		Position:   input.Position,
		Email:      input.Email,
		Phone:      input.Phone,
		IsPrimary:  input.IsPrimary,
	}
	if err := s.supplierRepo.AddContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// UpdateContact modifies a contact person
func (s *SupplierService) UpdateContact(ctx context.Context, supplierID, contactID uint, input ContactInput) (*models.SupplierContact, error) {
	contact, err := s.supplierRepo.FindContact(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if contact.SupplierID != supplierID {
		return nil, ErrNotFound
	}

	contact.Name = input.Name
	contact.Department = input.Department
	contact.Position = input.Position
	contact.Email = input.Email
	contact.Phone = input.Phone
	contact.IsPrimary = input.IsPrimary

	if err := s.supplierRepo.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// DeleteContact removes a contact person
func (s *SupplierService) DeleteContact(ctx context.Context, supplierID, contactID uint) error {
	contact, err := s.supplierRepo.FindContact(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if contact.SupplierID != supplierID {
		return ErrNotFound
	}
	return s.supplierRepo.DeleteContact(ctx, contactID)
}
