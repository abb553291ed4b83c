package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"gorm.io/gorm"
)

// CustomerService handles customer registry operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	auditSvc     *AuditService
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository, auditSvc *AuditService) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		auditSvc:     auditSvc,
	}
}

// CustomerInput carries the writable customer fields
type CustomerInput struct {
	CustomerType string  `json:"customer_type" binding:"required,oneof=company individual"`
	Name         string  `json:"name" binding:"required"`
	PostalCode   *string `json:"postal_code"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	PaymentTerms int     `json:"payment_terms"`
	Notes        *string `json:"notes"`
}

// Create registers a new customer
func (s *CustomerService) Create(ctx context.Context, input CustomerInput, userID uint) (*models.Customer, error) {
	customer := &models.Customer{
		CustomerType: input.CustomerType,
		Name:         input.Name,
		PostalCode:   input.PostalCode,
		Address:      input.Address,
		Phone:        input.Phone,
		Email:        input.Email,
		PaymentTerms: input.PaymentTerms,
		Notes:        input.Notes,
	}
	if customer.PaymentTerms == 0 {
		customer.PaymentTerms = 30
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "create", "customer", customer.ID, customer.Name, "")
	return customer, nil
}

// Get returns one customer with contacts
func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

// Update modifies an existing customer
func (s *CustomerService) Update(ctx context.Context, id uint, input CustomerInput, userID uint) (*models.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.CustomerType = input.CustomerType
	customer.Name = input.Name
	customer.PostalCode = input.PostalCode
	customer.Address = input.Address
	customer.Phone = input.Phone
	customer.Email = input.Email
	if input.PaymentTerms > 0 {
		customer.PaymentTerms = input.PaymentTerms
	}
	customer.Notes = input.Notes

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "update", "customer", customer.ID, customer.Name, "")
	return customer, nil
}

// Delete removes a customer. Blocked while documents still reference it.
func (s *CustomerService) Delete(ctx context.Context, id uint, userID uint) error {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.customerRepo.CountDocuments(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: 帳票 %d 件", ErrReferenced, count)
	}

	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, userID, "delete", "customer", id, customer.Name, "")
	return nil
}

// List returns customers matching the query
func (s *CustomerService) List(ctx context.Context, query *repository.ListQuery) ([]models.Customer, int64, error) {
	return s.customerRepo.List(ctx, query)
}

// ContactInput carries the writable contact fields
type ContactInput struct {
	Name       string  `json:"name" binding:"required"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	IsPrimary  bool    `json:"is_primary"`
}

// AddContact attaches a contact person to a customer
func (s *CustomerService) AddContact(ctx context.Context, customerID uint, input ContactInput) (*models.CustomerContact, error) {
	if _, err := s.Get(ctx, customerID); err != nil {
		return nil, err
	}

	contact := &models.CustomerContact{
		CustomerID: customerID,
		Name:       input.Name,
		Department: input.Department,
		Position:   input.Position,
		Email:      input.Email,
		Phone:      input.Phone,
		IsPrimary:  input.IsPrimary,
	}
	if err := s.customerRepo.AddContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// UpdateContact modifies a contact person
func (s *CustomerService) UpdateContact(ctx context.Context, customerID, contactID uint, input ContactInput) (*models.CustomerContact, error) {
	contact, err := s.customerRepo.FindContact(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if contact.CustomerID != customerID {
		return nil, ErrNotFound
	}

	contact.Name = input.Name
	contact.Department = input.Department
	contact.Position = input.Position
	contact.Email = input.Email
	contact.Phone = input.Phone
	contact.IsPrimary = input.IsPrimary

	if err := s.customerRepo.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// DeleteContact removes a contact person
func (s *CustomerService) DeleteContact(ctx context.Context, customerID, contactID uint) error {
	contact, err := s.customerRepo.FindContact(ctx, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if contact.CustomerID != customerID {
		return ErrNotFound
	}
	return s.customerRepo.DeleteContact(ctx, contactID)
}
