package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/internal/storage"
	"github.com/ncnwin/backoffice-api/pkg/logger"
	"gorm.io/gorm"
)

// ExpenseService handles standalone expense records and their receipt images
type ExpenseService struct {
	expenseRepo repository.ExpenseRepository
	storage     *storage.LocalStorage
	auditSvc    *AuditService
}

// NewExpenseService creates a new expense service
func NewExpenseService(expenseRepo repository.ExpenseRepository, store *storage.LocalStorage, auditSvc *AuditService) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		storage:     store,
		auditSvc:    auditSvc,
	}
}

// ExpenseInput carries the writable expense fields
type ExpenseInput struct {
	Date        time.Time `json:"date" binding:"required"`
	Vendor      string    `json:"vendor" binding:"required"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	Category    *string   `json:"category"`
	Description *string   `json:"description"`
}

// Create records an expense
func (s *ExpenseService) Create(ctx context.Context, input ExpenseInput, userID uint) (*models.Expense, error) {
	expense := &models.Expense{
		Date:        input.Date,
		Vendor:      input.Vendor,
		Amount:      input.Amount,
		Category:    input.Category,
		Description: input.Description,
		CreatedBy:   userID,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "create", "expense", expense.ID, expense.Vendor, "")
	return expense, nil
}

// Get returns one expense
func (s *ExpenseService) Get(ctx context.Context, id uint) (*models.Expense, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return expense, nil
}

// Update modifies an expense
func (s *ExpenseService) Update(ctx context.Context, id uint, input ExpenseInput, userID uint) (*models.Expense, error) {
	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	expense.Date = input.Date
	expense.Vendor = input.Vendor
	expense.Amount = input.Amount
	expense.Category = input.Category
	expense.Description = input.Description

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "update", "expense", expense.ID, expense.Vendor, "")
	return expense, nil
}

// Delete removes an expense and its stored receipt image
func (s *ExpenseService) Delete(ctx context.Context, id uint, userID uint) error {
	expense, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return err
	}

	if expense.ReceiptImage != nil {
		if err := s.storage.Delete(*expense.ReceiptImage); err != nil {
			logger.Warn("failed to delete receipt image", "expense_id", id, "error", err)
		}
	}

	s.auditSvc.Log(ctx, userID, "delete", "expense", id, expense.Vendor, "")
	return nil
}

// List returns expenses matching the query
func (s *ExpenseService) List(ctx context.Context, query *repository.ListQuery) ([]models.Expense, int64, error) {
	return s.expenseRepo.List(ctx, query)
}

// CategoryTotals sums expenses per category over an inclusive date range
func (s *ExpenseService) CategoryTotals(ctx context.Context, from, to string) (map[string]float64, error) {
	return s.expenseRepo.SumByCategory(ctx, from, to)
}

// AttachReceipt stores a receipt image and links it to the expense
func (s *ExpenseService) AttachReceipt(ctx context.Context, id uint, file multipart.File, header *multipart.FileHeader, userID uint) (*models.Expense, error) {
	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if !storage.IsValidContentType(contentType) {
		return nil, fmt.Errorf("アップロードできないファイル形式です: %s", contentType)
	}

	path, err := s.storage.Upload(file, header, "receipts")
	if err != nil {
		return nil, err
	}

	if expense.ReceiptImage != nil {
		if err := s.storage.Delete(*expense.ReceiptImage); err != nil {
			logger.Warn("failed to delete previous receipt image", "expense_id", id, "error", err)
		}
	}

	expense.ReceiptImage = &path
	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "update", "expense", expense.ID, "receipt attached", "")
	return expense, nil
}
