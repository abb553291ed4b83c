package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/internal/statemachine"
	"gorm.io/gorm"
)

// documentNumberPrefixes maps document types to their number prefix.
var documentNumberPrefixes = map[string]string{
	models.DocumentTypeQuotation:    "EST",
	models.DocumentTypeOrder:        "ORD",
	models.DocumentTypeDeliveryNote: "DLV",
	models.DocumentTypeInvoice:      "INV",
}

// DocumentService handles sales document operations
type DocumentService struct {
	documentRepo repository.DocumentRepository
	customerRepo repository.CustomerRepository
	postingSvc   *PostingService
	auditSvc     *AuditService
}

// NewDocumentService creates a new document service
func NewDocumentService(documentRepo repository.DocumentRepository, customerRepo repository.CustomerRepository, postingSvc *PostingService, auditSvc *AuditService) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		customerRepo: customerRepo,
		postingSvc:   postingSvc,
		auditSvc:     auditSvc,
	}
}

// DocumentItemInput carries one writable document line
type DocumentItemInput struct {
	ItemName    string  `json:"item_name" binding:"required"`
	Description *string `json:"description"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"required,gte=0"`
	TaxRate     float64 `json:"tax_rate"`
}

// DocumentInput carries the writable document fields
type DocumentInput struct {
	DocumentType string              `json:"document_type" binding:"required,oneof=quotation order delivery_note invoice"`
	CustomerID   uint                `json:"customer_id" binding:"required"`
	IssueDate    time.Time           `json:"issue_date" binding:"required"`
	DueDate      *time.Time          `json:"due_date"`
	TaxType      string              `json:"tax_type"`
	TaxRate      float64             `json:"tax_rate"`
	Notes        *string             `json:"notes"`
	Items        []DocumentItemInput `json:"items" binding:"required,min=1,dive"`
}

// Create builds a new draft document with a generated number
func (s *DocumentService) Create(ctx context.Context, input DocumentInput, userID uint) (*models.Document, error) {
	if _, err := s.customerRepo.FindByID(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("顧客が見つかりません: id=%d", input.CustomerID)
		}
		return nil, err
	}

	number, err := s.nextNumber(ctx, input.DocumentType, input.IssueDate)
	if err != nil {
		return nil, err
	}

	document := &models.Document{
		DocumentNumber: number,
		DocumentType:   input.DocumentType,
		CustomerID:     input.CustomerID,
		IssueDate:      input.IssueDate,
		DueDate:        input.DueDate,
		Status:         models.DocumentStatusDraft,
		TaxType:        input.TaxType,
		TaxRate:        input.TaxRate,
		Notes:          input.Notes,
		CreatedBy:      userID,
		Items:          buildDocumentItems(input.Items),
	}
	if document.TaxType == "" {
		document.TaxType = models.TaxTypeExclusive
	}
	if document.TaxRate == 0 {
		document.TaxRate = 10
	}
	document.RecalculateTotals()

	if err := s.documentRepo.Create(ctx, document); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "create", "document", document.ID, document.DocumentNumber, "")
	return s.documentRepo.FindByID(ctx, document.ID)
}

// Get returns one document with customer and items
func (s *DocumentService) Get(ctx context.Context, id uint) (*models.Document, error) {
	document, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return document, nil
}

// List returns documents matching the query
func (s *DocumentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Document, int64, error) {
	return s.documentRepo.List(ctx, query)
}

// Update rewrites a document's content. Draft and issued documents may be
// edited; edits to an issued invoice re-post its journal entries with the new
// amounts.
func (s *DocumentService) Update(ctx context.Context, id uint, input DocumentInput, userID uint) (*models.Document, error) {
	document, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if document.Status == models.DocumentStatusPaid || document.Status == models.DocumentStatusCancelled {
		return nil, ErrInvalidState
	}

	document.CustomerID = input.CustomerID
	document.IssueDate = input.IssueDate
	document.DueDate = input.DueDate
	if input.TaxType != "" {
		document.TaxType = input.TaxType
	}
	if input.TaxRate > 0 {
		document.TaxRate = input.TaxRate
	}
	document.Notes = input.Notes
	document.Items = buildDocumentItems(input.Items)
	document.RecalculateTotals()

	if err := s.documentRepo.UpdateWithItems(ctx, document); err != nil {
		return nil, err
	}

	s.postingSvc.PostForDocument(ctx, document)
	s.auditSvc.Log(ctx, userID, "update", "document", document.ID, document.DocumentNumber, "")
	return s.documentRepo.FindByID(ctx, document.ID)
}

// Issue transitions a draft document to issued and posts it to the ledger
// when it is an invoice.
func (s *DocumentService) Issue(ctx context.Context, id uint, userID uint) (*models.Document, error) {
	return s.transition(ctx, id, userID, "issue", func(ctx context.Context, document *models.Document) error {
		return statemachine.NewDocumentFSM(document).Issue(ctx)
	})
}

// MarkPaid records payment on an issued invoice and posts the cash entry.
func (s *DocumentService) MarkPaid(ctx context.Context, id uint, paymentDate time.Time, userID uint) (*models.Document, error) {
	return s.transition(ctx, id, userID, "mark_paid", func(ctx context.Context, document *models.Document) error {
		if err := statemachine.NewDocumentFSM(document).MarkPaid(ctx); err != nil {
			return err
		}
		document.PaymentDate = &paymentDate
		return nil
	})
}

// Cancel voids a document and clears any journal entries it produced.
func (s *DocumentService) Cancel(ctx context.Context, id uint, userID uint) (*models.Document, error) {
	return s.transition(ctx, id, userID, "cancel", func(ctx context.Context, document *models.Document) error {
		return statemachine.NewDocumentFSM(document).Cancel(ctx)
	})
}

// Delete removes a draft or cancelled document together with any leftover
// journal entries.
func (s *DocumentService) Delete(ctx context.Context, id uint, userID uint) error {
	document, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if document.Status != models.DocumentStatusDraft && document.Status != models.DocumentStatusCancelled {
		return ErrInvalidState
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.postingSvc.RemoveForReference(ctx,
		[]string{models.ReferenceTypeDocument, models.ReferenceTypeDocumentPayment}, id)
	s.auditSvc.Log(ctx, userID, "delete", "document", id, document.DocumentNumber, "")
	return nil
}

// Convert derives a new draft document of another type from an existing one,
// copying the customer and line items. Quotations become orders, orders
// become delivery notes or invoices, and so on.
func (s *DocumentService) Convert(ctx context.Context, id uint, targetType string, userID uint) (*models.Document, error) {
	if _, ok := documentNumberPrefixes[targetType]; !ok {
		return nil, fmt.Errorf("無効な帳票種別です: %s", targetType)
	}

	source, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	input := DocumentInput{
		DocumentType: targetType,
		CustomerID:   source.CustomerID,
		IssueDate:    time.Now(),
		DueDate:      source.DueDate,
		TaxType:      source.TaxType,
		TaxRate:      source.TaxRate,
		Notes:        source.Notes,
	}
	for _, item := range source.Items {
		input.Items = append(input.Items, DocumentItemInput{
			ItemName:    item.ItemName,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
		})
	}

	return s.Create(ctx, input, userID)
}

func (s *DocumentService) transition(ctx context.Context, id, userID uint, action string, fn func(context.Context, *models.Document) error) (*models.Document, error) {
	document, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(ctx, document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.documentRepo.Update(ctx, document); err != nil {
		return nil, err
	}

	s.postingSvc.PostForDocument(ctx, document)
	s.auditSvc.Log(ctx, userID, action, "document", document.ID, document.DocumentNumber, "")
	return s.documentRepo.FindByID(ctx, document.ID)
}

// nextNumber builds the next document number for a type and issue date, e.g.
// INV-20250829-003.
func (s *DocumentService) nextNumber(ctx context.Context, documentType string, issueDate time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", documentNumberPrefixes[documentType], issueDate.Format("20060102"))

	last, err := s.documentRepo.LastNumberForPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	seq := 1
	if last != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

func buildDocumentItems(inputs []DocumentItemInput) []models.DocumentItem {
	items := make([]models.DocumentItem, 0, len(inputs))
	for _, in := range inputs {
		taxRate := in.TaxRate
		if taxRate == 0 {
			taxRate = 10
		}
		items = append(items, models.DocumentItem{
			ItemName:    in.ItemName,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			TaxRate:     taxRate,
		})
	}
	return items
}
