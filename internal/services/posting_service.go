package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/ncnwin/backoffice-api/internal/config"
	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/pkg/logger"
)

// PostingService derives journal entries from source documents. It is the only
// writer of referenced (system-generated) entries: each posting run rebuilds
// the full entry set for one source record inside a transaction, so posting is
// idempotent and edits never leave stale amounts behind.
//
// Posting failures are logged and reported to Sentry but never propagated to
// the caller: a broken ledger write must not block the underlying business
// operation.
type PostingService struct {
	journalRepo repository.JournalRepository
	accountRepo repository.AccountRepository
	roles       config.AccountRoles

	mu    sync.RWMutex
	cache map[string]uint // account code → id
}

// NewPostingService creates a new posting service
func NewPostingService(journalRepo repository.JournalRepository, accountRepo repository.AccountRepository, roles config.AccountRoles) *PostingService {
	return &PostingService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		roles:       roles,
		cache:       make(map[string]uint),
	}
}

// ValidateRoles resolves every configured account role against the chart of
// accounts. Called once at startup; a missing or inactive account aborts boot.
func (s *PostingService) ValidateRoles(ctx context.Context) error {
	for role, code := range s.roles.Codes() {
		account, err := s.accountRepo.FindByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("account role %q: no account with code %s: %w", role, code, err)
		}
		if !account.Active {
			return fmt.Errorf("account role %q: account %s (%s) is inactive", role, code, account.Name)
		}
		s.mu.Lock()
		s.cache[code] = account.ID
		s.mu.Unlock()
	}
	return nil
}

// PostForDocument rebuilds the auto entries for a sales document. An issued
// invoice books receivable against revenue at the issue date; a paid invoice
// additionally books cash against receivable at the payment date. Any other
// document state clears previously posted entries.
func (s *PostingService) PostForDocument(ctx context.Context, document *models.Document) {
	refTypes := []string{models.ReferenceTypeDocument, models.ReferenceTypeDocumentPayment}

	var entries []models.JournalEntry
	if document.PostingEligible() && document.TotalAmount > 0 {
		receivable, err1 := s.resolveAccount(ctx, s.roles.Receivable)
		revenue, err2 := s.resolveAccount(ctx, s.roles.Revenue)
		if err := firstError(err1, err2); err != nil {
			s.reportFailure("document", document.ID, err)
			return
		}

		refID := document.ID
		refType := models.ReferenceTypeDocument
		entries = append(entries, models.JournalEntry{
			EntryDate:       document.IssueDate,
			Description:     entryDescription(document.Customer.Name, "売上計上", document.DocumentNumber),
			DebitAccountID:  receivable,
			CreditAccountID: revenue,
			Amount:          document.TotalAmount,
			ReferenceType:   &refType,
			ReferenceID:     &refID,
		})

		if document.Status == models.DocumentStatusPaid && document.PaymentDate != nil {
			cash, err1 := s.resolveAccount(ctx, s.roles.Cash)
			if err := firstError(err1); err != nil {
				s.reportFailure("document", document.ID, err)
				return
			}
			payRefType := models.ReferenceTypeDocumentPayment
			payRefID := document.ID
			entries = append(entries, models.JournalEntry{
				EntryDate:       *document.PaymentDate,
				Description:     entryDescription(document.Customer.Name, "入金", document.DocumentNumber),
				DebitAccountID:  cash,
				CreditAccountID: receivable,
				Amount:          document.TotalAmount,
				ReferenceType:   &payRefType,
				ReferenceID:     &payRefID,
			})
		}
	}

	if err := s.journalRepo.ReplaceForReference(ctx, refTypes, document.ID, entries); err != nil {
		s.reportFailure("document", document.ID, err)
		return
	}
	logger.Debug("posted journal entries for document", "document_id", document.ID, "entries", len(entries))
}

// PostForPurchaseOrder rebuilds the auto entry for a purchase order. A
// delivered order books purchases against accounts payable, dated by the
// actual delivery date when known. Any other state clears the entry.
func (s *PostingService) PostForPurchaseOrder(ctx context.Context, order *models.PurchaseOrder) {
	refTypes := []string{models.ReferenceTypePurchaseOrder}

	var entries []models.JournalEntry
	if order.PostingEligible() && order.TotalAmount > 0 {
		purchases, err1 := s.resolveAccount(ctx, s.roles.Purchases)
		payable, err2 := s.resolveAccount(ctx, s.roles.Payable)
		if err := firstError(err1, err2); err != nil {
			s.reportFailure("purchase_order", order.ID, err)
			return
		}

		refType := models.ReferenceTypePurchaseOrder
		refID := order.ID
		entries = append(entries, models.JournalEntry{
			EntryDate:       order.EntryDate(),
			Description:     entryDescription(order.Supplier.Name, "仕入計上", order.OrderNumber),
			DebitAccountID:  purchases,
			CreditAccountID: payable,
			Amount:          order.TotalAmount,
			ReferenceType:   &refType,
			ReferenceID:     &refID,
		})
	}

	if err := s.journalRepo.ReplaceForReference(ctx, refTypes, order.ID, entries); err != nil {
		s.reportFailure("purchase_order", order.ID, err)
		return
	}
	logger.Debug("posted journal entries for purchase order", "purchase_order_id", order.ID, "entries", len(entries))
}

// PostForInventoryMovement rebuilds the auto entry for a stock movement. Only
// purchase-driven inbound stock is capitalized: inventory asset against
// purchases, valued at quantity times unit cost. Every other movement kind
// clears any previously posted entry.
func (s *PostingService) PostForInventoryMovement(ctx context.Context, movement *models.InventoryMovement) {
	refTypes := []string{models.ReferenceTypeInventoryMovement}

	var entries []models.JournalEntry
	amount := movement.Quantity * movement.UnitCost
	if movement.BooksToLedger() && amount > 0 {
		inventory, err1 := s.resolveAccount(ctx, s.roles.InventoryAsset)
		purchases, err2 := s.resolveAccount(ctx, s.roles.Purchases)
		if err := firstError(err1, err2); err != nil {
			s.reportFailure("inventory_movement", movement.ID, err)
			return
		}

		refType := models.ReferenceTypeInventoryMovement
		refID := movement.ID
		entries = append(entries, models.JournalEntry{
			EntryDate:       movement.PerformedAt,
			Description:     fmt.Sprintf("在庫受入 %s", movement.Item.ItemName),
			DebitAccountID:  inventory,
			CreditAccountID: purchases,
			Amount:          amount,
			ReferenceType:   &refType,
			ReferenceID:     &refID,
		})
	}

	if err := s.journalRepo.ReplaceForReference(ctx, refTypes, movement.ID, entries); err != nil {
		s.reportFailure("inventory_movement", movement.ID, err)
		return
	}
	logger.Debug("posted journal entries for inventory movement", "movement_id", movement.ID, "entries", len(entries))
}

// RemoveForReference clears all auto entries for a deleted source record.
func (s *PostingService) RemoveForReference(ctx context.Context, referenceTypes []string, referenceID uint) {
	if err := s.journalRepo.DeleteByReference(ctx, referenceTypes, referenceID); err != nil {
		s.reportFailure(referenceTypes[0], referenceID, err)
	}
}

func (s *PostingService) resolveAccount(ctx context.Context, code string) (uint, error) {
	s.mu.RLock()
	id, ok := s.cache[code]
	s.mu.RUnlock()
	if ok {
		return id, nil
	}

	account, err := s.accountRepo.FindByCode(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("resolve account %s: %w", code, err)
	}

	s.mu.Lock()
	s.cache[code] = account.ID
	s.mu.Unlock()
	return account.ID, nil
}

func (s *PostingService) reportFailure(source string, id uint, err error) {
	logger.Error("auto-posting failed", "source", source, "id", id, "error", err)
	sentry.CaptureException(err)
}

// entryDescription prefixes the counterparty name when the association is
// loaded, matching the journal's 摘要 format: "<相手先> <摘要> (<番号>)".
func entryDescription(counterparty, label, number string) string {
	if counterparty == "" {
		return fmt.Sprintf("%s (%s)", label, number)
	}
	return fmt.Sprintf("%s %s (%s)", counterparty, label, number)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
