package services

import (
	"context"
	"testing"
	"time"

	"github.com/ncnwin/backoffice-api/internal/config"
	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	logger.Setup("test")
}

// In-memory JournalRepository keeping entries in a slice so the replace
// semantics can be observed directly.
type memoryJournalRepository struct {
	entries []models.JournalEntry
	nextID  uint

	// accountType/side → total, used by the statement tests
	sums       map[string]float64
	unbalanced int64
	mismatches []models.PostingMismatch

	// chart used by the trial balance; nil outside the statement tests
	chart *memoryAccountRepository
}

func newMemoryJournalRepository() *memoryJournalRepository {
	return &memoryJournalRepository{nextID: 1, sums: map[string]float64{}}
}

func (m *memoryJournalRepository) FindByID(ctx context.Context, id uint) (*models.JournalEntry, error) {
	for i := range m.entries {
		if m.entries[i].ID == id {
			entry := m.entries[i]
			return &entry, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryJournalRepository) Create(ctx context.Context, entry *models.JournalEntry) error {
	entry.ID = m.nextID
	m.nextID++
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryJournalRepository) Update(ctx context.Context, entry *models.JournalEntry) error {
	for i := range m.entries {
		if m.entries[i].ID == entry.ID {
			m.entries[i] = *entry
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryJournalRepository) Delete(ctx context.Context, id uint) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *memoryJournalRepository) List(ctx context.Context, query *repository.ListQuery) ([]models.JournalEntry, int64, error) {
	return m.entries, int64(len(m.entries)), nil
}

func (m *memoryJournalRepository) FindByReference(ctx context.Context, referenceType string, referenceID uint) ([]models.JournalEntry, error) {
	var out []models.JournalEntry
	for _, e := range m.entries {
		if e.ReferenceType != nil && *e.ReferenceType == referenceType && e.ReferenceID != nil && *e.ReferenceID == referenceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryJournalRepository) DeleteByReference(ctx context.Context, referenceTypes []string, referenceID uint) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !matchesReference(&e, referenceTypes, referenceID) {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *memoryJournalRepository) ReplaceForReference(ctx context.Context, referenceTypes []string, referenceID uint, entries []models.JournalEntry) error {
	if err := m.DeleteByReference(ctx, referenceTypes, referenceID); err != nil {
		return err
	}
	for i := range entries {
		entries[i].ID = m.nextID
		m.nextID++
		m.entries = append(m.entries, entries[i])
	}
	return nil
}

func (m *memoryJournalRepository) TrialBalance(ctx context.Context, from, to string) ([]models.TrialBalanceRow, error) {
	if m.chart == nil {
		return nil, nil
	}
	var rows []models.TrialBalanceRow
	for _, a := range m.chart.accounts {
		if !a.Active {
			continue
		}
		var debit, credit float64
		for _, e := range m.entries {
			if e.DebitAccountID == a.ID {
				debit += e.Amount
			}
			if e.CreditAccountID == a.ID {
				credit += e.Amount
			}
		}
		if debit == 0 && credit == 0 {
			continue
		}
		rows = append(rows, models.TrialBalanceRow{
			AccountID:   a.ID,
			AccountCode: a.Code,
			AccountName: a.Name,
			AccountType: a.Type,
			TotalDebit:  debit,
			TotalCredit: credit,
		})
	}
	return rows, nil
}

func (m *memoryJournalRepository) SumByTypeSide(ctx context.Context, accountType, side, from, to string) (float64, error) {
	return m.sums[accountType+"/"+side], nil
}

func (m *memoryJournalRepository) UnbalancedAmounts(ctx context.Context) (int64, error) {
	return m.unbalanced, nil
}

func (m *memoryJournalRepository) PostingMismatches(ctx context.Context) ([]models.PostingMismatch, error) {
	return m.mismatches, nil
}

func matchesReference(e *models.JournalEntry, referenceTypes []string, referenceID uint) bool {
	if e.ReferenceType == nil || e.ReferenceID == nil || *e.ReferenceID != referenceID {
		return false
	}
	for _, t := range referenceTypes {
		if *e.ReferenceType == t {
			return true
		}
	}
	return false
}

// In-memory AccountRepository seeded with the default role accounts.
type memoryAccountRepository struct {
	accounts    []models.Account
	entryCounts map[uint]int64
}

func newMemoryAccountRepository() *memoryAccountRepository {
	return &memoryAccountRepository{
		entryCounts: map[uint]int64{},
		accounts: []models.Account{
			{ID: 1, Code: "1000", Name: "現金", Type: models.AccountTypeAsset, Active: true},
			{ID: 2, Code: "1100", Name: "売掛金", Type: models.AccountTypeAsset, Active: true},
			{ID: 3, Code: "1200", Name: "棚卸資産", Type: models.AccountTypeAsset, Active: true},
			{ID: 4, Code: "2000", Name: "買掛金", Type: models.AccountTypeLiability, Active: true},
			{ID: 5, Code: "4000", Name: "売上高", Type: models.AccountTypeRevenue, Active: true},
			{ID: 6, Code: "5000", Name: "仕入高", Type: models.AccountTypeExpense, Active: true},
		},
	}
}

func (m *memoryAccountRepository) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			account := m.accounts[i]
			return &account, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryAccountRepository) FindByCode(ctx context.Context, code string) (*models.Account, error) {
	for i := range m.accounts {
		if m.accounts[i].Code == code {
			account := m.accounts[i]
			return &account, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryAccountRepository) Create(ctx context.Context, account *models.Account) error {
	account.ID = uint(len(m.accounts) + 1)
	m.accounts = append(m.accounts, *account)
	return nil
}

func (m *memoryAccountRepository) Update(ctx context.Context, account *models.Account) error {
	for i := range m.accounts {
		if m.accounts[i].ID == account.ID {
			m.accounts[i] = *account
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryAccountRepository) ListActive(ctx context.Context) ([]models.Account, error) {
	var out []models.Account
	for _, a := range m.accounts {
		if a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryAccountRepository) ListAll(ctx context.Context) ([]models.Account, error) {
	return m.accounts, nil
}

func (m *memoryAccountRepository) CountEntries(ctx context.Context, accountID uint) (int64, error) {
	return m.entryCounts[accountID], nil
}

func testRoles() config.AccountRoles {
	return config.AccountRoles{
		Cash:           "1000",
		Receivable:     "1100",
		Payable:        "2000",
		Revenue:        "4000",
		Purchases:      "5000",
		InventoryAsset: "1200",
	}
}

func newTestPostingService() (*PostingService, *memoryJournalRepository) {
	journalRepo := newMemoryJournalRepository()
	return NewPostingService(journalRepo, newMemoryAccountRepository(), testRoles()), journalRepo
}

func issuedInvoice(id uint, total float64) *models.Document {
	return &models.Document{
		ID:             id,
		DocumentNumber: "INV-20260801-001",
		DocumentType:   models.DocumentTypeInvoice,
		Status:         models.DocumentStatusIssued,
		IssueDate:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		TotalAmount:    total,
		CustomerID:     9,
		Customer:       models.Customer{ID: 9, Name: "山田商店"},
	}
}

func TestPostForDocument_IssuedInvoice(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	doc := issuedInvoice(1, 1100)

	svc.PostForDocument(context.Background(), doc)

	require.Len(t, journalRepo.entries, 1)
	entry := journalRepo.entries[0]
	assert.Equal(t, uint(2), entry.DebitAccountID)  // 売掛金
	assert.Equal(t, uint(5), entry.CreditAccountID) // 売上高
	assert.Equal(t, 1100.0, entry.Amount)
	assert.Equal(t, doc.IssueDate, entry.EntryDate)
	assert.Equal(t, models.ReferenceTypeDocument, *entry.ReferenceType)
	assert.Equal(t, doc.ID, *entry.ReferenceID)
	assert.Equal(t, "山田商店 売上計上 (INV-20260801-001)", entry.Description)
}

func TestPostForDocument_DescriptionWithoutLoadedCustomer(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	doc := issuedInvoice(1, 1100)
	doc.Customer = models.Customer{}

	svc.PostForDocument(context.Background(), doc)

	require.Len(t, journalRepo.entries, 1)
	assert.Equal(t, "売上計上 (INV-20260801-001)", journalRepo.entries[0].Description)
}

func TestPostForDocument_PaidInvoiceAddsPaymentEntry(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	doc := issuedInvoice(1, 2200)
	doc.Status = models.DocumentStatusPaid
	paymentDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	doc.PaymentDate = &paymentDate

	svc.PostForDocument(context.Background(), doc)

	require.Len(t, journalRepo.entries, 2)
	payment := journalRepo.entries[1]
	assert.Equal(t, uint(1), payment.DebitAccountID)  // 現金
	assert.Equal(t, uint(2), payment.CreditAccountID) // 売掛金
	assert.Equal(t, 2200.0, payment.Amount)
	assert.Equal(t, paymentDate, payment.EntryDate)
	assert.Equal(t, models.ReferenceTypeDocumentPayment, *payment.ReferenceType)
	assert.Equal(t, "山田商店 入金 (INV-20260801-001)", payment.Description)
}

func TestPostForDocument_DraftInvoiceHasNoEntries(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	doc := issuedInvoice(1, 1100)
	doc.Status = models.DocumentStatusDraft

	svc.PostForDocument(context.Background(), doc)

	assert.Empty(t, journalRepo.entries)
}

func TestPostForDocument_QuotationNeverPosts(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	doc := issuedInvoice(1, 1100)
	doc.DocumentType = models.DocumentTypeQuotation

	svc.PostForDocument(context.Background(), doc)

	assert.Empty(t, journalRepo.entries)
}

func TestPostForDocument_Idempotent(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	doc := issuedInvoice(1, 1100)

	svc.PostForDocument(context.Background(), doc)
	svc.PostForDocument(context.Background(), doc)
	svc.PostForDocument(context.Background(), doc)

	require.Len(t, journalRepo.entries, 1)
	assert.Equal(t, 1100.0, journalRepo.entries[0].Amount)
}

func TestPostForDocument_RepostReplacesStaleAmount(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	doc := issuedInvoice(1, 1000)

	svc.PostForDocument(context.Background(), doc)
	doc.TotalAmount = 2500
	svc.PostForDocument(context.Background(), doc)

	require.Len(t, journalRepo.entries, 1)
	assert.Equal(t, 2500.0, journalRepo.entries[0].Amount)
}

func TestPostForDocument_CancelClearsEntries(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	doc := issuedInvoice(1, 1100)

	svc.PostForDocument(context.Background(), doc)
	require.Len(t, journalRepo.entries, 1)

	doc.Status = models.DocumentStatusCancelled
	svc.PostForDocument(context.Background(), doc)

	assert.Empty(t, journalRepo.entries)
}

func TestPostForDocument_DoesNotTouchOtherDocuments(t *testing.T) {
	svc, journalRepo := newTestPostingService()

	svc.PostForDocument(context.Background(), issuedInvoice(1, 1000))
	svc.PostForDocument(context.Background(), issuedInvoice(2, 2000))

	require.Len(t, journalRepo.entries, 2)

	doc := issuedInvoice(1, 1500)
	svc.PostForDocument(context.Background(), doc)

	require.Len(t, journalRepo.entries, 2)
	for _, e := range journalRepo.entries {
		if *e.ReferenceID == 2 {
			assert.Equal(t, 2000.0, e.Amount)
		}
	}
}

func TestPostForPurchaseOrder_Delivered(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	actual := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	order := &models.PurchaseOrder{
		ID:                 3,
		OrderNumber:        "PO-20260805-001",
		Status:             models.PurchaseOrderStatusDelivered,
		OrderDate:          time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
		ActualDeliveryDate: &actual,
		TotalAmount:        5500,
		SupplierID:         4,
		Supplier:           models.Supplier{ID: 4, Name: "鈴木青果"},
	}

	svc.PostForPurchaseOrder(context.Background(), order)

	require.Len(t, journalRepo.entries, 1)
	entry := journalRepo.entries[0]
	assert.Equal(t, uint(6), entry.DebitAccountID)  // 仕入高
	assert.Equal(t, uint(4), entry.CreditAccountID) // 買掛金
	assert.Equal(t, 5500.0, entry.Amount)
	assert.Equal(t, actual, entry.EntryDate)
	assert.Equal(t, "鈴木青果 仕入計上 (PO-20260805-001)", entry.Description)
}

func TestPostForPurchaseOrder_EntryDateFallsBackToOrderDate(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	order := &models.PurchaseOrder{
		ID:          4,
		OrderNumber: "PO-20260805-002",
		Status:      models.PurchaseOrderStatusDelivered,
		OrderDate:   time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
		TotalAmount: 100,
	}

	svc.PostForPurchaseOrder(context.Background(), order)

	require.Len(t, journalRepo.entries, 1)
	assert.Equal(t, order.OrderDate, journalRepo.entries[0].EntryDate)
}

func TestPostForPurchaseOrder_OrderedDoesNotPost(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	order := &models.PurchaseOrder{
		ID:          5,
		OrderNumber: "PO-20260805-003",
		Status:      models.PurchaseOrderStatusOrdered,
		OrderDate:   time.Now(),
		TotalAmount: 100,
	}

	svc.PostForPurchaseOrder(context.Background(), order)

	assert.Empty(t, journalRepo.entries)
}

func TestPostForInventoryMovement_PurchaseReceipt(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	refType := models.MovementReferencePurchase
	refID := uint(7)
	movement := &models.InventoryMovement{
		ID:            11,
		InventoryID:   1,
		MovementType:  models.MovementTypeIn,
		Quantity:      4,
		UnitCost:      250,
		ReferenceType: &refType,
		ReferenceID:   &refID,
		PerformedAt:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		Item:          models.InventoryItem{ID: 1, ItemName: "米"},
	}

	svc.PostForInventoryMovement(context.Background(), movement)

	require.Len(t, journalRepo.entries, 1)
	entry := journalRepo.entries[0]
	assert.Equal(t, uint(3), entry.DebitAccountID)  // 棚卸資産
	assert.Equal(t, uint(6), entry.CreditAccountID) // 仕入高
	assert.Equal(t, 1000.0, entry.Amount)
	assert.Equal(t, "在庫受入 米", entry.Description)
}

func TestPostForInventoryMovement_ManualOutDoesNotPost(t *testing.T) {
	svc, journalRepo := newTestPostingService()
	movement := &models.InventoryMovement{
		ID:           12,
		InventoryID:  1,
		MovementType: models.MovementTypeOut,
		Quantity:     -2,
		UnitCost:     250,
		PerformedAt:  time.Now(),
	}

	svc.PostForInventoryMovement(context.Background(), movement)

	assert.Empty(t, journalRepo.entries)
}

func TestValidateRoles(t *testing.T) {
	svc, _ := newTestPostingService()
	assert.NoError(t, svc.ValidateRoles(context.Background()))
}

func TestValidateRoles_MissingAccount(t *testing.T) {
	roles := testRoles()
	roles.Revenue = "9999"
	svc := NewPostingService(newMemoryJournalRepository(), newMemoryAccountRepository(), roles)

	err := svc.ValidateRoles(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "9999")
}

func TestValidateRoles_InactiveAccount(t *testing.T) {
	accountRepo := newMemoryAccountRepository()
	accountRepo.accounts[4].Active = false // 売上高
	svc := NewPostingService(newMemoryJournalRepository(), accountRepo, testRoles())

	err := svc.ValidateRoles(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}
