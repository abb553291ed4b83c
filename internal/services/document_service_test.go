package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory DocumentRepository
type memoryDocumentRepository struct {
	documents map[uint]*models.Document
	nextID    uint
}

func newMemoryDocumentRepository() *memoryDocumentRepository {
	return &memoryDocumentRepository{documents: map[uint]*models.Document{}, nextID: 1}
}

func (m *memoryDocumentRepository) FindByID(ctx context.Context, id uint) (*models.Document, error) {
	document, ok := m.documents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *document
	return &copied, nil
}

func (m *memoryDocumentRepository) Create(ctx context.Context, document *models.Document) error {
	document.ID = m.nextID
	m.nextID++
	copied := *document
	m.documents[document.ID] = &copied
	return nil
}

func (m *memoryDocumentRepository) Update(ctx context.Context, document *models.Document) error {
	if _, ok := m.documents[document.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *document
	m.documents[document.ID] = &copied
	return nil
}

func (m *memoryDocumentRepository) UpdateWithItems(ctx context.Context, document *models.Document) error {
	return m.Update(ctx, document)
}

func (m *memoryDocumentRepository) Delete(ctx context.Context, id uint) error {
	delete(m.documents, id)
	return nil
}

func (m *memoryDocumentRepository) List(ctx context.Context, query *repository.ListQuery) ([]models.Document, int64, error) {
	var out []models.Document
	for _, document := range m.documents {
		out = append(out, *document)
	}
	return out, int64(len(out)), nil
}

func (m *memoryDocumentRepository) LastNumberForPrefix(ctx context.Context, prefix string) (string, error) {
	last := ""
	for _, document := range m.documents {
		if strings.HasPrefix(document.DocumentNumber, prefix) && document.DocumentNumber > last {
			last = document.DocumentNumber
		}
	}
	return last, nil
}

// CustomerRepository stub: every customer exists
type stubCustomerRepository struct {
	repository.CustomerRepository
}

func (s *stubCustomerRepository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	return &models.Customer{ID: id, Name: "テスト商事"}, nil
}

func newTestDocumentService() (*DocumentService, *memoryDocumentRepository, *memoryJournalRepository) {
	documentRepo := newMemoryDocumentRepository()
	journalRepo := newMemoryJournalRepository()
	postingSvc := NewPostingService(journalRepo, newMemoryAccountRepository(), testRoles())
	auditSvc := NewAuditService(&mockAuditRepository{})
	svc := NewDocumentService(documentRepo, &stubCustomerRepository{}, postingSvc, auditSvc)
	return svc, documentRepo, journalRepo
}

func invoiceInput() DocumentInput {
	return DocumentInput{
		DocumentType: models.DocumentTypeInvoice,
		CustomerID:   1,
		IssueDate:    time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		Items: []DocumentItemInput{
			{ItemName: "コース料理", Quantity: 2, UnitPrice: 5000},
		},
	}
}

func TestCreateDocument_NumberingAndTotals(t *testing.T) {
	svc, _, _ := newTestDocumentService()

	document, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)

	assert.Equal(t, "INV-20260829-001", document.DocumentNumber)
	assert.Equal(t, models.DocumentStatusDraft, document.Status)
	assert.Equal(t, models.TaxTypeExclusive, document.TaxType)
	assert.Equal(t, 10000.0, document.Subtotal)
	assert.Equal(t, 1000.0, document.TaxAmount)
	assert.Equal(t, 11000.0, document.TotalAmount)
}

func TestCreateDocument_SequenceIncrementsPerTypeAndDate(t *testing.T) {
	svc, _, _ := newTestDocumentService()

	first, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260829-001", first.DocumentNumber)
	assert.Equal(t, "INV-20260829-002", second.DocumentNumber)

	// Another type starts its own sequence
	input := invoiceInput()
	input.DocumentType = models.DocumentTypeQuotation
	quotation, err := svc.Create(context.Background(), input, 1)
	require.NoError(t, err)
	assert.Equal(t, "EST-20260829-001", quotation.DocumentNumber)

	// Another date starts its own sequence
	input = invoiceInput()
	input.IssueDate = time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	nextDay, err := svc.Create(context.Background(), input, 1)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260830-001", nextDay.DocumentNumber)
}

func TestCreateDocument_InclusiveTax(t *testing.T) {
	svc, _, _ := newTestDocumentService()

	input := invoiceInput()
	input.TaxType = models.TaxTypeInclusive
	document, err := svc.Create(context.Background(), input, 1)
	require.NoError(t, err)

	assert.Equal(t, 10000.0, document.TotalAmount)
	assert.Equal(t, 909.0, document.TaxAmount) // floor(10000 * 10 / 110)
}

func TestIssueInvoice_PostsToLedger(t *testing.T) {
	svc, _, journalRepo := newTestDocumentService()

	document, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)
	assert.Empty(t, journalRepo.entries)

	issued, err := svc.Issue(context.Background(), document.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusIssued, issued.Status)

	require.Len(t, journalRepo.entries, 1)
	assert.Equal(t, 11000.0, journalRepo.entries[0].Amount)
}

func TestIssueQuotation_DoesNotPost(t *testing.T) {
	svc, _, journalRepo := newTestDocumentService()

	input := invoiceInput()
	input.DocumentType = models.DocumentTypeQuotation
	document, err := svc.Create(context.Background(), input, 1)
	require.NoError(t, err)

	_, err = svc.Issue(context.Background(), document.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, journalRepo.entries)
}

func TestMarkPaid_PostsPaymentEntry(t *testing.T) {
	svc, _, journalRepo := newTestDocumentService()

	document, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), document.ID, 1)
	require.NoError(t, err)

	paymentDate := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	paid, err := svc.MarkPaid(context.Background(), document.ID, paymentDate, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentDate)

	require.Len(t, journalRepo.entries, 2)
	assert.Equal(t, paymentDate, journalRepo.entries[1].EntryDate)
}

func TestMarkPaid_DraftFails(t *testing.T) {
	svc, _, _ := newTestDocumentService()

	document, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)

	_, err = svc.MarkPaid(context.Background(), document.ID, time.Now(), 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateIssuedInvoice_RepostsEntries(t *testing.T) {
	svc, _, journalRepo := newTestDocumentService()

	document, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), document.ID, 1)
	require.NoError(t, err)

	input := invoiceInput()
	input.Items = []DocumentItemInput{{ItemName: "コース料理", Quantity: 1, UnitPrice: 5000}}
	updated, err := svc.Update(context.Background(), document.ID, input, 1)
	require.NoError(t, err)
	assert.Equal(t, 5500.0, updated.TotalAmount)

	require.Len(t, journalRepo.entries, 1)
	assert.Equal(t, 5500.0, journalRepo.entries[0].Amount)
}

func TestUpdatePaidInvoice_Rejected(t *testing.T) {
	svc, _, _ := newTestDocumentService()

	document, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), document.ID, 1)
	require.NoError(t, err)
	_, err = svc.MarkPaid(context.Background(), document.ID, time.Now(), 1)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), document.ID, invoiceInput(), 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelIssuedInvoice_ClearsEntries(t *testing.T) {
	svc, _, journalRepo := newTestDocumentService()

	document, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), document.ID, 1)
	require.NoError(t, err)
	require.Len(t, journalRepo.entries, 1)

	cancelled, err := svc.Cancel(context.Background(), document.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusCancelled, cancelled.Status)
	assert.Empty(t, journalRepo.entries)
}

func TestDeleteDocument_OnlyDraftOrCancelled(t *testing.T) {
	svc, _, _ := newTestDocumentService()

	document, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)
	_, err = svc.Issue(context.Background(), document.ID, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), document.ID, 1), ErrInvalidState)

	_, err = svc.Cancel(context.Background(), document.ID, 1)
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(context.Background(), document.ID, 1))
}

func TestConvert_CopiesItemsToNewDraft(t *testing.T) {
	svc, documentRepo, _ := newTestDocumentService()

	input := invoiceInput()
	input.DocumentType = models.DocumentTypeQuotation
	quotation, err := svc.Create(context.Background(), input, 1)
	require.NoError(t, err)

	// Items survive in the stored copy
	documentRepo.documents[quotation.ID].Items = []models.DocumentItem{
		{ItemName: "コース料理", Quantity: 2, UnitPrice: 5000, TaxRate: 10, Amount: 10000},
	}

	order, err := svc.Convert(context.Background(), quotation.ID, models.DocumentTypeOrder, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DocumentTypeOrder, order.DocumentType)
	assert.Equal(t, models.DocumentStatusDraft, order.Status)
	assert.True(t, strings.HasPrefix(order.DocumentNumber, "ORD-"))
	assert.Equal(t, 11000.0, order.TotalAmount)
}

func TestConvert_RejectsUnknownType(t *testing.T) {
	svc, _, _ := newTestDocumentService()

	document, err := svc.Create(context.Background(), invoiceInput(), 1)
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), document.ID, "receipt", 1)
	assert.Error(t, err)
}
