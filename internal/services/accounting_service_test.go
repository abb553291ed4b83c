package services

import (
	"context"
	"testing"
	"time"

	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuditRepository struct {
	logs []models.AuditLog
}

func (m *mockAuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditRepository) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return m.logs, int64(len(m.logs)), nil
}

func newTestAccountingService() (*AccountingService, *memoryJournalRepository, *memoryAccountRepository) {
	journalRepo := newMemoryJournalRepository()
	accountRepo := newMemoryAccountRepository()
	journalRepo.chart = accountRepo
	auditSvc := NewAuditService(&mockAuditRepository{})
	return NewAccountingService(accountRepo, journalRepo, auditSvc), journalRepo, accountRepo
}

func validEntryInput() CreateEntryInput {
	return CreateEntryInput{
		EntryDate:       time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Description:     "家賃支払",
		DebitAccountID:  6,
		CreditAccountID: 1,
		Amount:          80000,
	}
}

func TestCreateEntry(t *testing.T) {
	svc, journalRepo, _ := newTestAccountingService()

	entry, err := svc.CreateEntry(context.Background(), validEntryInput(), 1)
	require.NoError(t, err)
	assert.Equal(t, 80000.0, entry.Amount)
	assert.Nil(t, entry.ReferenceType)
	assert.Nil(t, entry.ReferenceID)
	assert.Len(t, journalRepo.entries, 1)
}

func TestCreateEntry_RejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := newTestAccountingService()

	for _, amount := range []float64{0, -100} {
		input := validEntryInput()
		input.Amount = amount
		_, err := svc.CreateEntry(context.Background(), input, 1)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestCreateEntry_RejectsSameAccountOnBothSides(t *testing.T) {
	svc, _, _ := newTestAccountingService()

	input := validEntryInput()
	input.CreditAccountID = input.DebitAccountID
	_, err := svc.CreateEntry(context.Background(), input, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateEntry_RejectsUnknownAccount(t *testing.T) {
	svc, _, _ := newTestAccountingService()

	input := validEntryInput()
	input.DebitAccountID = 999
	_, err := svc.CreateEntry(context.Background(), input, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateEntry_RejectsInactiveAccount(t *testing.T) {
	svc, _, accountRepo := newTestAccountingService()
	accountRepo.accounts[0].Active = false // 現金

	_, err := svc.CreateEntry(context.Background(), validEntryInput(), 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateEntry_SystemEntryIsImmutable(t *testing.T) {
	svc, journalRepo, _ := newTestAccountingService()

	refType := models.ReferenceTypeDocument
	refID := uint(1)
	entry := models.JournalEntry{
		EntryDate:       time.Now(),
		DebitAccountID:  2,
		CreditAccountID: 5,
		Amount:          1000,
		ReferenceType:   &refType,
		ReferenceID:     &refID,
	}
	require.NoError(t, journalRepo.Create(context.Background(), &entry))

	_, err := svc.UpdateEntry(context.Background(), entry.ID, validEntryInput(), 1)
	assert.ErrorIs(t, err, ErrSystemEntry)
}

func TestDeleteEntry_SystemEntryIsProtected(t *testing.T) {
	svc, journalRepo, _ := newTestAccountingService()

	refType := models.ReferenceTypeDocument
	refID := uint(1)
	entry := models.JournalEntry{
		EntryDate:       time.Now(),
		DebitAccountID:  2,
		CreditAccountID: 5,
		Amount:          1000,
		ReferenceType:   &refType,
		ReferenceID:     &refID,
	}
	require.NoError(t, journalRepo.Create(context.Background(), &entry))

	err := svc.DeleteEntry(context.Background(), entry.ID, 1)
	assert.ErrorIs(t, err, ErrSystemEntry)
	assert.Len(t, journalRepo.entries, 1)
}

func TestDeleteEntry_ManualEntry(t *testing.T) {
	svc, journalRepo, _ := newTestAccountingService()

	entry, err := svc.CreateEntry(context.Background(), validEntryInput(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(context.Background(), entry.ID, 1))
	assert.Empty(t, journalRepo.entries)
}

func TestDeleteEntry_NotFound(t *testing.T) {
	svc, _, _ := newTestAccountingService()

	err := svc.DeleteEntry(context.Background(), 42, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfitAndLoss(t *testing.T) {
	svc, journalRepo, _ := newTestAccountingService()
	journalRepo.sums = map[string]float64{
		"revenue/credit": 6000,
		"revenue/debit":  500, // 売上値引
		"expense/debit":  2000,
		"expense/credit": 300,
	}

	pl, err := svc.ProfitAndLoss(context.Background(), "2026-08-01", "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, 5500.0, pl.Revenue)
	assert.Equal(t, 1700.0, pl.Expenses)
	assert.Equal(t, 3800.0, pl.NetIncome)
}

func TestBalanceSheet_Balanced(t *testing.T) {
	svc, journalRepo, _ := newTestAccountingService()
	// Assets 11000, liabilities 5000, contributed equity 500,
	// net income 6000 - 500 = 5500 folded into equity.
	journalRepo.sums = map[string]float64{
		"asset/debit":      12000,
		"asset/credit":     1000,
		"liability/credit": 5000,
		"equity/credit":    500,
		"revenue/credit":   6000,
		"expense/debit":    500,
	}

	sheet, err := svc.BalanceSheet(context.Background(), "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, 11000.0, sheet.Assets)
	assert.Equal(t, 5000.0, sheet.Liabilities)
	assert.Equal(t, 6000.0, sheet.Equity)
	assert.True(t, sheet.Balanced)
	assert.InDelta(t, 0, sheet.Difference, balanceTolerance)
}

func TestBalanceSheet_Unbalanced(t *testing.T) {
	svc, journalRepo, _ := newTestAccountingService()
	journalRepo.sums = map[string]float64{
		"asset/debit":      10000,
		"liability/credit": 5000,
	}

	sheet, err := svc.BalanceSheet(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, sheet.Balanced)
	assert.Equal(t, 5000.0, sheet.Difference)
}

func TestCreateAccount(t *testing.T) {
	svc, _, accountRepo := newTestAccountingService()

	account, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Code: "6100",
		Name: "水道光熱費",
		Type: models.AccountTypeExpense,
	}, 1)
	require.NoError(t, err)
	assert.True(t, account.Active)

	found, err := accountRepo.FindByCode(context.Background(), "6100")
	require.NoError(t, err)
	assert.Equal(t, "水道光熱費", found.Name)
}

func TestCreateAccount_RejectsInvalidType(t *testing.T) {
	svc, _, _ := newTestAccountingService()

	_, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Code: "6100",
		Name: "水道光熱費",
		Type: "cashflow",
	}, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateAccount_RejectsDuplicateCode(t *testing.T) {
	svc, _, _ := newTestAccountingService()

	_, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Code: "1000",
		Name: "小口現金",
		Type: models.AccountTypeAsset,
	}, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeactivateAccount(t *testing.T) {
	svc, _, accountRepo := newTestAccountingService()

	require.NoError(t, svc.DeactivateAccount(context.Background(), 1, 1))

	account, err := accountRepo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, account.Active)
}

func TestAuditLedger_CleanBooks(t *testing.T) {
	svc, journalRepo, _ := newTestAccountingService()
	journalRepo.unbalanced = 0

	assert.NoError(t, svc.AuditLedger(context.Background()))
}

func TestAuditLedger_FlagsPostingMismatch(t *testing.T) {
	svc, journalRepo, _ := newTestAccountingService()
	journalRepo.mismatches = []models.PostingMismatch{
		{DocumentID: 3, DocumentNumber: "INV-20260801-003", TotalAmount: 11000, PostedAmount: 0},
	}

	err := svc.AuditLedger(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INV-20260801-003")
}

func TestTrialBalance_OmitsInactiveAccounts(t *testing.T) {
	svc, _, accountRepo := newTestAccountingService()

	// 仕入高(6)/現金(1) entry touches both accounts
	_, err := svc.CreateEntry(context.Background(), validEntryInput(), 1)
	require.NoError(t, err)

	accountRepo.accounts[5].Active = false // 仕入高

	rows, err := svc.TrialBalance(context.Background(), "", "")
	require.NoError(t, err)

	var ids []uint
	for _, row := range rows {
		ids = append(ids, row.AccountID)
	}
	assert.Contains(t, ids, uint(1))
	assert.NotContains(t, ids, uint(6), "deactivated accounts stay out of the trial balance")
	assert.NotContains(t, ids, uint(2), "untouched accounts stay out of the trial balance")
}

func TestListAccounts_IncludeInactive(t *testing.T) {
	svc, _, _ := newTestAccountingService()
	require.NoError(t, svc.DeactivateAccount(context.Background(), 1, 1))

	active, err := svc.ListAccounts(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, active, 5)

	all, err := svc.ListAccounts(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestDeactivateAccount_RecordsEntryCount(t *testing.T) {
	journalRepo := newMemoryJournalRepository()
	accountRepo := newMemoryAccountRepository()
	accountRepo.entryCounts[1] = 42
	auditRepo := &mockAuditRepository{}
	svc := NewAccountingService(accountRepo, journalRepo, NewAuditService(auditRepo))

	require.NoError(t, svc.DeactivateAccount(context.Background(), 1, 1))

	require.Len(t, auditRepo.logs, 1)
	assert.Contains(t, auditRepo.logs[0].Details, "42")
}
