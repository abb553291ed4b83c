package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/ncnwin/backoffice-api/internal/models"
	"github.com/ncnwin/backoffice-api/internal/repository"
	"github.com/ncnwin/backoffice-api/pkg/logger"
	"gorm.io/gorm"
)

// balanceTolerance is the largest acceptable gap between the two sides of the
// balance sheet before it is flagged as unbalanced.
const balanceTolerance = 0.01

// AccountingService handles the chart of accounts, manual journal entries and
// financial statements.
type AccountingService struct {
	accountRepo repository.AccountRepository
	journalRepo repository.JournalRepository
	auditSvc    *AuditService
}

// NewAccountingService creates a new accounting service
func NewAccountingService(accountRepo repository.AccountRepository, journalRepo repository.JournalRepository, auditSvc *AuditService) *AccountingService {
	return &AccountingService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		auditSvc:    auditSvc,
	}
}

// ListAccounts returns the chart of accounts ordered by code. Retired
// accounts are included only on request.
func (s *AccountingService) ListAccounts(ctx context.Context, includeInactive bool) ([]models.Account, error) {
	if includeInactive {
		return s.accountRepo.ListAll(ctx)
	}
	return s.accountRepo.ListActive(ctx)
}

// CreateAccountInput carries the fields for a new account.
type CreateAccountInput struct {
	Code string `json:"account_code" binding:"required"`
	Name string `json:"account_name" binding:"required"`
	Type string `json:"account_type" binding:"required"`
}

// CreateAccount adds an account to the chart.
func (s *AccountingService) CreateAccount(ctx context.Context, input CreateAccountInput, userID uint) (*models.Account, error) {
	if !models.ValidAccountType(input.Type) {
		return nil, fmt.Errorf("%w: 無効な勘定科目区分です: %s", ErrValidation, input.Type)
	}
	if _, err := s.accountRepo.FindByCode(ctx, input.Code); err == nil {
		return nil, fmt.Errorf("%w: 勘定科目コード %s は既に使用されています", ErrValidation, input.Code)
	}

	account := &models.Account{
		Code:   input.Code,
		Name:   input.Name,
		Type:   input.Type,
		Active: true,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "create", "account", account.ID, fmt.Sprintf("%s %s", account.Code, account.Name), "")
	return account, nil
}

// DeactivateAccount retires an account. Accounts referenced by journal entries
// are deactivated rather than deleted so history stays intact.
func (s *AccountingService) DeactivateAccount(ctx context.Context, id uint, userID uint) error {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	account.Active = false
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	entryCount, err := s.accountRepo.CountEntries(ctx, account.ID)
	if err != nil {
		entryCount = 0
	}

	s.auditSvc.Log(ctx, userID, "update", "account", account.ID,
		fmt.Sprintf("deactivated (%d journal entries)", entryCount), "")
	return nil
}

// CreateEntryInput carries the fields for a manual journal entry.
type CreateEntryInput struct {
	EntryDate       time.Time `json:"entry_date" binding:"required"`
	Description     string    `json:"description"`
	DebitAccountID  uint      `json:"debit_account_id" binding:"required"`
	CreditAccountID uint      `json:"credit_account_id" binding:"required"`
	Amount          float64   `json:"amount" binding:"required"`
	Notes           *string   `json:"notes"`
}

// CreateEntry records a manual journal entry. Manual entries never carry a
// reference pair; that namespace belongs to the auto-posting engine.
func (s *AccountingService) CreateEntry(ctx context.Context, input CreateEntryInput, userID uint) (*models.JournalEntry, error) {
	if err := s.validateEntry(ctx, input); err != nil {
		return nil, err
	}

	entry := &models.JournalEntry{
		EntryDate:       input.EntryDate,
		Description:     input.Description,
		DebitAccountID:  input.DebitAccountID,
		CreditAccountID: input.CreditAccountID,
		Amount:          input.Amount,
		Notes:           input.Notes,
		CreatedBy:       userID,
	}
	if err := s.journalRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "create", "journal_entry", entry.ID, entry.Description, "")
	return s.journalRepo.FindByID(ctx, entry.ID)
}

// UpdateEntry modifies a manual journal entry. System-generated entries are
// immutable through this path.
func (s *AccountingService) UpdateEntry(ctx context.Context, id uint, input CreateEntryInput, userID uint) (*models.JournalEntry, error) {
	entry, err := s.journalRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if entry.IsSystemGenerated() {
		return nil, ErrSystemEntry
	}
	if err := s.validateEntry(ctx, input); err != nil {
		return nil, err
	}

	entry.EntryDate = input.EntryDate
	entry.Description = input.Description
	entry.DebitAccountID = input.DebitAccountID
	entry.CreditAccountID = input.CreditAccountID
	entry.Amount = input.Amount
	entry.Notes = input.Notes
	if err := s.journalRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "update", "journal_entry", entry.ID, entry.Description, "")
	return s.journalRepo.FindByID(ctx, entry.ID)
}

// DeleteEntry removes a manual journal entry. Entries produced by the
// auto-posting engine can only disappear with their source record.
func (s *AccountingService) DeleteEntry(ctx context.Context, id uint, userID uint) error {
	entry, err := s.journalRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if entry.IsSystemGenerated() {
		return ErrSystemEntry
	}

	if err := s.journalRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, userID, "delete", "journal_entry", id, entry.Description, "")
	return nil
}

// GetEntry returns one journal entry with its accounts.
func (s *AccountingService) GetEntry(ctx context.Context, id uint) (*models.JournalEntry, error) {
	entry, err := s.journalRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

// ListEntries returns journal entries matching the query.
func (s *AccountingService) ListEntries(ctx context.Context, query *repository.ListQuery) ([]models.JournalEntry, int64, error) {
	return s.journalRepo.List(ctx, query)
}

// TrialBalance returns per-account debit and credit totals over the window.
func (s *AccountingService) TrialBalance(ctx context.Context, from, to string) ([]models.TrialBalanceRow, error) {
	return s.journalRepo.TrialBalance(ctx, from, to)
}

// ProfitAndLoss computes the income statement over the window. Revenue is the
// net credit balance of revenue accounts; expenses are the net debit balance
// of expense accounts.
func (s *AccountingService) ProfitAndLoss(ctx context.Context, from, to string) (*models.ProfitAndLoss, error) {
	revenueCredit, err := s.journalRepo.SumByTypeSide(ctx, models.AccountTypeRevenue, "credit", from, to)
	if err != nil {
		return nil, err
	}
	revenueDebit, err := s.journalRepo.SumByTypeSide(ctx, models.AccountTypeRevenue, "debit", from, to)
	if err != nil {
		return nil, err
	}
	expenseDebit, err := s.journalRepo.SumByTypeSide(ctx, models.AccountTypeExpense, "debit", from, to)
	if err != nil {
		return nil, err
	}
	expenseCredit, err := s.journalRepo.SumByTypeSide(ctx, models.AccountTypeExpense, "credit", from, to)
	if err != nil {
		return nil, err
	}

	pl := &models.ProfitAndLoss{
		Revenue:  revenueCredit - revenueDebit,
		Expenses: expenseDebit - expenseCredit,
	}
	pl.NetIncome = pl.Revenue - pl.Expenses
	return pl, nil
}

// BalanceSheet computes net positions as of a date. Retained earnings (the
// accumulated net income) are folded into equity so the accounting identity
// assets = liabilities + equity holds for balanced books.
func (s *AccountingService) BalanceSheet(ctx context.Context, asOf string) (*models.BalanceSheet, error) {
	assets, err := s.netBalance(ctx, models.AccountTypeAsset, true, asOf)
	if err != nil {
		return nil, err
	}
	liabilities, err := s.netBalance(ctx, models.AccountTypeLiability, false, asOf)
	if err != nil {
		return nil, err
	}
	equity, err := s.netBalance(ctx, models.AccountTypeEquity, false, asOf)
	if err != nil {
		return nil, err
	}

	pl, err := s.ProfitAndLoss(ctx, "", asOf)
	if err != nil {
		return nil, err
	}
	equity += pl.NetIncome

	sheet := &models.BalanceSheet{
		Assets:      assets,
		Liabilities: liabilities,
		Equity:      equity,
	}
	sheet.Difference = assets - (liabilities + equity)
	sheet.Balanced = math.Abs(sheet.Difference) <= balanceTolerance
	return sheet, nil
}

// netBalance nets the two sides for one account type up to the given date.
// Debit-normal types subtract credits from debits; credit-normal types the
// reverse.
func (s *AccountingService) netBalance(ctx context.Context, accountType string, debitNormal bool, asOf string) (float64, error) {
	debit, err := s.journalRepo.SumByTypeSide(ctx, accountType, "debit", "", asOf)
	if err != nil {
		return 0, err
	}
	credit, err := s.journalRepo.SumByTypeSide(ctx, accountType, "credit", "", asOf)
	if err != nil {
		return 0, err
	}
	if debitNormal {
		return debit - credit, nil
	}
	return credit - debit, nil
}

// AuditLedger checks the books for consistency debt: entries violating the
// amount invariants, invoices whose total disagrees with the sum of their
// tagged entries, and an unbalanced balance sheet. Run nightly by the
// background worker; each finding is logged and reported, and any finding
// makes the job fail so the scheduler surfaces it too.
func (s *AccountingService) AuditLedger(ctx context.Context) error {
	var findings []string

	bad, err := s.journalRepo.UnbalancedAmounts(ctx)
	if err != nil {
		return err
	}
	if bad > 0 {
		finding := fmt.Sprintf("%d journal entries violate amount invariants", bad)
		logger.Error("ledger audit found invalid entries", "count", bad)
		sentry.CaptureException(fmt.Errorf("ledger audit: %s", finding))
		findings = append(findings, finding)
	}

	mismatches, err := s.journalRepo.PostingMismatches(ctx)
	if err != nil {
		return err
	}
	for _, m := range mismatches {
		finding := fmt.Sprintf("document %s total %.2f but posted %.2f", m.DocumentNumber, m.TotalAmount, m.PostedAmount)
		logger.Error("ledger audit found posting mismatch",
			"document_id", m.DocumentID,
			"document_number", m.DocumentNumber,
			"total_amount", m.TotalAmount,
			"posted_amount", m.PostedAmount)
		sentry.CaptureException(fmt.Errorf("ledger audit: %s", finding))
		findings = append(findings, finding)
	}

	sheet, err := s.BalanceSheet(ctx, "")
	if err != nil {
		return err
	}
	if !sheet.Balanced {
		finding := fmt.Sprintf("balance sheet off by %.2f", sheet.Difference)
		logger.Error("ledger audit found unbalanced books", "difference", sheet.Difference)
		sentry.CaptureException(fmt.Errorf("ledger audit: %s", finding))
		findings = append(findings, finding)
	}

	if len(findings) > 0 {
		return fmt.Errorf("ledger audit: %s", strings.Join(findings, "; "))
	}
	return nil
}

func (s *AccountingService) validateEntry(ctx context.Context, input CreateEntryInput) error {
	if input.Amount <= 0 {
		return fmt.Errorf("%w: 金額は0より大きい必要があります", ErrValidation)
	}
	if input.DebitAccountID == input.CreditAccountID {
		return fmt.Errorf("%w: 借方と貸方に同じ勘定科目は指定できません", ErrValidation)
	}

	for _, id := range []uint{input.DebitAccountID, input.CreditAccountID} {
		account, err := s.accountRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: 勘定科目が見つかりません: id=%d", ErrValidation, id)
			}
			return err
		}
		if !account.Active {
			return fmt.Errorf("%w: 勘定科目 %s は無効化されています", ErrValidation, account.Name)
		}
	}
	return nil
}
