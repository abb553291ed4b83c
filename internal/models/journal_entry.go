package models

import (
	"time"
)

// JournalEntry is a single double-entry bookkeeping record: one debit account,
// one credit account, a positive amount. Entries carrying a reference pair are
// system-generated by the auto-posting engine and may only be replaced by it;
// entries without a reference are manual and user-owned.
type JournalEntry struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EntryDate       time.Time `gorm:"type:date;not null;index" json:"entry_date"`
	Description     string    `json:"description"`
	DebitAccountID  uint      `gorm:"not null;index" json:"debit_account_id"`
	CreditAccountID uint      `gorm:"not null;index" json:"credit_account_id"`
	Amount          float64   `gorm:"not null" json:"amount"`
	ReferenceType   *string   `gorm:"index:idx_journal_reference" json:"reference_type"`
	ReferenceID     *uint     `gorm:"index:idx_journal_reference" json:"reference_id"`
	Notes           *string   `json:"notes"`
	CreatedBy       uint      `gorm:"index" json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`

	// Associations
	DebitAccount  Account `gorm:"foreignKey:DebitAccountID" json:"debit_account,omitempty"`
	CreditAccount Account `gorm:"foreignKey:CreditAccountID" json:"credit_account,omitempty"`
}

// TableName specifies the table name for JournalEntry
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// Reference type constants tag auto entries with their originating event.
const (
	ReferenceTypeDocument          = "document"
	ReferenceTypeDocumentPayment   = "document_payment"
	ReferenceTypePurchaseOrder     = "purchase_order"
	ReferenceTypeInventoryMovement = "inventory_movement"
)

// IsSystemGenerated reports whether the entry was produced by the auto-posting
// engine. Such entries must never be edited or deleted directly by a user.
func (e *JournalEntry) IsSystemGenerated() bool {
	return e.ReferenceType != nil
}

// HasValidReference reports whether the reference pair is either fully present
// or fully absent. A mixed pair is invalid.
func (e *JournalEntry) HasValidReference() bool {
	return (e.ReferenceType == nil) == (e.ReferenceID == nil)
}

// JournalEntryResponse is the JSON response format for journal entries
type JournalEntryResponse struct {
	ID                uint      `json:"id"`
	EntryDate         time.Time `json:"entry_date"`
	Description       string    `json:"description"`
	DebitAccountID    uint      `json:"debit_account_id"`
	DebitAccountCode  string    `json:"debit_account_code,omitempty"`
	DebitAccountName  string    `json:"debit_account_name,omitempty"`
	CreditAccountID   uint      `json:"credit_account_id"`
	CreditAccountCode string    `json:"credit_account_code,omitempty"`
	CreditAccountName string    `json:"credit_account_name,omitempty"`
	Amount            float64   `json:"amount"`
	ReferenceType     *string   `json:"reference_type"`
	ReferenceID       *uint     `json:"reference_id"`
	Notes             *string   `json:"notes"`
	EntrySource       string    `json:"entry_source"`
	CreatedAt         time.Time `json:"created_at"`
}

// ToResponse converts JournalEntry to JournalEntryResponse
func (e *JournalEntry) ToResponse() JournalEntryResponse {
	resp := JournalEntryResponse{
		ID:              e.ID,
		EntryDate:       e.EntryDate,
		Description:     e.Description,
		DebitAccountID:  e.DebitAccountID,
		CreditAccountID: e.CreditAccountID,
		Amount:          e.Amount,
		ReferenceType:   e.ReferenceType,
		ReferenceID:     e.ReferenceID,
		Notes:           e.Notes,
		EntrySource:     "manual",
		CreatedAt:       e.CreatedAt,
	}
	if e.IsSystemGenerated() {
		resp.EntrySource = "auto"
	}
	if e.DebitAccount.ID != 0 {
		resp.DebitAccountCode = e.DebitAccount.Code
		resp.DebitAccountName = e.DebitAccount.Name
	}
	if e.CreditAccount.ID != 0 {
		resp.CreditAccountCode = e.CreditAccount.Code
		resp.CreditAccountName = e.CreditAccount.Name
	}
	return resp
}

// TrialBalanceRow is one row of the trial balance: total debits and credits
// per account over the requested window. Accounts with no activity are
// omitted.
type TrialBalanceRow struct {
	AccountID   uint    `json:"id"`
	AccountCode string  `json:"account_code"`
	AccountName string  `json:"account_name"`
	AccountType string  `json:"category"`
	TotalDebit  float64 `json:"total_debit"`
	TotalCredit float64 `json:"total_credit"`
}

// PostingMismatch reports an issued or paid invoice whose total disagrees
// with the sum of its tagged journal entries. Found by the nightly ledger
// audit; each row means a posting run was skipped or left stale.
type PostingMismatch struct {
	DocumentID     uint    `json:"document_id"`
	DocumentNumber string  `json:"document_number"`
	TotalAmount    float64 `json:"total_amount"`
	PostedAmount   float64 `json:"posted_amount"`
}

// ProfitAndLoss is the income statement over a date window.
type ProfitAndLoss struct {
	Revenue   float64 `json:"revenue"`
	Expenses  float64 `json:"expenses"`
	NetIncome float64 `json:"net_income"`
}

// BalanceSheet reports net balances per account type as of a date. Assets are
// debit-normal; liabilities and equity are credit-normal. Balanced is false
// when assets differ from liabilities+equity by more than 0.01.
type BalanceSheet struct {
	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`
	Equity      float64 `json:"equity"`
	Balanced    bool    `json:"balanced"`
	Difference  float64 `json:"difference"`
}
