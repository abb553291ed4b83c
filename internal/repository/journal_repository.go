package repository

import (
	"context"

	"github.com/ncnwin/backoffice-api/internal/models"
	"gorm.io/gorm"
)

// JournalRepository defines the interface for journal entry data access
type JournalRepository interface {
	FindByID(ctx context.Context, id uint) (*models.JournalEntry, error)
	Create(ctx context.Context, entry *models.JournalEntry) error
	Update(ctx context.Context, entry *models.JournalEntry) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.JournalEntry, int64, error)
	FindByReference(ctx context.Context, referenceType string, referenceID uint) ([]models.JournalEntry, error)
	DeleteByReference(ctx context.Context, referenceTypes []string, referenceID uint) error
	ReplaceForReference(ctx context.Context, referenceTypes []string, referenceID uint, entries []models.JournalEntry) error
	TrialBalance(ctx context.Context, from, to string) ([]models.TrialBalanceRow, error)
	SumByTypeSide(ctx context.Context, accountType, side, from, to string) (float64, error)
	UnbalancedAmounts(ctx context.Context) (int64, error)
	PostingMismatches(ctx context.Context) ([]models.PostingMismatch, error)
}

type journalRepository struct {
	db *gorm.DB
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) FindByID(ctx context.Context, id uint) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("DebitAccount").
		Preload("CreditAccount").
		First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *journalRepository) Create(ctx context.Context, entry *models.JournalEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *journalRepository) Update(ctx context.Context, entry *models.JournalEntry) error {
	return r.db.WithContext(ctx).Omit("DebitAccount", "CreditAccount").Save(entry).Error
}

func (r *journalRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.JournalEntry{}, id).Error
}

func (r *journalRepository) List(ctx context.Context, query *ListQuery) ([]models.JournalEntry, int64, error) {
	var entries []models.JournalEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&models.JournalEntry{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("description ILIKE ?", search)
	}
	if query.Filters["from"] != "" {
		db = db.Where("entry_date >= ?", query.Filters["from"])
	}
	if query.Filters["to"] != "" {
		db = db.Where("entry_date <= ?", query.Filters["to"])
	}
	if query.Filters["account_id"] != "" {
		db = db.Where("debit_account_id = ? OR credit_account_id = ?",
			query.Filters["account_id"], query.Filters["account_id"])
	}
	if query.Filters["reference_type"] != "" {
		db = db.Where("reference_type = ?", query.Filters["reference_type"])
	}
	if query.Filters["source"] == "manual" {
		db = db.Where("reference_type IS NULL")
	} else if query.Filters["source"] == "auto" {
		db = db.Where("reference_type IS NOT NULL")
	}

	db.Count(&total)

	db = applyOrder(db, query, "entry_date DESC, id DESC")
	db = applyPagination(db, query)

	err := db.Preload("DebitAccount").Preload("CreditAccount").Find(&entries).Error
	return entries, total, err
}

func (r *journalRepository) FindByReference(ctx context.Context, referenceType string, referenceID uint) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("entry_date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *journalRepository) DeleteByReference(ctx context.Context, referenceTypes []string, referenceID uint) error {
	return r.db.WithContext(ctx).
		Where("reference_type IN ? AND reference_id = ?", referenceTypes, referenceID).
		Delete(&models.JournalEntry{}).Error
}

// ReplaceForReference atomically rebuilds the auto entries for a source
// record: every existing entry carrying one of the reference types is removed
// and the new set inserted in the same transaction. Running it twice with the
// same input leaves the same rows.
func (r *journalRepository) ReplaceForReference(ctx context.Context, referenceTypes []string, referenceID uint, entries []models.JournalEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("reference_type IN ? AND reference_id = ?", referenceTypes, referenceID).
			Delete(&models.JournalEntry{}).Error
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].ID = 0
		}
		return tx.Create(&entries).Error
	})
}

// TrialBalance sums debits and credits per account over an inclusive date
// window. Only active accounts are reported; accounts never touched by an
// entry in the window are not returned.
func (r *journalRepository) TrialBalance(ctx context.Context, from, to string) ([]models.TrialBalanceRow, error) {
	var rows []models.TrialBalanceRow

	dateFilter := "1=1"
	args := []interface{}{}
	if from != "" {
		dateFilter += " AND entry_date >= ?"
		args = append(args, from)
	}
	if to != "" {
		dateFilter += " AND entry_date <= ?"
		args = append(args, to)
	}

	query := `
		SELECT a.id AS account_id,
		       a.account_code,
		       a.account_name,
		       a.account_type,
		       COALESCE(d.total, 0) AS total_debit,
		       COALESCE(c.total, 0) AS total_credit
		FROM accounts a
		LEFT JOIN (
			SELECT debit_account_id, SUM(amount) AS total
			FROM journal_entries WHERE ` + dateFilter + `
			GROUP BY debit_account_id
		) d ON d.debit_account_id = a.id
		LEFT JOIN (
			SELECT credit_account_id, SUM(amount) AS total
			FROM journal_entries WHERE ` + dateFilter + `
			GROUP BY credit_account_id
		) c ON c.credit_account_id = a.id
		WHERE a.is_active = true
		  AND (COALESCE(d.total, 0) <> 0 OR COALESCE(c.total, 0) <> 0)
		ORDER BY a.account_code ASC`

	allArgs := append(append([]interface{}{}, args...), args...)
	err := r.db.WithContext(ctx).Raw(query, allArgs...).Scan(&rows).Error
	return rows, err
}

// SumByTypeSide totals entry amounts hitting accounts of the given type on one
// side of the entry ("debit" or "credit") over an inclusive date window.
func (r *journalRepository) SumByTypeSide(ctx context.Context, accountType, side, from, to string) (float64, error) {
	var result struct {
		Total float64
	}

	column := "debit_account_id"
	if side == "credit" {
		column = "credit_account_id"
	}

	db := r.db.WithContext(ctx).
		Model(&models.JournalEntry{}).
		Select("COALESCE(SUM(journal_entries.amount), 0) as total").
		Joins("JOIN accounts ON accounts.id = journal_entries."+column).
		Where("accounts.account_type = ?", accountType)
	if from != "" {
		db = db.Where("journal_entries.entry_date >= ?", from)
	}
	if to != "" {
		db = db.Where("journal_entries.entry_date <= ?", to)
	}

	err := db.Scan(&result).Error
	return result.Total, err
}

// UnbalancedAmounts counts entries violating the amount invariant, used by the
// nightly ledger audit.
func (r *journalRepository) UnbalancedAmounts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntry{}).
		Where("amount <= 0 OR debit_account_id = credit_account_id").
		Count(&count).Error
	return count, err
}

// PostingMismatches returns issued and paid invoices whose total differs from
// the sum of their document-tagged entries by more than the rounding
// tolerance. Payment entries carry their own reference type and are not
// counted against the document total.
func (r *journalRepository) PostingMismatches(ctx context.Context) ([]models.PostingMismatch, error) {
	var rows []models.PostingMismatch

	query := `
		SELECT d.id AS document_id,
		       d.document_number,
		       d.total_amount,
		       COALESCE(SUM(j.amount), 0) AS posted_amount
		FROM documents d
		LEFT JOIN journal_entries j
		  ON j.reference_type = ? AND j.reference_id = d.id
		WHERE d.document_type = ? AND d.status IN ?
		GROUP BY d.id, d.document_number, d.total_amount
		HAVING ABS(d.total_amount - COALESCE(SUM(j.amount), 0)) > 0.01
		ORDER BY d.id ASC`

	err := r.db.WithContext(ctx).Raw(query,
		models.ReferenceTypeDocument,
		models.DocumentTypeInvoice,
		[]string{models.DocumentStatusIssued, models.DocumentStatusPaid},
	).Scan(&rows).Error
	return rows, err
}
