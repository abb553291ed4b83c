package repository

import (
	"context"

	"github.com/ncnwin/backoffice-api/internal/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for chart-of-account data access
type AccountRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Account, error)
	FindByCode(ctx context.Context, code string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	ListActive(ctx context.Context) ([]models.Account, error)
	ListAll(ctx context.Context) ([]models.Account, error)
	CountEntries(ctx context.Context, accountID uint) (int64, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByCode(ctx context.Context, code string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("account_code = ?", code).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepository) ListActive(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("is_active = true").
		Order("account_code ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) ListAll(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Order("account_code ASC").
		Find(&accounts).Error
	return accounts, err
}

// CountEntries returns how many journal entries touch the account on either
// side.
func (r *accountRepository) CountEntries(ctx context.Context, accountID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntry{}).
		Where("debit_account_id = ? OR credit_account_id = ?", accountID, accountID).
		Count(&count).Error
	return count, err
}
