package repository

import (
	"context"

	"github.com/ncnwin/backoffice-api/internal/models"
	"gorm.io/gorm"
)

// ExpenseRepository defines the interface for expense data access
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Expense, int64, error)
	SumByCategory(ctx context.Context, from, to string) (map[string]float64, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) FindByID(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).First(&expense, id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, id).Error
}

func (r *expenseRepository) List(ctx context.Context, query *ListQuery) ([]models.Expense, int64, error) {
	var expenses []models.Expense
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Expense{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("vendor ILIKE ? OR description ILIKE ?", search, search)
	}
	if query.Filters["category"] != "" {
		db = db.Where("category = ?", query.Filters["category"])
	}
	if query.Filters["from"] != "" {
		db = db.Where("date >= ?", query.Filters["from"])
	}
	if query.Filters["to"] != "" {
		db = db.Where("date <= ?", query.Filters["to"])
	}

	db.Count(&total)

	db = applyOrder(db, query, "date DESC, id DESC")
	db = applyPagination(db, query)

	err := db.Find(&expenses).Error
	return expenses, total, err
}

// SumByCategory totals expenses per category over an inclusive date range.
func (r *expenseRepository) SumByCategory(ctx context.Context, from, to string) (map[string]float64, error) {
	var rows []struct {
		Category string
		Total    float64
	}

	db := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) as total").
		Group("category")
	if from != "" {
		db = db.Where("date >= ?", from)
	}
	if to != "" {
		db = db.Where("date <= ?", to)
	}

	if err := db.Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.Category] = row.Total
	}
	return totals, nil
}
