package database

import (
	"fmt"
	"os"
	"time"

	"github.com/ncnwin/backoffice-api/internal/models"
	pkgLogger "github.com/ncnwin/backoffice-api/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string) (*gorm.DB, error) {
	// Configure GORM logger
	logLevel := logger.Silent
	if os.Getenv("ENVIRONMENT") != "production" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
	)

	// Open database connection
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the database schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.CustomerContact{},
		&models.Supplier{},
		&models.SupplierContact{},
		&models.Document{},
		&models.DocumentItem{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
		&models.Account{},
		&models.JournalEntry{},
		&models.InventoryItem{},
		&models.InventoryMovement{},
		&models.StockAlert{},
		&models.Expense{},
		&models.AuditLog{},
	)
}

// defaultChart is the chart of accounts created on first run. Accounts are
// never deleted afterwards, only deactivated, because journal entries keep
// long-lived references to them.
var defaultChart = []models.Account{
	{Code: "1000", Name: "現金", Type: models.AccountTypeAsset},
	{Code: "1100", Name: "売掛金", Type: models.AccountTypeAsset},
	{Code: "1200", Name: "棚卸資産", Type: models.AccountTypeAsset},
	{Code: "2000", Name: "買掛金", Type: models.AccountTypeLiability},
	{Code: "3000", Name: "資本金", Type: models.AccountTypeEquity},
	{Code: "4000", Name: "売上高", Type: models.AccountTypeRevenue},
	{Code: "5000", Name: "仕入高", Type: models.AccountTypeExpense},
	{Code: "6000", Name: "給料", Type: models.AccountTypeExpense},
	{Code: "7000", Name: "地代家賃", Type: models.AccountTypeExpense},
}

// SeedChartOfAccounts inserts the default chart of accounts when the accounts
// table is empty.
func SeedChartOfAccounts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Account{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range defaultChart {
		defaultChart[i].Active = true
	}
	if err := db.Create(&defaultChart).Error; err != nil {
		return fmt.Errorf("failed to seed chart of accounts: %w", err)
	}
	pkgLogger.Info("Seeded default chart of accounts", "accounts", len(defaultChart))
	return nil
}
