package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// Storage (expense receipt uploads)
	StoragePath string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string

	// Chart of accounts role mapping used by the auto-posting engine
	Accounts AccountRoles
}

// AccountRoles maps the bookkeeping roles the auto-posting engine depends on
// to account codes in the chart of accounts. Validated at startup so a missing
// role is a configuration error rather than a silent runtime skip.
type AccountRoles struct {
	Cash           string
	Receivable     string
	Payable        string
	Revenue        string
	Purchases      string
	InventoryAsset string
}

// Codes returns the role→code mapping for validation and logging.
func (r AccountRoles) Codes() map[string]string {
	return map[string]string{
		"cash":            r.Cash,
		"receivable":      r.Receivable,
		"payable":         r.Payable,
		"revenue":         r.Revenue,
		"purchases":       r.Purchases,
		"inventory_asset": r.InventoryAsset,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		WorkerCount:        getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins:     getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		Accounts: AccountRoles{
			Cash:           getEnv("ACCOUNT_CODE_CASH", "1000"),
			Receivable:     getEnv("ACCOUNT_CODE_RECEIVABLE", "1100"),
			Payable:        getEnv("ACCOUNT_CODE_PAYABLE", "2000"),
			Revenue:        getEnv("ACCOUNT_CODE_REVENUE", "4000"),
			Purchases:      getEnv("ACCOUNT_CODE_PURCHASES", "5000"),
			InventoryAsset: getEnv("ACCOUNT_CODE_INVENTORY", "1200"),
		},
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	for role, code := range cfg.Accounts.Codes() {
		if code == "" {
			return nil, fmt.Errorf("account code for role %q must not be empty", role)
		}
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
