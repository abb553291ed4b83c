package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/backoffice_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
	assert.Equal(t, 5, cfg.WorkerCount)
	assert.NotEmpty(t, cfg.JWTSecret)

	assert.Equal(t, "1000", cfg.Accounts.Cash)
	assert.Equal(t, "1100", cfg.Accounts.Receivable)
	assert.Equal(t, "2000", cfg.Accounts.Payable)
	assert.Equal(t, "4000", cfg.Accounts.Revenue)
	assert.Equal(t, "5000", cfg.Accounts.Purchases)
	assert.Equal(t, "1200", cfg.Accounts.InventoryAsset)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RequiresJWTSecretInProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/backoffice_test")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsEmptyAccountCode(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/backoffice_test")
	t.Setenv("ACCOUNT_CODE_REVENUE", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_CustomAccountCodes(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/backoffice_test")
	t.Setenv("ACCOUNT_CODE_CASH", "1010")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1010", cfg.Accounts.Cash)
	assert.Equal(t, "1010", cfg.Accounts.Codes()["cash"])
}

func TestAccountRolesCodes(t *testing.T) {
	roles := AccountRoles{
		Cash:           "1000",
		Receivable:     "1100",
		Payable:        "2000",
		Revenue:        "4000",
		Purchases:      "5000",
		InventoryAsset: "1200",
	}

	codes := roles.Codes()
	assert.Len(t, codes, 6)
	assert.Equal(t, "1200", codes["inventory_asset"])
}
