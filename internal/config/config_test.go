package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "5", cfg.Loan.InterestRate.String())
	assert.Equal(t, "extension", cfg.Loan.ExtensionPaymentType)
	assert.Equal(t, 15, cfg.Loan.InterestOnlyExtensionDays)
	assert.Equal(t, 5, cfg.Loan.NumberRetryLimit)
	assert.Equal(t, "0.7", cfg.Valuation.DefaultPercentage.String())
	assert.Equal(t, 30*time.Second, cfg.Reports.StatsCacheTTL)
	assert.Equal(t, 20, cfg.Reports.InventoryPageSize)
	assert.Equal(t, int64(10), cfg.Storage.MaxUploadMB)
	assert.Equal(t, 60*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "8080", cfg.HTTP.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(path, []byte("LOAN_INTEREST_RATE=3.5\nLOAN_EXTENSION_PAYMENT_TYPE=interest_only\nJWT_SECRET_KEY=from-file\n"), 0o600)
	assert.NoError(t, err)

	t.Setenv("JWT_SECRET_KEY", "from-env")
	t.Setenv("REPORTS_STATS_CACHE_TTL", "0s")

	cfg := Load(path)

	assert.Equal(t, "3.5", cfg.Loan.InterestRate.String())
	assert.Equal(t, "interest_only", cfg.Loan.ExtensionPaymentType)
	assert.Equal(t, "from-env", cfg.JWT.SecretKey)
	assert.Equal(t, time.Duration(0), cfg.Reports.StatsCacheTTL)
}

func TestLoanConfig_Validate(t *testing.T) {
	tests := []struct {
		paymentType string
		wantErr     bool
	}{
		{"extension", false},
		{"interest_only", false},
		{"full_redemption", true},
		{"", true},
		{"Extension", true},
	}

	for _, tt := range tests {
		t.Run(tt.paymentType, func(t *testing.T) {
			err := LoanConfig{ExtensionPaymentType: tt.paymentType}.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "extension or interest_only")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoad_DefaultsPassValidation(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, cfg.Loan.Validate())
}
