package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP      HTTPConfig
	JWT       JWTConfig
	Loan      LoanConfig
	Valuation ValuationConfig
	Reports   ReportsConfig
	Storage   StorageConfig
	Log       LogConfig
}

type HTTPConfig struct {
	Port            string
	RequestTimeout  time.Duration
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

type LoanConfig struct {
	InterestRate              decimal.Decimal
	ExtensionPaymentType      string
	InterestOnlyExtensionDays int
	NumberRetryLimit          int
}

// Validate rejects extension payment types the ledger cannot record for an
// extension payment.
func (c LoanConfig) Validate() error {
	switch c.ExtensionPaymentType {
	case "extension", "interest_only":
		return nil
	}
	return fmt.Errorf("extension payment type %q must be extension or interest_only", c.ExtensionPaymentType)
}

type ValuationConfig struct {
	DefaultPercentage decimal.Decimal
}

type ReportsConfig struct {
	StatsCacheTTL     time.Duration
	InventoryPageSize int
}

type StorageConfig struct {
	Root         string
	PublicPrefix string
	MaxUploadMB  int64
}

type LogConfig struct {
	Level  string
	Format string
}

var envBindings = map[string]string{
	"database.host":     "DATABASE_HOST",
	"database.port":     "DATABASE_PORT",
	"database.user":     "DATABASE_USER",
	"database.password": "DATABASE_PASSWORD",
	"database.name":     "DATABASE_NAME",
	"database.ssl_mode": "DATABASE_SSL_MODE",

	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",

	"jwt.secret_key":   "JWT_SECRET_KEY",
	"jwt.expiry_hours": "JWT_EXPIRY_HOURS",

	"http.port":            "PORT",
	"http.request_timeout": "HTTP_REQUEST_TIMEOUT",
	"http.allowed_origins": "HTTP_ALLOWED_ORIGINS",

	"loan.interest_rate":                "LOAN_INTEREST_RATE",
	"loan.extension_payment_type":       "LOAN_EXTENSION_PAYMENT_TYPE",
	"loan.interest_only_extension_days": "LOAN_INTEREST_ONLY_EXTENSION_DAYS",
	"loan.number_retry_limit":           "LOAN_NUMBER_RETRY_LIMIT",

	"valuation.default_percentage": "VALUATION_DEFAULT_PERCENTAGE",

	"reports.stats_cache_ttl":     "REPORTS_STATS_CACHE_TTL",
	"reports.inventory_page_size": "REPORTS_INVENTORY_PAGE_SIZE",

	"storage.root":          "STORAGE_ROOT",
	"storage.public_prefix": "STORAGE_PUBLIC_PREFIX",
	"storage.max_upload_mb": "STORAGE_MAX_UPLOAD_MB",

	"log.level":  "LOG_LEVEL",
	"log.format": "LOG_FORMAT",
}

func setDefaults() {
	viper.SetDefault("jwt.expiry_hours", 24)

	viper.SetDefault("http.port", "8080")
	viper.SetDefault("http.request_timeout", 60*time.Second)
	viper.SetDefault("http.allowed_origins", []string{"https://*", "http://*"})
	viper.SetDefault("http.shutdown_timeout", 30*time.Second)

	viper.SetDefault("loan.interest_rate", "5")
	viper.SetDefault("loan.extension_payment_type", "extension")
	viper.SetDefault("loan.interest_only_extension_days", 15)
	viper.SetDefault("loan.number_retry_limit", 5)

	viper.SetDefault("valuation.default_percentage", "0.70")

	viper.SetDefault("reports.stats_cache_ttl", 30*time.Second)
	viper.SetDefault("reports.inventory_page_size", 20)

	viper.SetDefault("storage.root", "./storage")
	viper.SetDefault("storage.public_prefix", "/storage")
	viper.SetDefault("storage.max_upload_mb", 10)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

// Load reads the .env file at path (if present), lets environment variables
// override it and returns the typed configuration.
func Load(path string) *Config {
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	for key, env := range envBindings {
		viper.BindEnv(key, env)
	}
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("[CONFIG] Config file not found, using defaults: %v", err)
	}

	// .env keys arrive flattened (LOAN_INTEREST_RATE -> loan_interest_rate);
	// lift them onto their dotted keys. Real environment variables still win
	// because AutomaticEnv resolves the flattened key from the environment first.
	for key, env := range envBindings {
		if flat := strings.ToLower(env); viper.IsSet(flat) {
			viper.Set(key, viper.Get(flat))
		}
	}

	return &Config{
		HTTP: HTTPConfig{
			Port:            viper.GetString("http.port"),
			RequestTimeout:  viper.GetDuration("http.request_timeout"),
			AllowedOrigins:  viper.GetStringSlice("http.allowed_origins"),
			ShutdownTimeout: viper.GetDuration("http.shutdown_timeout"),
		},
		JWT: JWTConfig{
			SecretKey:   viper.GetString("jwt.secret_key"),
			ExpiryHours: viper.GetInt("jwt.expiry_hours"),
		},
		Loan: LoanConfig{
			InterestRate:              getDecimal("loan.interest_rate", "5"),
			ExtensionPaymentType:      viper.GetString("loan.extension_payment_type"),
			InterestOnlyExtensionDays: viper.GetInt("loan.interest_only_extension_days"),
			NumberRetryLimit:          viper.GetInt("loan.number_retry_limit"),
		},
		Valuation: ValuationConfig{
			DefaultPercentage: getDecimal("valuation.default_percentage", "0.70"),
		},
		Reports: ReportsConfig{
			StatsCacheTTL:     viper.GetDuration("reports.stats_cache_ttl"),
			InventoryPageSize: viper.GetInt("reports.inventory_page_size"),
		},
		Storage: StorageConfig{
			Root:         viper.GetString("storage.root"),
			PublicPrefix: viper.GetString("storage.public_prefix"),
			MaxUploadMB:  viper.GetInt64("storage.max_upload_mb"),
		},
		Log: LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}
}

func getDecimal(key, fallback string) decimal.Decimal {
	d, err := decimal.NewFromString(viper.GetString(key))
	if err != nil {
		log.Printf("[CONFIG] Invalid decimal for %s, using %s: %v", key, fallback, err)
		return decimal.RequireFromString(fallback)
	}
	return d
}
