package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Ledger behaviour
	ReversalWindowDays int

	// System counter-account names. These accounts must exist before the
	// corresponding operations are used.
	OpeningBalancesAccount string
	ExternalFundsAccount   string
	DonationIncomeAccount  string
	ExpenseOutflowAccount  string

	// Outbox dispatch
	OutboxPollSpec  string
	OutboxBatchSize int

	// Rate limiting, e.g. "100-M" for 100 requests per minute.
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("REVERSAL_WINDOW_DAYS", 10)
	viper.SetDefault("OPENING_BALANCES_ACCOUNT", "Opening Balances")
	viper.SetDefault("EXTERNAL_FUNDS_ACCOUNT", "External Funds")
	viper.SetDefault("DONATION_INCOME_ACCOUNT", "Donation Income")
	viper.SetDefault("EXPENSE_OUTFLOW_ACCOUNT", "Expense Outflow")
	viper.SetDefault("OUTBOX_POLL_SPEC", "@every 30s")
	viper.SetDefault("OUTBOX_BATCH_SIZE", 100)
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.ReversalWindowDays = viper.GetInt("REVERSAL_WINDOW_DAYS")
	if cfg.ReversalWindowDays <= 0 {
		cfg.ReversalWindowDays = 10
		log.Printf("Warning: REVERSAL_WINDOW_DAYS must be positive. Defaulting to %d.\n", cfg.ReversalWindowDays)
	}

	cfg.OpeningBalancesAccount = viper.GetString("OPENING_BALANCES_ACCOUNT")
	cfg.ExternalFundsAccount = viper.GetString("EXTERNAL_FUNDS_ACCOUNT")
	cfg.DonationIncomeAccount = viper.GetString("DONATION_INCOME_ACCOUNT")
	cfg.ExpenseOutflowAccount = viper.GetString("EXPENSE_OUTFLOW_ACCOUNT")

	cfg.OutboxPollSpec = viper.GetString("OUTBOX_POLL_SPEC")
	cfg.OutboxBatchSize = viper.GetInt("OUTBOX_BATCH_SIZE")
	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = 100
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
