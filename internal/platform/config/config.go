package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// ManagerPostLimit is the journal amount up to which managers can post
	// without approval and managers can approve. Above it, finance-lead or
	// admin involvement is required.
	ManagerPostLimit decimal.Decimal

	// Rate limiting, expressed in ulule/limiter format, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "ledger-engine")
	viper.SetDefault("MANAGER_POST_LIMIT", "10000")
	viper.SetDefault("RATE_LIMIT", "300-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	limitStr := viper.GetString("MANAGER_POST_LIMIT")
	limit, err := decimal.NewFromString(limitStr)
	if err != nil || limit.IsNegative() {
		limit = decimal.NewFromInt(10000)
		log.Printf("Warning: Invalid value for MANAGER_POST_LIMIT ('%s'). Defaulting to %s.\n", limitStr, limit.String())
	}
	cfg.ManagerPostLimit = limit

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
