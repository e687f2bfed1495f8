package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the whole application configuration.
// Populated from environment variables at startup; business logic only ever
// sees the typed structs, never os.Getenv.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Admin     AdminConfig
	PhonePe   PhonePeConfig
	Logistics LogisticsConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	BaseURL     string // public storefront URL, used for payment redirects

	// TaxRatePercent is applied on top of item prices. Zero means prices
	// are GST-inclusive.
	TaxRatePercent float64
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// AdminConfig secures the dashboard API.
// PasswordHash is a bcrypt hash; plaintext never lives in config.
type AdminConfig struct {
	JWTSecret        string
	PasswordHash     string
	TokenExpiryHours int
}

// =====================================================
// PHONEPE CONFIGURATION
// =====================================================

type PhonePeConfig struct {
	ClientID      string // Merchant client id
	ClientSecret  string // Secret for the OAuth token exchange
	ClientVersion int    // API client version (PhonePe dashboard)
	Environment   string // PRODUCTION or SANDBOX
	CallbackURL   string // Where the gateway sends the browser after payment
}

// =====================================================
// LOGISTICS (iThink) CONFIGURATION
// =====================================================

type LogisticsConfig struct {
	BaseURL     string // Carrier API base URL
	AccessToken string
	SecretKey   string
	PickupID    string // Registered pickup/warehouse address id
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "NPlusOne API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			BaseURL:     getEnv("APP_BASE_URL", "http://localhost:3000"),

			TaxRatePercent: getEnvFloat("ORDER_TAX_PERCENT", 0),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "nplusone"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			JWTSecret:        getEnv("ADMIN_JWT_SECRET", "change-me-in-production"),
			PasswordHash:     getEnv("ADMIN_PASSWORD_HASH", ""),
			TokenExpiryHours: getEnvInt("ADMIN_TOKEN_EXPIRY_HOURS", 12),
		},
		PhonePe: PhonePeConfig{
			ClientID:      getEnv("PHONEPE_CLIENT_ID", ""),
			ClientSecret:  getEnv("PHONEPE_CLIENT_SECRET", ""),
			ClientVersion: getEnvInt("PHONEPE_CLIENT_VERSION", 1),
			Environment:   getEnv("PHONEPE_ENV", "SANDBOX"),
			CallbackURL:   getEnv("PHONEPE_CALLBACK_URL", "http://localhost:8080/api/v1/payments/phonepe/callback"),
		},
		Logistics: LogisticsConfig{
			BaseURL:     getEnv("ITHINK_BASE_URL", "https://pre-alpha.ithinklogistics.com/api_v3"),
			AccessToken: getEnv("ITHINK_ACCESS_TOKEN", ""),
			SecretKey:   getEnv("ITHINK_SECRET_KEY", ""),
			PickupID:    getEnv("ITHINK_PICKUP_ID", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate catches config that must not reach production.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.Admin.JWTSecret == "change-me-in-production" {
			return fmt.Errorf("ADMIN_JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}

		// Gateway/carrier credentials are only warnings: the catalog API can
		// run without them, checkout cannot.
		if c.PhonePe.ClientID == "" {
			fmt.Println("WARNING: PhonePe ClientID not set - online payment will not work")
		}
		if c.Logistics.AccessToken == "" {
			fmt.Println("WARNING: iThink AccessToken not set - shipment creation will not work")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
