package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Remote sheet store configuration. An empty URL disables all remote
	// operations; the service then serves the local mirror read-only.
	SheetURL     string
	SheetTimeout time.Duration

	// Redis configuration (drafts and gold-rate cache)
	RedisURL      string
	RedisPassword string

	// Auth configuration
	JWTSecret         string
	AdminPasswordHash string

	// Gold price API configuration
	GoldAPIURL string
	GoldAPIKey string

	// Local sqlite mirror of the sheet
	MirrorPath string

	// Purity table (YAML); empty uses the built-in table
	PurityConfigPath string
}

// Load loads configuration from the environment, reading a .env file first
// if one is present.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		SheetURL:          getEnv("SHEET_URL", ""),
		SheetTimeout:      time.Duration(getEnvAsInt("SHEET_TIMEOUT_SECONDS", 15)) * time.Second,
		RedisURL:          getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		GoldAPIURL:        getEnv("GOLD_API_URL", "https://api.metalpriceapi.com/v1"),
		GoldAPIKey:        getEnv("GOLD_API_KEY", ""),
		MirrorPath:        getEnv("MIRROR_PATH", "ledger-mirror.db"),
		PurityConfigPath:  getEnv("PURITY_CONFIG_PATH", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}

	// The sheet URL is optional in development: the service degrades to the
	// local mirror. In production an unset URL is almost always a deploy
	// mistake, so fail fast there.
	if c.SheetURL == "" && c.IsProduction() {
		return fmt.Errorf("SHEET_URL is required in production")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
