package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Admin     AdminConfig
	Razorpay  RazorpayConfig
	Checkout  CheckoutConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Catalog   CatalogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AdminConfig holds the back-office authentication configuration.
type AdminConfig struct {
	APIKey string
}

// RazorpayConfig holds payment gateway credentials. The webhook secret is
// distinct from the API key secret and signs webhook bodies only.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
}

// CheckoutConfig holds pricing rules. All amounts are integer paise.
type CheckoutConfig struct {
	FreeShippingThreshold int64 // subtotal at or above this ships free
	ShippingCharge        int64 // flat charge below the threshold
	CODCharge             int64 // surcharge added to COD orders
	CODMinimum            int64 // minimum subtotal to allow COD
}

// RateLimitConfig holds fixed-window rate limiter settings.
type RateLimitConfig struct {
	Enabled       bool
	Requests      int
	WindowSeconds int
}

// RedisConfig holds the shared counter store used by the rate limiter. When
// disabled, the limiter falls back to process-local state.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// CatalogConfig holds product feed import configuration.
type CatalogConfig struct {
	S3Enabled bool
	Bucket    string
	Region    string
	FeedKey   string // S3 key of the gzipped product feed
	FeedPath  string // local fallback path
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "luxe"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Admin: AdminConfig{
			APIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Razorpay: RazorpayConfig{
			KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
			BaseURL:       getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		},
		Checkout: CheckoutConfig{
			FreeShippingThreshold: getEnvAsInt64("FREE_SHIPPING_THRESHOLD", 49900),
			ShippingCharge:        getEnvAsInt64("SHIPPING_CHARGE", 4900),
			CODCharge:             getEnvAsInt64("COD_CHARGE", 30000),
			CODMinimum:            getEnvAsInt64("COD_MINIMUM", 50000),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 60),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Catalog: CatalogConfig{
			S3Enabled: getEnvAsBool("CATALOG_S3_ENABLED", false),
			Bucket:    getEnv("CATALOG_S3_BUCKET", ""),
			Region:    getEnv("CATALOG_S3_REGION", "ap-south-1"),
			FeedKey:   getEnv("CATALOG_FEED_KEY", "feeds/products.jsonl.gz"),
			FeedPath:  getEnv("CATALOG_FEED_PATH", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Admin.APIKey == "" {
		return fmt.Errorf("admin API key is required")
	}

	if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
		return fmt.Errorf("razorpay key id and secret are required")
	}

	if c.Razorpay.WebhookSecret == "" {
		return fmt.Errorf("razorpay webhook secret is required")
	}

	if c.Checkout.FreeShippingThreshold < 0 || c.Checkout.ShippingCharge < 0 ||
		c.Checkout.CODCharge < 0 || c.Checkout.CODMinimum < 0 {
		return fmt.Errorf("checkout amounts must be non-negative")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Requests < 1 {
			return fmt.Errorf("rate limit requests must be at least 1")
		}
		if c.RateLimit.WindowSeconds < 1 {
			return fmt.Errorf("rate limit window must be at least 1 second")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Catalog.S3Enabled {
		if c.Catalog.Bucket == "" {
			return fmt.Errorf("catalog S3 bucket is required when S3 feed import is enabled")
		}
		if c.Catalog.Region == "" {
			return fmt.Errorf("catalog S3 region is required when S3 feed import is enabled")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as an int64 or returns a default value.
func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
