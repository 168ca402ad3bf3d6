package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Common
	Environment string
	LogLevel    string

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Factor evaluation
	Factors FactorsConfig
}

// DatabaseConfig holds bar store configuration
type DatabaseConfig struct {
	Driver          string // "postgres" or "sqlite3"
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	Path            string // sqlite3 database file
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// FactorsConfig holds factor evaluation configuration
type FactorsConfig struct {
	HealthCheckPort int
	Names           []string // empty means every registered factor
	Universe        []string
	StartDate       time.Time
	EndDate         time.Time
	Workers         int
	PublishEnabled  bool
	PublishPrefix   string
	PublishChannel  string
	PublishTTL      time.Duration
	CacheEnabled    bool
	CacheTTL        time.Duration
}

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	today := time.Now().UTC().Truncate(24 * time.Hour)

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "stock_factors"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			Path:            getEnv("DB_PATH", "bars.db"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			MaxRetries:      getEnvAsInt("DB_MAX_RETRIES", 3),
			RetryDelay:      getEnvAsDuration("DB_RETRY_DELAY", 100*time.Millisecond),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Factors: FactorsConfig{
			HealthCheckPort: getEnvAsInt("FACTORS_HEALTH_PORT", 8095),
			Names:           getEnvAsStringSlice("FACTORS_NAMES", []string{}),
			Universe:        getEnvAsStringSlice("FACTORS_UNIVERSE", []string{}),
			StartDate:       getEnvAsDate("FACTORS_START_DATE", today),
			EndDate:         getEnvAsDate("FACTORS_END_DATE", today),
			Workers:         getEnvAsInt("FACTORS_WORKERS", 4),
			PublishEnabled:  getEnvAsBool("FACTORS_PUBLISH_ENABLED", true),
			PublishPrefix:   getEnv("FACTORS_PUBLISH_PREFIX", "factor:"),
			PublishChannel:  getEnv("FACTORS_PUBLISH_CHANNEL", "factors.updated"),
			PublishTTL:      getEnvAsDuration("FACTORS_PUBLISH_TTL", 24*time.Hour),
			CacheEnabled:    getEnvAsBool("FACTORS_CACHE_ENABLED", true),
			CacheTTL:        getEnvAsDuration("FACTORS_CACHE_TTL", 10*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
	case "sqlite3":
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for sqlite3")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite3, got %q", c.Database.Driver)
	}
	if (c.Factors.PublishEnabled || c.Factors.CacheEnabled) && c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if len(c.Factors.Universe) == 0 {
		return fmt.Errorf("FACTORS_UNIVERSE must contain at least one symbol")
	}
	if c.Factors.EndDate.Before(c.Factors.StartDate) {
		return fmt.Errorf("FACTORS_END_DATE must not be before FACTORS_START_DATE")
	}
	if c.Factors.Workers < 1 {
		return fmt.Errorf("FACTORS_WORKERS must be at least 1")
	}
	return nil
}

// DSN returns the database/sql data source name for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite3" {
		return d.Path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// Addr returns the Redis host:port address
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getEnvAsDate parses a YYYY-MM-DD value as midnight UTC
func getEnvAsDate(key string, defaultValue time.Time) time.Time {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return defaultValue
	}
	return date
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Split by comma and trim spaces
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
