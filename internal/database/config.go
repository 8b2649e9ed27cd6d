package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config holds database configuration
type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Path is the database file for the sqlite driver.
	Path string

	// MigrationsPath is the golang-migrate source directory for postgres.
	MigrationsPath string
}

// NewConfig creates a new database configuration
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, we'll use defaults or environment variables
		fmt.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Driver:         getEnv("DB_DRIVER", DriverPostgres),
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", "ledger"),
		Password:       getEnv("DB_PASSWORD", "ledger"),
		DBName:         getEnv("DB_NAME", "ledger"),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		Path:           getEnv("DB_PATH", "ledger.db"),
		MigrationsPath: getEnv("DB_MIGRATIONS", "migrations"),
	}

	switch cfg.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	return cfg, nil
}

// DSN returns the driver-specific connection string
func (c *Config) DSN() string {
	switch c.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case DriverSQLite:
		return fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", c.Path)
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
}

// MigrateURL returns the golang-migrate database URL for postgres.
func (c *Config) MigrateURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
