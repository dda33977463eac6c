// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"time"
)

// PostgresConfig holds warehouse connection parameters
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Statement timeout
	StatementTimeout time.Duration
}

// LoadPostgresConfig loads warehouse configuration from environment variables
func LoadPostgresConfig() (*PostgresConfig, error) {
	user := getEnv("DB_USER", "")
	if user == "" {
		return nil, errors.New("DB_USER environment variable is required")
	}

	cfg := &PostgresConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     user,
		Password: getEnv("DB_PASSWORD", ""),
		Database: getEnv("DB_NAME", "retail_dw"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME_SECONDS", 1800),
		ConnMaxIdleTime:  getEnvAsDuration("DB_CONN_MAX_IDLE_TIME_SECONDS", 600),
		StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT_SECONDS", 300),
	}

	return cfg, nil
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}
