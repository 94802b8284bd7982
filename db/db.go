package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver
)

//go:embed schema.sql
var schemaSQL string

// Config holds the PostgreSQL connection settings. Every field has a default
// so a stock local database works without any environment setup.
type Config struct {
	Host     string // DB_HOST, default "localhost"
	Port     string // DB_PORT, default "5432"
	Name     string // DB_NAME, default "genealogy"
	User     string // DB_USER, default "postgres"
	Password string // DB_PASSWORD, default "123456"
	SSLMode  string // DB_SSLMODE, default "disable"
}

// ConfigFromEnv reads the DB_* environment variables once at startup, falling
// back to the documented defaults for any that are unset.
func ConfigFromEnv() Config {
	return Config{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		Name:     getenv("DB_NAME", "genealogy"),
		User:     getenv("DB_USER", "postgres"),
		Password: getenv("DB_PASSWORD", "123456"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Open creates the process-wide connection pool and verifies connectivity
// with a ping. When the ping fails the pool is still returned alongside the
// error: the server keeps serving (every request fails with a store error)
// and recovers as soon as the database becomes reachable again.
func Open(cfg Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	pool, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	if err := pool.Ping(); err != nil {
		return pool, fmt.Errorf("error pinging database: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded schema. Every statement in schema.sql uses
// IF NOT EXISTS, so running this at each startup is safe.
func Migrate(pool *sql.DB) error {
	if _, err := pool.Exec(schemaSQL); err != nil {
		return fmt.Errorf("error applying schema: %w", err)
	}
	return nil
}
