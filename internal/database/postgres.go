package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/ibanking/backend/internal/config"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema string

// ConnString renders the lib/pq keyword/value connection string.
func ConnString(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)
}

// InitDB opens and pings the Postgres pool.
func InitDB(ctx context.Context, cfg config.DBConfig, log *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test connection
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("Database connection established", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error applying schema: %w", err)
	}
	return nil
}
