package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"

	"github.com/srgjo27/campus_ticket/internal/platform/logger"
)

//go:embed schema.sql
var schema string

type Config struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	MaxOpenConns int
}

func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func NewPostgresDB(ctx context.Context, cfg Config) (*sql.DB, error) {
	var db *sql.DB
	var err error
	maxRetries := 10

	for i := 1; i <= maxRetries; i++ {
		logger.Infof(ctx, "Connecting to database (attempt %d/%d)...", i, maxRetries)
		db, err = sql.Open("postgres", cfg.DSN())
		if err == nil {
			err = db.PingContext(ctx)
		}

		if err == nil {
			logger.Info(ctx, "Database connected successfully")
			configurePool(db, cfg)
			return db, nil
		}

		if db != nil {
			db.Close()
		}

		logger.Warnf(ctx, "Database not ready yet: %v. Waiting 2 seconds...", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return nil, fmt.Errorf("connecting to database: %w", err)
}

func configurePool(db *sql.DB, cfg Config) {
	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 25
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(5 * time.Minute)
}

// EnsureSchema creates the tables this service reads and writes. Every
// statement is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
