package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"

	"feedback/pkg/logger"
)

const (
	// Bounds for the startup retry loop. The database container often
	// comes up after the service in orchestrated deployments.
	ReadyAttempts = 10
	ReadyDelay    = 2 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS comments (
	id         SERIAL PRIMARY KEY,
	text       TEXT NOT NULL,
	deleted    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: can't open database: %w", err)
	}
	return db, nil
}

// WaitReady pings the database and ensures the comments table exists,
// retrying up to attempts times with a fixed delay. It returns the
// last failure when the database never becomes reachable; the caller
// treats that as fatal.
func WaitReady(ctx context.Context, db *sql.DB, attempts int, delay time.Duration) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			if err = EnsureSchema(ctx, db); err == nil {
				logger.Log(ctx).Infof("storage: database connected and initialized")
				return nil
			}
		}
		logger.Log(ctx).Infof("storage: database not ready (attempt %d/%d): %v", attempt, attempts, err)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("storage: database not ready after %d attempts: %w", attempts, err)
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("storage: failed creating comments table: %w", err)
	}
	return nil
}
