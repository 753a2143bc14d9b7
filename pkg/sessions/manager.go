package sessions

import (
	"context"
	"database/sql"
	"fmt"
)

// SessionManager hands out one transactional session per request.
type SessionManager struct {
	db *sql.DB
}

func NewSessionManager(db *sql.DB) *SessionManager {
	return &SessionManager{
		db: db,
	}
}

// WithSession runs fn inside its own transaction. The transaction is
// committed when fn returns nil and rolled back on every other exit
// path, including a panic inside fn. Rollback after a successful
// commit is a no-op, so the session is released exactly once.
func (sm *SessionManager) WithSession(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := sm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sessions: can't acquire session: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sessions: commit failed: %w", err)
	}
	return nil
}
