package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	_ "github.com/jackc/pgx/v4/stdlib"
)

// SQLSTATE class for unique constraint violations.
const pgUniqueViolation = "23505"

// DBTX is the query surface the repo needs. Both *sql.DB and *sql.Tx
// satisfy it; request handlers always pass the session's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Repo struct{}

func NewCommentRepo() *Repo {
	return &Repo{}
}

// Add inserts a new active comment and returns it with the generated
// id and server-side timestamps.
func (r *Repo) Add(ctx context.Context, tx DBTX, text string) (*Comment, error) {
	cmt := &Comment{Text: text}
	row := tx.QueryRowContext(ctx,
		"INSERT INTO comments(text) VALUES($1) RETURNING id, created_at, updated_at", text)
	if err := row.Scan(&cmt.Id, &cmt.CreatedAt, &cmt.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("comment/repo: failed inserting comment: %w", err)
	}
	return cmt, nil
}

// GetActive returns every comment that is not soft-deleted, ordered by
// id. The result is never nil.
func (r *Repo) GetActive(ctx context.Context, tx DBTX) ([]*Comment, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id, text, created_at, updated_at FROM comments WHERE deleted = FALSE ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("comment/repo: failed querying active comments: %w", err)
	}
	defer rows.Close()

	comments := []*Comment{}
	for rows.Next() {
		cmt := new(Comment)
		if err := rows.Scan(&cmt.Id, &cmt.Text, &cmt.CreatedAt, &cmt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("comment/repo: could not scan row: %w", err)
		}
		comments = append(comments, cmt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("comment/repo: failed reading rows: %w", err)
	}

	return comments, nil
}

// SoftDeleteAll marks every active comment deleted and returns how
// many rows it touched. Zero rows is a valid outcome.
func (r *Repo) SoftDeleteAll(ctx context.Context, tx DBTX) (int64, error) {
	result, err := tx.ExecContext(ctx,
		"UPDATE comments SET deleted = TRUE, updated_at = now() WHERE deleted = FALSE")
	if err != nil {
		return 0, fmt.Errorf("comment/repo: failed soft deleting comments: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("comment/repo: failed reading affected rows: %w", err)
	}
	return affected, nil
}

// SoftDeleteOne marks one active comment deleted. The condition on
// `deleted` makes the update atomic: of two concurrent calls for the
// same id at most one can touch the row, the other gets ErrNotFound.
func (r *Repo) SoftDeleteOne(ctx context.Context, tx DBTX, id int64) error {
	result, err := tx.ExecContext(ctx,
		"UPDATE comments SET deleted = TRUE, updated_at = now() WHERE id = $1 AND deleted = FALSE", id)
	if err != nil {
		return fmt.Errorf("comment/repo: failed soft deleting comment %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("comment/repo: failed reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
