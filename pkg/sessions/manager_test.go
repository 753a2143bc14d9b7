package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestWithSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("cant create mock: %s", err)
	}
	defer db.Close()
	sm := NewSessionManager(db)

	t.Run("should commit on success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE comments").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := sm.WithSession(context.TODO(), func(tx *sql.Tx) error {
			_, execErr := tx.Exec("UPDATE comments SET deleted = TRUE WHERE id = 1 AND deleted = FALSE")
			return execErr
		})
		assert.NoError(t, err)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should roll back when the operation fails", func(t *testing.T) {
		opErr := fmt.Errorf("operation failed")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := sm.WithSession(context.TODO(), func(tx *sql.Tx) error {
			return opErr
		})
		assert.ErrorIs(t, err, opErr)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should roll back exactly once when the operation panics", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = sm.WithSession(context.TODO(), func(tx *sql.Tx) error {
				panic("unclassified failure")
			})
		})
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should propagate begin failure", func(t *testing.T) {
		beginErr := fmt.Errorf("pool exhausted")
		mock.ExpectBegin().WillReturnError(beginErr)

		called := false
		err := sm.WithSession(context.TODO(), func(tx *sql.Tx) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, beginErr)
		assert.ErrorContains(t, err, "can't acquire session")
		assert.False(t, called)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should report commit failure", func(t *testing.T) {
		commitErr := fmt.Errorf("connection lost")
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(commitErr)

		err := sm.WithSession(context.TODO(), func(tx *sql.Tx) error {
			return nil
		})
		assert.ErrorIs(t, err, commitErr)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})
}
