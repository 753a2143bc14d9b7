package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestWaitReady(t *testing.T) {
	t.Run("should retry until the database is reachable", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("cant create mock: %s", err)
		}
		defer db.Close()

		notReady := fmt.Errorf("connection refused")
		mock.ExpectPing().WillReturnError(notReady)
		mock.ExpectPing().WillReturnError(notReady)
		mock.ExpectPing()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS comments").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = WaitReady(context.TODO(), db, 10, time.Millisecond)
		assert.NoError(t, err)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should give up after the attempt bound", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("cant create mock: %s", err)
		}
		defer db.Close()

		notReady := fmt.Errorf("connection refused")
		for i := 0; i < 3; i++ {
			mock.ExpectPing().WillReturnError(notReady)
		}

		err = WaitReady(context.TODO(), db, 3, time.Millisecond)
		assert.ErrorIs(t, err, notReady)
		assert.ErrorContains(t, err, "after 3 attempts")
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should fail when the schema can't be created", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("cant create mock: %s", err)
		}
		defer db.Close()

		ddlErr := fmt.Errorf("permission denied")
		mock.ExpectPing()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS comments").WillReturnError(ddlErr)

		err = WaitReady(context.TODO(), db, 1, time.Millisecond)
		assert.ErrorIs(t, err, ddlErr)
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations unfulfilled: %s", err)
			return
		}
	})

	t.Run("should stop when the context is cancelled", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("cant create mock: %s", err)
		}
		defer db.Close()

		ctx, cancel := context.WithCancel(context.Background())
		mock.ExpectPing().WillReturnError(fmt.Errorf("connection refused"))
		cancel()

		err = WaitReady(ctx, db, 10, time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
