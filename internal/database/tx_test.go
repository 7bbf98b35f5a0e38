package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/safar/printshop/internal/database"
	"github.com/safar/printshop/internal/dbtest"
)

func countContacts(t *testing.T, db *sqlx.DB) int {
	t.Helper()

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM contact_messages`); err != nil {
		t.Fatalf("Count contact messages: %v", err)
	}
	return n
}

func insertContact(tx *sqlx.Tx) error {
	_, err := tx.Exec(`INSERT INTO contact_messages (name, email, subject, message, created_at)
		VALUES ('a', 'a@example.com', '', 'hi', NOW())`)
	return err
}

func TestWithTransaction(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sqlx.Tx) error {
		if err := insertContact(tx); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if n := countContacts(t, db); n != 0 {
		t.Errorf("Expected rollback, found %d rows", n)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Expected panic to propagate")
			}
		}()
		database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sqlx.Tx) error {
			if err := insertContact(tx); err != nil {
				return err
			}
			panic("handler bug")
		})
	}()
	if n := countContacts(t, db); n != 0 {
		t.Errorf("Expected rollback after panic, found %d rows", n)
	}

	if err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), insertContact); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if n := countContacts(t, db); n != 1 {
		t.Errorf("Expected 1 committed row, found %d", n)
	}
}

func TestWithRetry(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	attempts := 0
	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sqlx.Tx) error {
		attempts++
		if attempts < 3 {
			return &pq.Error{Code: "40001"}
		}
		return insertContact(tx)
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}

	attempts = 0
	err = database.WithRetry(ctx, db, database.TxOptions{MaxRetries: 1}, func(tx *sqlx.Tx) error {
		attempts++
		return &pq.Error{Code: "40P01"}
	})
	if !database.IsRetryable(err) {
		t.Errorf("Expected wrapped retryable error, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}

	attempts = 0
	notRetryable := errors.New("bad input")
	err = database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sqlx.Tx) error {
		attempts++
		return notRetryable
	})
	if !errors.Is(err, notRetryable) || attempts != 1 {
		t.Errorf("Expected a single failed attempt, got %d (%v)", attempts, err)
	}
}
