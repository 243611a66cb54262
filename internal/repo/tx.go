package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so store helpers can run
// inside or outside an explicit transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InTx runs fn in a transaction. The transaction is committed only if fn
// returns nil; any error, panic or context cancellation rolls it back.
func InTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // после Commit это no-op

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func pgErrorName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name()
	}
	return ""
}

func isUniqueViolation(err error) bool { return pgErrorName(err) == "unique_violation" }

func isForeignKeyViolation(err error) bool { return pgErrorName(err) == "foreign_key_violation" }

func isCheckViolation(err error) bool { return pgErrorName(err) == "check_violation" }

// isOutOfRange reports a value that does not fit its column: a string longer
// than its VARCHAR or a number outside its NUMERIC/INTEGER range.
func isOutOfRange(err error) bool {
	switch pgErrorName(err) {
	case "string_data_right_truncation", "numeric_value_out_of_range":
		return true
	}
	return false
}
