// Package storage provides the shared relational plumbing for the Postgres
// store implementations: connection setup, migration, transaction-aware
// query execution and SQLSTATE mapping to sentinel errors.
package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"finbase/pkg/platform/sentinel"
	txcontext "finbase/pkg/platform/tx"
)

// Open connects to Postgres through the pgx stdlib driver.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Querier is the common surface of *sql.DB and *sql.Tx that stores use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Exec returns the transaction carried in ctx when present, so writes issued
// by different stores inside one unit of work commit atomically.
func Exec(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

// SQLSTATE classes the schema relies on. Violations surface synchronously at
// write time; there is no background reconciliation.
const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
	sqlstateCheckViolation      = "23514"
)

// MapError translates engine constraint failures into sentinel errors.
// A retried idempotent write therefore becomes an explicit, caller-handled
// conflict rather than a duplicated fact.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateUniqueViolation:
			return sentinel.ErrConflict
		case sqlstateForeignKeyViolation:
			// Either a child pointing at a missing parent, or a parent delete
			// blocked by a RESTRICT child. This model declares no RESTRICT
			// relationships, so it is always the former.
			return sentinel.ErrNotFound
		case sqlstateCheckViolation:
			return sentinel.ErrInvalidState
		}
	}
	return err
}
