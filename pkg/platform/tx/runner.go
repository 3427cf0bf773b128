package tx

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	dErrors "finbase/pkg/domain-errors"
)

const defaultTimeout = 5 * time.Second

// Runner executes a unit of work atomically. Postgres-backed stores join the
// transaction via the context; the in-memory runner simply invokes the
// function, since memory stores mutate under their own locks.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLRunner runs units of work inside a single database transaction. A parent
// row and its first-level children written through the same context commit or
// roll back together.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
	tracer  trace.Tracer
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{
		db:     db,
		tracer: otel.Tracer("finbase/tx"),
	}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := r.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx, span := r.tracer.Start(ctx, "tx.run")
	defer span.End()

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	if err := fn(WithTx(ctx, dbTx)); err != nil {
		return err
	}
	return dbTx.Commit()
}

// NopRunner executes the unit of work directly. Used with in-memory stores.
type NopRunner struct{}

func (NopRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
