package fx

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"finbase/internal/storage"
	"finbase/pkg/domain"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Insert(ctx context.Context, operation *Operation) error {
	query := `
		INSERT INTO fx_operations (customer_id, currency_pair, notional, nature, settlement_date, rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(operation.CustomerID),
		operation.CurrencyPair,
		operation.Notional,
		operation.Nature,
		operation.SettlementDate,
		storage.NullDecimal(operation.Rate),
		operation.CreatedAt,
	).Scan(&operation.ID)
	return storage.MapError(err)
}

const operationColumns = `id, customer_id, currency_pair, notional, nature, settlement_date, rate, created_at`

func (s *Postgres) Find(ctx context.Context, id domain.FxOperationID) (*Operation, error) {
	row := storage.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+operationColumns+` FROM fx_operations WHERE id = $1`, int64(id))
	return scanOperation(row)
}

func (s *Postgres) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]*Operation, error) {
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+operationColumns+` FROM fx_operations WHERE customer_id = $1 ORDER BY id`, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Operation
	for rows.Next() {
		operation, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, operation)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error {
	_, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM fx_operations WHERE customer_id = $1`, int64(customerID))
	return storage.MapError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (*Operation, error) {
	var (
		operation Operation
		rate      decimal.NullDecimal
	)
	err := row.Scan(&operation.ID, &operation.CustomerID, &operation.CurrencyPair,
		&operation.Notional, &operation.Nature, &operation.SettlementDate, &rate, &operation.CreatedAt)
	if err != nil {
		return nil, storage.MapError(err)
	}
	operation.Rate = storage.DecimalPtr(rate)
	return &operation, nil
}
