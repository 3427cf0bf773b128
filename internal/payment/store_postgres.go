package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"finbase/internal/storage"
	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, order *Order) error {
	query := `
		INSERT INTO payment_orders (customer_id, amount, currency, scope, pix_e2e_id, status, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(order.CustomerID),
		order.Amount,
		order.Currency,
		order.Scope,
		storage.NullString(order.PixE2EID),
		string(order.Status),
		order.CreatedAt,
		storage.NullTime(order.CompletedAt),
	).Scan(&order.ID)
	return storage.MapError(err)
}

const orderColumns = `id, customer_id, amount, currency, scope, pix_e2e_id, status, created_at, completed_at`

func (s *Postgres) Find(ctx context.Context, id domain.PaymentOrderID) (*Order, error) {
	row := storage.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM payment_orders WHERE id = $1`, int64(id))
	return scanOrder(row)
}

func (s *Postgres) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]*Order, error) {
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+orderColumns+` FROM payment_orders WHERE customer_id = $1 ORDER BY id`, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, rows.Err()
}

// Transition moves a pending order to a terminal state with a guarded
// UPDATE. Zero rows means either the order is missing or it already
// left pending; a follow-up read distinguishes the two.
func (s *Postgres) Transition(ctx context.Context, id domain.PaymentOrderID, target Status, completedAt *time.Time) error {
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE payment_orders SET status = $2, completed_at = $3 WHERE id = $1 AND status = 'pending'`,
		int64(id), string(target), storage.NullTime(completedAt))
	if err != nil {
		return storage.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.Find(ctx, id); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return sentinel.ErrNotFound
			}
			return err
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *Postgres) DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error {
	_, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM payment_orders WHERE customer_id = $1`, int64(customerID))
	return storage.MapError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		order     Order
		pix       sql.NullString
		completed sql.NullTime
	)
	err := row.Scan(&order.ID, &order.CustomerID, &order.Amount, &order.Currency,
		&order.Scope, &pix, &order.Status, &order.CreatedAt, &completed)
	if err != nil {
		return nil, storage.MapError(err)
	}
	order.PixE2EID = storage.StringPtr(pix)
	order.CompletedAt = storage.TimePtr(completed)
	return &order, nil
}
