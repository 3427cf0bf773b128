package card

import (
	"context"
	"database/sql"

	"finbase/internal/storage"
	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

// Postgres persists the card cluster. The schema declares the unique card
// number, the cascade from cards and the SET NULL detach from invoices; the
// one-way attach rule needs a guarded UPDATE.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateCard(ctx context.Context, c *Card) error {
	query := `
		INSERT INTO cards (customer_id, card_number, product_type, issuer, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(c.CustomerID),
		c.CardNumber,
		string(c.Product),
		storage.NullString(c.Issuer),
		c.CreatedAt,
	).Scan(&c.ID)
	return storage.MapError(err)
}

const cardColumns = `id, customer_id, card_number, product_type, issuer, created_at`

func (s *Postgres) FindCard(ctx context.Context, id domain.CardID) (*Card, error) {
	row := storage.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1`, int64(id))
	return scanCard(row)
}

func (s *Postgres) FindCardByNumber(ctx context.Context, number string) (*Card, error) {
	row := storage.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE card_number = $1`, number)
	return scanCard(row)
}

func (s *Postgres) ListCards(ctx context.Context, customerID domain.CustomerID) ([]*Card, error) {
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE customer_id = $1 ORDER BY id`, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteCard(ctx context.Context, id domain.CardID) error {
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM cards WHERE id = $1`, int64(id))
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

func (s *Postgres) CreateInvoice(ctx context.Context, invoice *Invoice) error {
	query := `
		INSERT INTO card_invoices (card_id, statement_date, due_date, total_amount, minimum_payment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(invoice.CardID),
		invoice.StatementDate,
		invoice.DueDate,
		invoice.TotalAmount,
		invoice.MinimumPayment,
		invoice.CreatedAt,
	).Scan(&invoice.ID)
	return storage.MapError(err)
}

func (s *Postgres) UpdateInvoice(ctx context.Context, invoice *Invoice) error {
	query := `
		UPDATE card_invoices
		SET statement_date = $2, due_date = $3, total_amount = $4, minimum_payment = $5
		WHERE id = $1
	`
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx, query,
		int64(invoice.ID),
		invoice.StatementDate,
		invoice.DueDate,
		invoice.TotalAmount,
		invoice.MinimumPayment,
	)
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

// DeleteInvoice removes the statement; the schema detaches its transactions
// through ON DELETE SET NULL.
func (s *Postgres) DeleteInvoice(ctx context.Context, id domain.InvoiceID) error {
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM card_invoices WHERE id = $1`, int64(id))
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

func (s *Postgres) ListInvoices(ctx context.Context, cardID domain.CardID) ([]*Invoice, error) {
	query := `
		SELECT id, card_id, statement_date, due_date, total_amount, minimum_payment, created_at
		FROM card_invoices
		WHERE card_id = $1
		ORDER BY id
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(cardID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		var invoice Invoice
		if err := rows.Scan(&invoice.ID, &invoice.CardID, &invoice.StatementDate,
			&invoice.DueDate, &invoice.TotalAmount, &invoice.MinimumPayment, &invoice.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &invoice)
	}
	return out, rows.Err()
}

func (s *Postgres) InsertTransaction(ctx context.Context, txn *Transaction) error {
	query := `
		INSERT INTO card_transactions (card_id, invoice_id, amount, currency, merchant_name, mcc, description, transaction_date, posting_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(txn.CardID),
		nullInvoiceID(txn.InvoiceID),
		txn.Amount,
		txn.Currency,
		storage.NullString(txn.MerchantName),
		storage.NullString(txn.MCC),
		storage.NullString(txn.Description),
		txn.TransactionDate,
		storage.NullTime(txn.PostingDate),
		txn.CreatedAt,
	).Scan(&txn.ID)
	return storage.MapError(err)
}

func (s *Postgres) FindTransaction(ctx context.Context, id domain.TransactionID) (*Transaction, error) {
	row := storage.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+cardTxnColumns+` FROM card_transactions WHERE id = $1`, int64(id))
	return scanTransaction(row)
}

// AttachToInvoice binds an unbilled transaction to a statement. The WHERE
// clause enforces the one-way transition at the engine, so two concurrent
// attach attempts cannot both win.
func (s *Postgres) AttachToInvoice(ctx context.Context, id domain.TransactionID, invoiceID domain.InvoiceID) error {
	query := `
		UPDATE card_transactions
		SET invoice_id = $2
		WHERE id = $1 AND (invoice_id IS NULL OR invoice_id = $2)
	`
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx, query, int64(id), int64(invoiceID))
	if err != nil {
		return storage.MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing row from a billed one.
		if _, ferr := s.FindTransaction(ctx, id); ferr != nil {
			return ferr
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *Postgres) ListTransactions(ctx context.Context, cardID domain.CardID) ([]*Transaction, error) {
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+cardTxnColumns+` FROM card_transactions WHERE card_id = $1 ORDER BY id`, int64(cardID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error {
	_, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM cards WHERE customer_id = $1`, int64(customerID))
	return storage.MapError(err)
}

const cardTxnColumns = `id, card_id, invoice_id, amount, currency, merchant_name, mcc, description, transaction_date, posting_date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*Card, error) {
	var (
		c      Card
		issuer sql.NullString
	)
	err := row.Scan(&c.ID, &c.CustomerID, &c.CardNumber, &c.Product, &issuer, &c.CreatedAt)
	if err != nil {
		return nil, storage.MapError(err)
	}
	c.Issuer = storage.StringPtr(issuer)
	return &c, nil
}

func scanTransaction(row rowScanner) (*Transaction, error) {
	var (
		txn       Transaction
		invoiceID sql.NullInt64
		merchant  sql.NullString
		mcc       sql.NullString
		desc      sql.NullString
		posting   sql.NullTime
	)
	err := row.Scan(&txn.ID, &txn.CardID, &invoiceID, &txn.Amount, &txn.Currency,
		&merchant, &mcc, &desc, &txn.TransactionDate, &posting, &txn.CreatedAt)
	if err != nil {
		return nil, storage.MapError(err)
	}
	if invoiceID.Valid {
		id := domain.InvoiceID(invoiceID.Int64)
		txn.InvoiceID = &id
	}
	txn.MerchantName = storage.StringPtr(merchant)
	txn.MCC = storage.StringPtr(mcc)
	txn.Description = storage.StringPtr(desc)
	txn.PostingDate = storage.TimePtr(posting)
	return &txn, nil
}

func nullInvoiceID(id *domain.InvoiceID) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}
