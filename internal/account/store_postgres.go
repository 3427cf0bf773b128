package account

import (
	"context"
	"database/sql"

	"finbase/internal/storage"
	"finbase/pkg/domain"
)

// Postgres persists the deposit-account cluster. The schema carries the
// cascade and the (account_id, as_of) unique key.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateAccount(ctx context.Context, acct *Account) error {
	query := `
		INSERT INTO accounts (customer_id, account_type, institution, branch_number, account_number, opening_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(acct.CustomerID),
		string(acct.Type),
		storage.NullString(acct.Institution),
		storage.NullString(acct.BranchNumber),
		storage.NullString(acct.AccountNumber),
		storage.NullTime(acct.OpeningDate),
		acct.CreatedAt,
	).Scan(&acct.ID)
	return storage.MapError(err)
}

const accountColumns = `id, customer_id, account_type, institution, branch_number, account_number, opening_date, created_at`

func (s *Postgres) FindAccount(ctx context.Context, id domain.AccountID) (*Account, error) {
	row := storage.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, int64(id))
	return scanAccount(row)
}

func (s *Postgres) ListAccounts(ctx context.Context, customerID domain.CustomerID) ([]*Account, error) {
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE customer_id = $1 ORDER BY id`, int64(customerID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteAccount(ctx context.Context, id domain.AccountID) error {
	res, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM accounts WHERE id = $1`, int64(id))
	if err != nil {
		return storage.MapError(err)
	}
	return storage.RequireRow(res)
}

func (s *Postgres) InsertBalance(ctx context.Context, balance *Balance) error {
	query := `
		INSERT INTO account_balances (account_id, available_balance, as_of)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(balance.AccountID),
		balance.AvailableBalance,
		balance.AsOf,
	).Scan(&balance.ID)
	return storage.MapError(err)
}

func (s *Postgres) LatestBalance(ctx context.Context, accountID domain.AccountID) (*Balance, error) {
	query := `
		SELECT id, account_id, available_balance, as_of
		FROM account_balances
		WHERE account_id = $1
		ORDER BY as_of DESC
		LIMIT 1
	`
	var balance Balance
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query, int64(accountID)).Scan(
		&balance.ID, &balance.AccountID, &balance.AvailableBalance, &balance.AsOf)
	if err != nil {
		return nil, storage.MapError(err)
	}
	return &balance, nil
}

func (s *Postgres) ListBalances(ctx context.Context, accountID domain.AccountID) ([]*Balance, error) {
	query := `
		SELECT id, account_id, available_balance, as_of
		FROM account_balances
		WHERE account_id = $1
		ORDER BY as_of
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(accountID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Balance
	for rows.Next() {
		var balance Balance
		if err := rows.Scan(&balance.ID, &balance.AccountID, &balance.AvailableBalance, &balance.AsOf); err != nil {
			return nil, err
		}
		out = append(out, &balance)
	}
	return out, rows.Err()
}

func (s *Postgres) InsertTransaction(ctx context.Context, txn *Transaction) error {
	query := `
		INSERT INTO account_transactions (account_id, amount, currency, mcc, description, posting_date, transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := storage.Exec(ctx, s.db).QueryRowContext(ctx, query,
		int64(txn.AccountID),
		txn.Amount,
		txn.Currency,
		storage.NullString(txn.MCC),
		storage.NullString(txn.Description),
		txn.PostingDate,
		storage.NullTime(txn.TransactionDate),
		txn.CreatedAt,
	).Scan(&txn.ID)
	return storage.MapError(err)
}

func (s *Postgres) ListTransactions(ctx context.Context, accountID domain.AccountID) ([]*Transaction, error) {
	query := `
		SELECT id, account_id, amount, currency, mcc, description, posting_date, transaction_date, created_at
		FROM account_transactions
		WHERE account_id = $1
		ORDER BY id
	`
	rows, err := storage.Exec(ctx, s.db).QueryContext(ctx, query, int64(accountID))
	if err != nil {
		return nil, storage.MapError(err)
	}
	defer rows.Close()

	var out []*Transaction
	for rows.Next() {
		var (
			txn     Transaction
			mcc     sql.NullString
			desc    sql.NullString
			txnDate sql.NullTime
		)
		if err := rows.Scan(&txn.ID, &txn.AccountID, &txn.Amount, &txn.Currency,
			&mcc, &desc, &txn.PostingDate, &txnDate, &txn.CreatedAt); err != nil {
			return nil, err
		}
		txn.MCC = storage.StringPtr(mcc)
		txn.Description = storage.StringPtr(desc)
		txn.TransactionDate = storage.TimePtr(txnDate)
		out = append(out, &txn)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error {
	// Series rows fall with their accounts through the declared cascade.
	_, err := storage.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM accounts WHERE customer_id = $1`, int64(customerID))
	return storage.MapError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*Account, error) {
	var (
		acct        Account
		institution sql.NullString
		branch      sql.NullString
		number      sql.NullString
		opening     sql.NullTime
	)
	err := row.Scan(&acct.ID, &acct.CustomerID, &acct.Type,
		&institution, &branch, &number, &opening, &acct.CreatedAt)
	if err != nil {
		return nil, storage.MapError(err)
	}
	acct.Institution = storage.StringPtr(institution)
	acct.BranchNumber = storage.StringPtr(branch)
	acct.AccountNumber = storage.StringPtr(number)
	acct.OpeningDate = storage.TimePtr(opening)
	return &acct, nil
}
