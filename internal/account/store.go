package account

import (
	"context"

	"finbase/pkg/domain"
)

// Store persists the deposit-account cluster. Balances and transactions are
// append-only; deleting an account removes both series; deleting a customer
// removes everything (DeleteByCustomer participates in Service.Purge).
type Store interface {
	CreateAccount(ctx context.Context, acct *Account) error
	FindAccount(ctx context.Context, id domain.AccountID) (*Account, error)
	ListAccounts(ctx context.Context, customerID domain.CustomerID) ([]*Account, error)
	DeleteAccount(ctx context.Context, id domain.AccountID) error

	InsertBalance(ctx context.Context, balance *Balance) error
	LatestBalance(ctx context.Context, accountID domain.AccountID) (*Balance, error)
	ListBalances(ctx context.Context, accountID domain.AccountID) ([]*Balance, error)

	InsertTransaction(ctx context.Context, txn *Transaction) error
	ListTransactions(ctx context.Context, accountID domain.AccountID) ([]*Transaction, error)

	DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error
}
