package account

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

// stubDirectory marks a fixed set of customers as live.
type stubDirectory map[domain.CustomerID]bool

func (d stubDirectory) Exists(_ context.Context, id domain.CustomerID) (bool, error) {
	return d[id], nil
}

type AccountStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *AccountStoreSuite) SetupTest() {
	s.store = NewInMemory(stubDirectory{1: true})
	s.ctx = context.Background()
}

func TestAccountStoreSuite(t *testing.T) {
	suite.Run(t, new(AccountStoreSuite))
}

func (s *AccountStoreSuite) createAccount() *Account {
	acct, err := NewAccount(1, TypeChecking, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateAccount(s.ctx, acct))
	return acct
}

// TestAccountLifecycle verifies creation, lookup and FK enforcement.
func (s *AccountStoreSuite) TestAccountLifecycle() {
	s.Run("creates and finds an account", func() {
		acct := s.createAccount()

		found, err := s.store.FindAccount(s.ctx, acct.ID)
		s.Require().NoError(err)
		s.Equal(TypeChecking, found.Type)
	})

	s.Run("rejects an account for an unknown customer", func() {
		acct, err := NewAccount(99, TypeSavings, time.Now())
		s.Require().NoError(err)
		s.Require().ErrorIs(s.store.CreateAccount(s.ctx, acct), sentinel.ErrNotFound)
	})
}

// TestBalanceSnapshots verifies the append-only (account, as_of) series.
func (s *AccountStoreSuite) TestBalanceSnapshots() {
	acct := s.createAccount()
	asOf := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	s.Run("accepts distinct snapshots", func() {
		first, err := NewBalance(acct.ID, decimal.RequireFromString("100.00"), asOf)
		s.Require().NoError(err)
		s.Require().NoError(s.store.InsertBalance(s.ctx, first))

		second, err := NewBalance(acct.ID, decimal.RequireFromString("90.00"), asOf.Add(time.Hour))
		s.Require().NoError(err)
		s.Require().NoError(s.store.InsertBalance(s.ctx, second))

		balances, err := s.store.ListBalances(s.ctx, acct.ID)
		s.Require().NoError(err)
		s.Len(balances, 2)
	})

	s.Run("rejects a second snapshot at the same instant", func() {
		dup, err := NewBalance(acct.ID, decimal.RequireFromString("80.00"), asOf)
		s.Require().NoError(err)
		s.Require().ErrorIs(s.store.InsertBalance(s.ctx, dup), sentinel.ErrConflict)
	})

	s.Run("latest balance picks the newest as_of", func() {
		latest, err := s.store.LatestBalance(s.ctx, acct.ID)
		s.Require().NoError(err)
		s.True(latest.AvailableBalance.Equal(decimal.RequireFromString("90.00")))
	})
}

// TestTransactions verifies the append-only movement log.
func (s *AccountStoreSuite) TestTransactions() {
	acct := s.createAccount()
	now := time.Now()

	txn, err := NewTransaction(acct.ID, decimal.RequireFromString("-42.50"), "", now, now)
	s.Require().NoError(err)
	s.Equal(domain.DefaultCurrency, txn.Currency)
	s.Require().NoError(s.store.InsertTransaction(s.ctx, txn))

	txns, err := s.store.ListTransactions(s.ctx, acct.ID)
	s.Require().NoError(err)
	s.Len(txns, 1)
}

// TestCascades verifies both deletion paths drop the full series.
func (s *AccountStoreSuite) TestCascades() {
	s.Run("deleting an account drops balances and transactions", func() {
		acct := s.createAccount()
		now := time.Now()

		balance, err := NewBalance(acct.ID, decimal.RequireFromString("10.00"), now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.InsertBalance(s.ctx, balance))

		txn, err := NewTransaction(acct.ID, decimal.RequireFromString("5.00"), "BRL", now, now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.InsertTransaction(s.ctx, txn))

		s.Require().NoError(s.store.DeleteAccount(s.ctx, acct.ID))

		balances, err := s.store.ListBalances(s.ctx, acct.ID)
		s.Require().NoError(err)
		s.Empty(balances)

		txns, err := s.store.ListTransactions(s.ctx, acct.ID)
		s.Require().NoError(err)
		s.Empty(txns)
	})

	s.Run("customer purge drops every account", func() {
		s.createAccount()
		s.createAccount()

		s.Require().NoError(s.store.DeleteByCustomer(s.ctx, 1))

		accounts, err := s.store.ListAccounts(s.ctx, 1)
		s.Require().NoError(err)
		s.Empty(accounts)
	})
}
