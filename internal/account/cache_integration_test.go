//go:build integration

package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"finbase/internal/account"
	"finbase/internal/customer"
	"finbase/internal/platform/redis"
	"finbase/pkg/domain"
	"finbase/pkg/testutil/containers"
)

// CachedBalancesSuite exercises the read-through cache against real Redis,
// backed by the in-memory store so cache behavior is isolated from SQL.
type CachedBalancesSuite struct {
	suite.Suite
	redis     *containers.RedisContainer
	customers *customer.InMemory
	backing   *account.InMemory
	cached    *account.CachedBalances
}

func TestCachedBalancesSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedBalancesSuite))
}

func (s *CachedBalancesSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
}

func (s *CachedBalancesSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.customers = customer.NewInMemory()
	s.backing = account.NewInMemory(s.customers)
	s.cached = account.NewCachedBalances(s.backing, &redis.Client{Client: s.redis.Client}, time.Minute)
}

func (s *CachedBalancesSuite) newAccount() domain.AccountID {
	ctx := context.Background()
	core := &customer.Core{TaxID: "TAX-CACHE-1"}
	s.Require().NoError(s.customers.Create(ctx, core))

	acct, err := account.NewAccount(core.ID, account.TypeChecking, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.cached.CreateAccount(ctx, acct))
	return acct.ID
}

func (s *CachedBalancesSuite) insertBalance(accountID domain.AccountID, amount string, asOf time.Time) {
	balance, err := account.NewBalance(accountID, decimal.RequireFromString(amount), asOf)
	s.Require().NoError(err)
	s.Require().NoError(s.cached.InsertBalance(context.Background(), balance))
}

func (s *CachedBalancesSuite) TestReadThrough() {
	ctx := context.Background()
	accountID := s.newAccount()
	asOf := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	s.insertBalance(accountID, "320.50", asOf)

	// First read populates the cache.
	first, err := s.cached.LatestBalance(ctx, accountID)
	s.Require().NoError(err)
	s.True(first.AvailableBalance.Equal(decimal.RequireFromString("320.50")))

	keys, err := s.redis.Client.Keys(ctx, "finbase:balance:latest:*").Result()
	s.Require().NoError(err)
	s.Len(keys, 1)

	// Second read is served from the cache.
	second, err := s.cached.LatestBalance(ctx, accountID)
	s.Require().NoError(err)
	s.True(second.AvailableBalance.Equal(first.AvailableBalance))
	s.True(second.AsOf.Equal(first.AsOf))
}

func (s *CachedBalancesSuite) TestInsertInvalidates() {
	ctx := context.Background()
	accountID := s.newAccount()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	s.insertBalance(accountID, "100.00", base)
	_, err := s.cached.LatestBalance(ctx, accountID)
	s.Require().NoError(err)

	// A newer snapshot must evict the cached one.
	s.insertBalance(accountID, "175.00", base.Add(time.Hour))

	latest, err := s.cached.LatestBalance(ctx, accountID)
	s.Require().NoError(err)
	s.True(latest.AvailableBalance.Equal(decimal.RequireFromString("175.00")))
}

func (s *CachedBalancesSuite) TestCorruptEntryFallsThrough() {
	ctx := context.Background()
	accountID := s.newAccount()
	s.insertBalance(accountID, "42.00", time.Now())

	_, err := s.cached.LatestBalance(ctx, accountID)
	s.Require().NoError(err)

	keys, err := s.redis.Client.Keys(ctx, "finbase:balance:latest:*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)
	s.Require().NoError(s.redis.Client.Set(ctx, keys[0], "not json", time.Minute).Err())

	latest, err := s.cached.LatestBalance(ctx, accountID)
	s.Require().NoError(err)
	s.True(latest.AvailableBalance.Equal(decimal.RequireFromString("42.00")))
}
