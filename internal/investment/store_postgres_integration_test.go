//go:build integration

package investment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"finbase/internal/customer"
	"finbase/internal/investment"
	"finbase/pkg/domain"
	"finbase/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *investment.Postgres
	customers *customer.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = investment.NewPostgres(s.postgres.DB)
	s.customers = customer.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "customer_core")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newCustomer() domain.CustomerID {
	core := &customer.Core{TaxID: "TAX" + uuid.NewString()[:20]}
	s.Require().NoError(s.customers.Create(context.Background(), core))
	return core.ID
}

func (s *PostgresStoreSuite) TestFundUpsertReplacesInPlace() {
	ctx := context.Background()
	customerID := s.newCustomer()

	first := &investment.PositionFund{
		CustomerID: customerID,
		FundCNPJ:   "11.222.333/0001-44",
		Quantity:   decimal.RequireFromString("100.00000000"),
		AvgPrice:   decimal.RequireFromString("10.5000"),
	}
	s.Require().NoError(s.store.UpsertFund(ctx, first))
	s.Require().NotZero(first.ID)

	// Same instrument on refresh: the row is replaced, not duplicated, and
	// keeps its identity.
	mtm := decimal.RequireFromString("11.2000")
	bucket := "D+30"
	refresh := &investment.PositionFund{
		CustomerID:      customerID,
		FundCNPJ:        "11.222.333/0001-44",
		Quantity:        decimal.RequireFromString("150.00000000"),
		AvgPrice:        decimal.RequireFromString("10.8000"),
		MarkToMarket:    &mtm,
		LiquidityBucket: &bucket,
	}
	s.Require().NoError(s.store.UpsertFund(ctx, refresh))
	s.Equal(first.ID, refresh.ID)

	funds, err := s.store.ListFunds(ctx, customerID)
	s.Require().NoError(err)
	s.Require().Len(funds, 1)
	s.True(funds[0].Quantity.Equal(decimal.RequireFromString("150.00000000")))
	s.Require().NotNil(funds[0].MarkToMarket)
	s.True(mtm.Equal(*funds[0].MarkToMarket))
	s.Require().NotNil(funds[0].LiquidityBucket)
	s.Equal(bucket, *funds[0].LiquidityBucket)
}

func (s *PostgresStoreSuite) TestDistinctInstrumentsDistinctRows() {
	ctx := context.Background()
	customerID := s.newCustomer()

	for _, ticker := range []string{"PETR4", "VALE3"} {
		s.Require().NoError(s.store.UpsertEquity(ctx, &investment.PositionEquity{
			CustomerID: customerID,
			Ticker:     ticker,
			Quantity:   decimal.NewFromInt(100),
			AvgPrice:   decimal.RequireFromString("28.4000"),
		}))
	}

	equities, err := s.store.ListEquities(ctx, customerID)
	s.Require().NoError(err)
	s.Len(equities, 2)
}

func (s *PostgresStoreSuite) TestTreasuryMaturityRoundTrip() {
	ctx := context.Background()
	customerID := s.newCustomer()

	maturity := time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.UpsertTreasury(ctx, &investment.PositionTreasury{
		CustomerID:   customerID,
		InstrumentID: "Tesouro IPCA+ 2029",
		Quantity:     decimal.RequireFromString("2.50000000"),
		AvgPrice:     decimal.RequireFromString("3100.0000"),
		MaturityDate: &maturity,
	}))

	treasuries, err := s.store.ListTreasuries(ctx, customerID)
	s.Require().NoError(err)
	s.Require().Len(treasuries, 1)
	s.Require().NotNil(treasuries[0].MaturityDate)
	s.True(maturity.Equal(*treasuries[0].MaturityDate))
}

// TestPositionScaleRoundTrip verifies the high-precision NUMERIC columns
// keep their declared scale through the driver: an eight-decimal quantity
// and a four-decimal price read back textually unchanged.
func (s *PostgresStoreSuite) TestPositionScaleRoundTrip() {
	ctx := context.Background()
	customerID := s.newCustomer()

	s.Require().NoError(s.store.UpsertEquity(ctx, &investment.PositionEquity{
		CustomerID: customerID,
		Ticker:     "ITUB4",
		Quantity:   decimal.RequireFromString("0.12345678"),
		AvgPrice:   decimal.RequireFromString("28.4000"),
	}))

	equities, err := s.store.ListEquities(ctx, customerID)
	s.Require().NoError(err)
	s.Require().Len(equities, 1)
	s.Equal("0.12345678", equities[0].Quantity.String())
	s.Equal(int32(-8), equities[0].Quantity.Exponent())
	s.Equal("28.4000", equities[0].AvgPrice.String())
	s.Equal(int32(-4), equities[0].AvgPrice.Exponent())
}

func (s *PostgresStoreSuite) TestMovementsAppend() {
	ctx := context.Background()
	customerID := s.newCustomer()

	txnDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for _, kind := range []string{"buy", "sell"} {
		movement, err := investment.NewMovement(customerID, "PETR4", kind,
			decimal.NewFromInt(10), decimal.RequireFromString("28.4000"),
			decimal.RequireFromString("284.00"), txnDate, time.Now())
		s.Require().NoError(err)
		s.Require().NoError(s.store.InsertMovement(ctx, movement))
	}

	movements, err := s.store.ListMovements(ctx, customerID)
	s.Require().NoError(err)
	s.Require().Len(movements, 2)
	s.Equal("buy", movements[0].MovementType)
	s.Equal("sell", movements[1].MovementType)
	s.True(txnDate.Equal(movements[0].TransactionDate))
}
