package investment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

type stubDirectory map[domain.CustomerID]bool

func (d stubDirectory) Exists(_ context.Context, id domain.CustomerID) (bool, error) {
	return d[id], nil
}

type InvestmentStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InvestmentStoreSuite) SetupTest() {
	s.store = NewInMemory(stubDirectory{1: true})
	s.ctx = context.Background()
}

func TestInvestmentStoreSuite(t *testing.T) {
	suite.Run(t, new(InvestmentStoreSuite))
}

// TestUpsertReplacesCurrentState verifies positions carry current state,
// keyed by their instrument identifier.
func (s *InvestmentStoreSuite) TestUpsertReplacesCurrentState() {
	s.Run("fund keyed by CNPJ", func() {
		first := &PositionFund{
			CustomerID: 1,
			FundCNPJ:   "12.345.678/0001-00",
			Quantity:   decimal.RequireFromString("100.00000000"),
			AvgPrice:   decimal.RequireFromString("1.5000"),
		}
		s.Require().NoError(s.store.UpsertFund(s.ctx, first))

		second := &PositionFund{
			CustomerID: 1,
			FundCNPJ:   "12.345.678/0001-00",
			Quantity:   decimal.RequireFromString("140.00000000"),
			AvgPrice:   decimal.RequireFromString("1.5200"),
		}
		s.Require().NoError(s.store.UpsertFund(s.ctx, second))
		s.Equal(first.ID, second.ID)

		funds, err := s.store.ListFunds(s.ctx, 1)
		s.Require().NoError(err)
		s.Require().Len(funds, 1)
		s.True(funds[0].Quantity.Equal(decimal.RequireFromString("140.00000000")))
	})

	s.Run("equity keyed by ticker", func() {
		position := &PositionEquity{
			CustomerID: 1,
			Ticker:     "VALE3",
			Quantity:   decimal.RequireFromString("50"),
			AvgPrice:   decimal.RequireFromString("61.2000"),
		}
		s.Require().NoError(s.store.UpsertEquity(s.ctx, position))

		position.Quantity = decimal.RequireFromString("75")
		s.Require().NoError(s.store.UpsertEquity(s.ctx, position))

		equities, err := s.store.ListEquities(s.ctx, 1)
		s.Require().NoError(err)
		s.Require().Len(equities, 1)
		s.True(equities[0].Quantity.Equal(decimal.RequireFromString("75")))
	})

	s.Run("distinct identifiers keep distinct rows", func() {
		maturity := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		for _, code := range []string{"CDB-001", "LCI-002"} {
			s.Require().NoError(s.store.UpsertFixedIncome(s.ctx, &PositionFixedIncome{
				CustomerID:   1,
				InstrumentID: code,
				Quantity:     decimal.RequireFromString("1"),
				AvgPrice:     decimal.RequireFromString("1000.0000"),
				MaturityDate: &maturity,
			}))
		}

		positions, err := s.store.ListFixedIncome(s.ctx, 1)
		s.Require().NoError(err)
		s.Len(positions, 2)
	})
}

// TestMovementsAppend verifies the append-only movement log.
func (s *InvestmentStoreSuite) TestMovementsAppend() {
	now := time.Now()
	for i := 0; i < 2; i++ {
		movement, err := NewMovement(1, "TNM2027", "buy",
			decimal.RequireFromString("10.00000000"), decimal.RequireFromString("850.0000"),
			decimal.RequireFromString("8500.00"), now, now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.InsertMovement(s.ctx, movement))
	}

	movements, err := s.store.ListMovements(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(movements, 2)
}

// TestForeignKey verifies the customer liveness check.
func (s *InvestmentStoreSuite) TestForeignKey() {
	err := s.store.UpsertTreasury(s.ctx, &PositionTreasury{
		CustomerID:   7,
		InstrumentID: "TNM2031",
		Quantity:     decimal.RequireFromString("1"),
		AvgPrice:     decimal.RequireFromString("900.0000"),
	})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestCustomerPurge verifies every class of row is dropped.
func (s *InvestmentStoreSuite) TestCustomerPurge() {
	now := time.Now()
	s.Require().NoError(s.store.UpsertFund(s.ctx, &PositionFund{
		CustomerID: 1, FundCNPJ: "00.000.000/0001-91",
		Quantity: decimal.New(1, 0), AvgPrice: decimal.New(1, 0),
	}))
	s.Require().NoError(s.store.UpsertTreasury(s.ctx, &PositionTreasury{
		CustomerID: 1, InstrumentID: "TNM2029",
		Quantity: decimal.New(1, 0), AvgPrice: decimal.New(1, 0),
	}))
	movement, err := NewMovement(1, "TNM2029", "sell",
		decimal.New(1, 0), decimal.New(1, 0), decimal.New(1, 0), now, now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.InsertMovement(s.ctx, movement))

	s.Require().NoError(s.store.DeleteByCustomer(s.ctx, 1))

	funds, err := s.store.ListFunds(s.ctx, 1)
	s.Require().NoError(err)
	s.Empty(funds)

	treasuries, err := s.store.ListTreasuries(s.ctx, 1)
	s.Require().NoError(err)
	s.Empty(treasuries)

	movements, err := s.store.ListMovements(s.ctx, 1)
	s.Require().NoError(err)
	s.Empty(movements)
}
