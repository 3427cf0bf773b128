//go:build integration

package customer_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"finbase/internal/account"
	"finbase/internal/card"
	"finbase/internal/consent"
	"finbase/internal/credit"
	"finbase/internal/customer"
	"finbase/internal/fx"
	"finbase/internal/investment"
	"finbase/internal/payment"
	"finbase/internal/platform/events"
	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
	"finbase/pkg/platform/tx"
	"finbase/pkg/testutil/containers"
)

// PurgeIntegrationSuite runs the purge orchestration against real Postgres,
// with the SQL transaction runner, to prove the erasure is atomic and the
// schema cascades agree with the store-level sweeps.
type PurgeIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	service  *customer.Service
}

func TestPurgeIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PurgeIntegrationSuite))
}

func (s *PurgeIntegrationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())

	db := s.postgres.DB
	s.service = customer.NewService(
		customer.NewPostgres(db),
		tx.NewSQLRunner(db),
		events.NewPublisher(events.NewMemorySink()),
		testMetrics,
		account.NewPostgres(db), card.NewPostgres(db), credit.NewPostgres(db),
		investment.NewPostgres(db), fx.NewPostgres(db), consent.NewPostgres(db),
		payment.NewPostgres(db),
	)
}

func (s *PurgeIntegrationSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "customer_core")
	s.Require().NoError(err)
}

// seedFootprint writes one row into every cluster for the given tax id and
// returns the customer id.
func (s *PurgeIntegrationSuite) seedFootprint(taxID string) int64 {
	ctx := context.Background()
	db := s.postgres.DB
	now := time.Now()

	core, err := customer.NewCore(taxID)
	s.Require().NoError(err)
	s.Require().NoError(s.service.Create(ctx, core))

	accounts := account.NewPostgres(db)
	acct, err := account.NewAccount(core.ID, account.TypeChecking, now)
	s.Require().NoError(err)
	s.Require().NoError(accounts.CreateAccount(ctx, acct))
	balance, err := account.NewBalance(acct.ID, decimal.RequireFromString("150.25"), now)
	s.Require().NoError(err)
	s.Require().NoError(accounts.InsertBalance(ctx, balance))

	cards := card.NewPostgres(db)
	cardRow, err := card.NewCard(core.ID, "card-"+taxID[:10], card.ProductCredit, now)
	s.Require().NoError(err)
	s.Require().NoError(cards.CreateCard(ctx, cardRow))

	credits := credit.NewPostgres(db)
	contract, err := credit.NewContract(core.ID, credit.ProductLoan,
		decimal.RequireFromString("10000.00"), decimal.RequireFromString("0.0199"),
		decimal.RequireFromString("450.00"), now.AddDate(2, 0, 0), now)
	s.Require().NoError(err)
	s.Require().NoError(credits.CreateContract(ctx, contract))
	s.Require().NoError(credits.InsertSchedules(ctx, contract.ID, []*credit.Schedule{{
		InstallmentNumber: 1,
		DueDate:           now.AddDate(0, 1, 0),
		InstallmentAmount: decimal.RequireFromString("450.00"),
		Status:            credit.ScheduleStatusDue,
	}}))

	investments := investment.NewPostgres(db)
	s.Require().NoError(investments.UpsertEquity(ctx, &investment.PositionEquity{
		CustomerID: core.ID,
		Ticker:     "PETR4",
		Quantity:   decimal.NewFromInt(10),
		AvgPrice:   decimal.RequireFromString("28.4000"),
	}))

	fxOps := fx.NewPostgres(db)
	operation, err := fx.NewOperation(core.ID, "USD/BRL",
		decimal.RequireFromString("1000.00"), "purchase", now.AddDate(0, 0, 2), now)
	s.Require().NoError(err)
	s.Require().NoError(fxOps.Insert(ctx, operation))

	consents := consent.NewPostgres(db)
	grant, err := consent.NewConsent(core.ID, now, nil)
	s.Require().NoError(err)
	s.Require().NoError(consents.Create(ctx, grant))
	s.Require().NoError(consents.AddScopes(ctx, grant.ID, []*consent.Scope{
		{ConsentID: grant.ID, Scope: "accounts", CreatedAt: now},
	}))

	payments := payment.NewPostgres(db)
	order, err := payment.NewOrder(core.ID, decimal.RequireFromString("99.00"), "BRL", "payments", now)
	s.Require().NoError(err)
	s.Require().NoError(payments.Create(ctx, order))

	return int64(core.ID)
}

var footprintTables = []string{
	"customer_core", "customer_contacts",
	"accounts", "cards", "credit_contracts",
	"positions_equity", "fx_operations", "consents", "payment_orders",
}

func (s *PurgeIntegrationSuite) countRows(table string, customerID int64) int {
	var count int
	column := "customer_id"
	if table == "customer_core" {
		column = "id"
	}
	err := s.postgres.DB.QueryRowContext(context.Background(),
		"SELECT count(*) FROM "+table+" WHERE "+column+" = $1", customerID).Scan(&count)
	s.Require().NoError(err)
	return count
}

func (s *PurgeIntegrationSuite) TestPurgeRemovesWholeFootprint() {
	ctx := context.Background()

	victim := s.seedFootprint("PURGE-VICTIM-0001")
	survivor := s.seedFootprint("PURGE-SURVIVOR-01")

	s.Require().NoError(s.service.Purge(ctx, domain.CustomerID(victim)))

	for _, table := range footprintTables {
		s.Zero(s.countRows(table, victim), table)
	}

	// The survivor's footprint is untouched.
	s.Equal(1, s.countRows("customer_core", survivor))
	s.Equal(1, s.countRows("accounts", survivor))
	s.Equal(1, s.countRows("payment_orders", survivor))
}

func (s *PurgeIntegrationSuite) TestPurgeUnknownCustomer() {
	err := s.service.Purge(context.Background(), 424242)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
