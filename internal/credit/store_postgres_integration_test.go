//go:build integration

package credit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"finbase/internal/credit"
	"finbase/internal/customer"
	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
	"finbase/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *credit.Postgres
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
	s.store = credit.NewPostgres(s.postgres.DB)
	s.customers = customer.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "customer_core")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newContract() *credit.Contract {
	ctx := context.Background()
	core := &customer.Core{TaxID: "TAX" + uuid.NewString()[:20]}
	s.Require().NoError(s.customers.Create(ctx, core))

	contract, err := credit.NewContract(core.ID, credit.ProductLoan,
		decimal.RequireFromString("12000.00"), decimal.RequireFromString("0.0185"),
		decimal.RequireFromString("1050.00"),
		time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateContract(ctx, contract))
	return contract
}

func plan(n int, amount string) []*credit.Schedule {
	schedules := make([]*credit.Schedule, 0, n)
	for i := 1; i <= n; i++ {
		schedules = append(schedules, &credit.Schedule{
			InstallmentNumber: i,
			DueDate:           time.Date(2026, time.Month(i), 10, 0, 0, 0, 0, time.UTC),
			InstallmentAmount: decimal.RequireFromString(amount),
			Status:            credit.ScheduleStatusDue,
		})
	}
	return schedules
}

func (s *PostgresStoreSuite) TestScheduleLifecycle() {
	ctx := context.Background()
	contract := s.newContract()

	s.Require().NoError(s.store.InsertSchedules(ctx, contract.ID, plan(3, "1050.00")))

	schedules, err := s.store.ListSchedules(ctx, contract.ID)
	s.Require().NoError(err)
	s.Require().Len(schedules, 3)
	for i, sched := range schedules {
		s.Equal(i+1, sched.InstallmentNumber)
		s.Equal(credit.ScheduleStatusDue, sched.Status)
		s.Nil(sched.PaidAmount)
	}

	paid := decimal.RequireFromString("1050.00")
	s.Require().NoError(s.store.UpdateScheduleStatus(ctx, schedules[0].ID, "paid", &paid))

	schedules, err = s.store.ListSchedules(ctx, contract.ID)
	s.Require().NoError(err)
	s.Equal("paid", schedules[0].Status)
	s.Require().NotNil(schedules[0].PaidAmount)
	s.True(paid.Equal(*schedules[0].PaidAmount))
}

func (s *PostgresStoreSuite) TestDuplicateInstallmentNumber() {
	ctx := context.Background()
	contract := s.newContract()

	schedules := plan(2, "1050.00")
	schedules[1].InstallmentNumber = 1
	s.ErrorIs(s.store.InsertSchedules(ctx, contract.ID, schedules), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestReplaceSchedulesWholesale() {
	ctx := context.Background()
	contract := s.newContract()
	s.Require().NoError(s.store.InsertSchedules(ctx, contract.ID, plan(12, "1050.00")))

	// Amendment shortens the term and changes the installment.
	s.Require().NoError(s.store.ReplaceSchedules(ctx, contract.ID, plan(6, "1900.00")))

	schedules, err := s.store.ListSchedules(ctx, contract.ID)
	s.Require().NoError(err)
	s.Require().Len(schedules, 6)
	for _, sched := range schedules {
		s.True(sched.InstallmentAmount.Equal(decimal.RequireFromString("1900.00")))
	}
}

func (s *PostgresStoreSuite) TestCollateralReassessment() {
	ctx := context.Background()
	contract := s.newContract()

	collateral, err := credit.NewCollateral(contract.ID, "vehicle",
		decimal.RequireFromString("35000.00"), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.AddCollateral(ctx, collateral))

	s.Require().NoError(s.store.ReassessCollateral(ctx, collateral.ID,
		decimal.RequireFromString("31000.00")))

	collaterals, err := s.store.ListCollaterals(ctx, contract.ID)
	s.Require().NoError(err)
	s.Require().Len(collaterals, 1)
	s.True(collaterals[0].CollateralValue.Equal(decimal.RequireFromString("31000.00")))
	s.Equal("vehicle", collaterals[0].CollateralType)
}

func (s *PostgresStoreSuite) TestDeleteContractCascades() {
	ctx := context.Background()
	contract := s.newContract()
	s.Require().NoError(s.store.InsertSchedules(ctx, contract.ID, plan(2, "1050.00")))

	collateral, err := credit.NewCollateral(contract.ID, "property",
		decimal.RequireFromString("90000.00"), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.AddCollateral(ctx, collateral))

	s.Require().NoError(s.store.DeleteContract(ctx, contract.ID))

	for _, table := range []string{"credit_schedules", "collaterals"} {
		var count int
		err := s.postgres.DB.QueryRowContext(ctx,
			"SELECT count(*) FROM "+table+" WHERE contract_id = $1", int64(contract.ID)).Scan(&count)
		s.Require().NoError(err)
		s.Zero(count, table)
	}
}

func (s *PostgresStoreSuite) TestContractRoundTrip() {
	ctx := context.Background()
	contract := s.newContract()

	found, err := s.store.FindContract(ctx, contract.ID)
	s.Require().NoError(err)
	s.Equal(credit.ProductLoan, found.Product)
	s.True(found.PrincipalAmount.Equal(decimal.RequireFromString("12000.00")))
	s.True(found.RateNominal.Equal(decimal.RequireFromString("0.0185")))
	s.True(found.InstallmentAmount.Equal(decimal.RequireFromString("1050.00")))
	s.False(found.Balloon)
	s.True(found.MaturityDate.Equal(time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)))

	_, err = s.store.FindContract(ctx, domain.ContractID(99999))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
