//go:build integration

package consent_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"finbase/internal/consent"
	"finbase/internal/customer"
	"finbase/pkg/domain"
	"finbase/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *consent.Postgres
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
	s.store = consent.NewPostgres(s.postgres.DB)
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

func (s *PostgresStoreSuite) newConsent(customerID domain.CustomerID, scopes ...string) *consent.Consent {
	ctx := context.Background()
	grant, err := consent.NewConsent(customerID, time.Now().UTC(), nil)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, grant))

	rows := make([]*consent.Scope, 0, len(scopes))
	for _, scope := range scopes {
		rows = append(rows, &consent.Scope{ConsentID: grant.ID, Scope: scope, CreatedAt: time.Now().UTC()})
	}
	s.Require().NoError(s.store.AddScopes(ctx, grant.ID, rows))
	return grant
}

func (s *PostgresStoreSuite) TestRevokeKeepsFirstInstant() {
	ctx := context.Background()
	grant := s.newConsent(s.newCustomer(), "accounts")

	first := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Revoke(ctx, grant.ID, first))

	// A replayed revocation must not move the audit timestamp.
	s.Require().NoError(s.store.Revoke(ctx, grant.ID, first.Add(time.Hour)))

	found, err := s.store.Find(ctx, grant.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.RevokedAt)
	s.True(first.Equal(*found.RevokedAt))
}

func (s *PostgresStoreSuite) TestScopesSurviveRevocation() {
	ctx := context.Background()
	grant := s.newConsent(s.newCustomer(), "accounts", "credit")

	s.Require().NoError(s.store.Revoke(ctx, grant.ID, time.Now().UTC()))

	scopes, err := s.store.ListScopes(ctx, grant.ID)
	s.Require().NoError(err)
	s.Len(scopes, 2)
}

func (s *PostgresStoreSuite) TestConsentRoundTrip() {
	ctx := context.Background()
	customerID := s.newCustomer()

	grantedAt := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	expiresAt := grantedAt.AddDate(1, 0, 0)
	description := "open finance data sharing"

	grant, err := consent.NewConsent(customerID, grantedAt, &expiresAt)
	s.Require().NoError(err)
	grant.Description = &description
	s.Require().NoError(s.store.Create(ctx, grant))

	consents, err := s.store.ListByCustomer(ctx, customerID)
	s.Require().NoError(err)
	s.Require().Len(consents, 1)
	got := consents[0]
	s.True(grantedAt.Equal(got.GrantedAt))
	s.Require().NotNil(got.ExpiresAt)
	s.True(expiresAt.Equal(*got.ExpiresAt))
	s.Nil(got.RevokedAt)
	s.Require().NotNil(got.Description)
	s.Equal(description, *got.Description)
}

func (s *PostgresStoreSuite) TestCustomerDeleteCascadesScopes() {
	ctx := context.Background()
	customerID := s.newCustomer()
	grant := s.newConsent(customerID, "accounts", "payments")

	s.Require().NoError(s.customers.Delete(ctx, customerID))

	var count int
	err := s.postgres.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM consent_scopes WHERE consent_id = $1`, int64(grant.ID)).Scan(&count)
	s.Require().NoError(err)
	s.Zero(count)
}
