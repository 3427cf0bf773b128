package consent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"finbase/internal/platform/events"
	"finbase/internal/platform/metrics"
	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

var testMetrics = metrics.New()

type stubDirectory map[domain.CustomerID]bool

func (d stubDirectory) Exists(_ context.Context, id domain.CustomerID) (bool, error) {
	return d[id], nil
}

type nopRunner struct{}

func (nopRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type ConsentSuite struct {
	suite.Suite
	store   *InMemory
	sink    *events.MemorySink
	service *Service
	ctx     context.Context
	now     time.Time
}

func (s *ConsentSuite) SetupTest() {
	s.store = NewInMemory(stubDirectory{1: true})
	s.sink = events.NewMemorySink()
	s.service = NewService(s.store, nopRunner{}, events.NewPublisher(s.sink), testMetrics)
	s.ctx = context.Background()
	s.now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
}

func TestConsentSuite(t *testing.T) {
	suite.Run(t, new(ConsentSuite))
}

func (s *ConsentSuite) grant(scopes ...string) *Consent {
	consent, err := NewConsent(1, s.now, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.service.Grant(s.ctx, consent, scopes, s.now))
	return consent
}

// TestActivityDerivation verifies IsActive against the three timestamps.
func (s *ConsentSuite) TestActivityDerivation() {
	revoked := s.now.Add(time.Hour)
	expiry := s.now.Add(24 * time.Hour)

	cases := []struct {
		name    string
		consent Consent
		at      time.Time
		active  bool
	}{
		{"unexpiring and unrevoked", Consent{GrantedAt: s.now}, s.now.AddDate(10, 0, 0), true},
		{"before expiry", Consent{GrantedAt: s.now, ExpiresAt: &expiry}, s.now.Add(time.Hour), true},
		{"at expiry", Consent{GrantedAt: s.now, ExpiresAt: &expiry}, expiry, false},
		{"after expiry", Consent{GrantedAt: s.now, ExpiresAt: &expiry}, expiry.Add(time.Minute), false},
		{"revoked", Consent{GrantedAt: s.now, RevokedAt: &revoked}, s.now.Add(2 * time.Hour), false},
		{"revoked trumps open expiry", Consent{GrantedAt: s.now, ExpiresAt: &expiry, RevokedAt: &revoked}, s.now.Add(time.Minute), false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			consent := tc.consent
			s.Equal(tc.active, consent.IsActive(tc.at))
		})
	}
}

// TestGrant verifies the consent and its scopes land together.
func (s *ConsentSuite) TestGrant() {
	s.Run("writes scopes with the consent", func() {
		consent := s.grant("accounts", "credit")

		scopes, err := s.store.ListScopes(s.ctx, consent.ID)
		s.Require().NoError(err)
		s.Len(scopes, 2)
	})

	s.Run("rejects an empty scope list", func() {
		consent, err := NewConsent(1, s.now, nil)
		s.Require().NoError(err)
		err = s.service.Grant(s.ctx, consent, nil, s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects an expiry before the grant", func() {
		past := s.now.Add(-time.Hour)
		_, err := NewConsent(1, s.now, &past)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDomainValue))
	})
}

// TestRevoke verifies revocation semantics and scope retention.
func (s *ConsentSuite) TestRevoke() {
	consent := s.grant("investments")

	s.Require().NoError(s.service.Revoke(s.ctx, consent.ID, s.now.Add(time.Hour)))

	found, err := s.store.Find(s.ctx, consent.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.RevokedAt)
	s.False(found.IsActive(s.now.Add(2 * time.Hour)))

	s.Run("scope rows survive as the audit record", func() {
		scopes, err := s.store.ListScopes(s.ctx, consent.ID)
		s.Require().NoError(err)
		s.Len(scopes, 1)
	})

	s.Run("a second revocation keeps the original instant", func() {
		first := *found.RevokedAt
		s.Require().NoError(s.service.Revoke(s.ctx, consent.ID, s.now.Add(48*time.Hour)))

		again, err := s.store.Find(s.ctx, consent.ID)
		s.Require().NoError(err)
		s.True(again.RevokedAt.Equal(first))
	})

	s.Run("emits a revocation event", func() {
		kinds := make([]events.Kind, 0)
		for _, event := range s.sink.Events() {
			kinds = append(kinds, event.Kind)
		}
		s.Contains(kinds, events.KindConsentRevoked)
	})
}

// TestActiveScopes verifies the union across active consents only.
func (s *ConsentSuite) TestActiveScopes() {
	s.grant("accounts", "credit")
	revocable := s.grant("payments")
	s.Require().NoError(s.service.Revoke(s.ctx, revocable.ID, s.now))

	scopes, err := s.service.ActiveScopes(s.ctx, 1, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.ElementsMatch([]string{"accounts", "credit"}, scopes)
}
