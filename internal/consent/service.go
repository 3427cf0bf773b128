package consent

import (
	"context"
	"errors"
	"time"

	"finbase/internal/platform/events"
	"finbase/internal/platform/metrics"
	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
	"finbase/pkg/platform/sentinel"
	"finbase/pkg/platform/tx"
)

// Service orchestrates the consent lifecycle. A grant and its scopes are
// written atomically; a consent visible without its scopes would authorize
// nothing and confuse every reader.
type Service struct {
	store     Store
	runner    tx.Runner
	publisher *events.Publisher
	metrics   *metrics.Metrics
}

func NewService(store Store, runner tx.Runner, publisher *events.Publisher, m *metrics.Metrics) *Service {
	return &Service{store: store, runner: runner, publisher: publisher, metrics: m}
}

// Grant writes the consent and all its scopes in one transaction.
// Scope names are open strings; unrecognized values are accepted and
// counted.
func (s *Service) Grant(ctx context.Context, consent *Consent, scopeNames []string, now time.Time) error {
	if len(scopeNames) == 0 {
		return dErrors.New(dErrors.CodeValidation, "consent requires at least one scope")
	}
	scopes := make([]*Scope, 0, len(scopeNames))
	for _, name := range scopeNames {
		if name == "" {
			return dErrors.New(dErrors.CodeValidation, "scope name cannot be empty")
		}
		if !KnownScopes[name] {
			s.metrics.UnknownVocabulary.WithLabelValues("consent_scope").Inc()
		}
		scopes = append(scopes, &Scope{Scope: name, CreatedAt: now.UTC()})
	}

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, consent); err != nil {
			return err
		}
		return s.store.AddScopes(ctx, consent.ID, scopes)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeConstraintViolation, "consent references unknown customer")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "grant consent")
	}
	s.metrics.RowsWritten.WithLabelValues("consents").Inc()
	s.metrics.RowsWritten.WithLabelValues("consent_scopes").Add(float64(len(scopes)))
	_ = s.publisher.Emit(ctx, events.NewEvent(events.KindConsentGranted, consent.CustomerID, "consents"))
	return nil
}

// Revoke stamps the revocation instant. Scope rows stay behind as the
// audit record of what had been authorized.
func (s *Service) Revoke(ctx context.Context, id domain.ConsentID, now time.Time) error {
	consent, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "consent not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "find consent")
	}
	if err := s.store.Revoke(ctx, id, now); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "revoke consent")
	}
	_ = s.publisher.Emit(ctx, events.NewEvent(events.KindConsentRevoked, consent.CustomerID, "consents"))
	return nil
}

// ActiveScopes reports the union of scopes across a customer's active
// consents at the given instant.
func (s *Service) ActiveScopes(ctx context.Context, customerID domain.CustomerID, now time.Time) ([]string, error) {
	consents, err := s.store.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list consents")
	}
	seen := make(map[string]bool)
	var out []string
	for _, consent := range consents {
		if !consent.IsActive(now) {
			continue
		}
		scopes, err := s.store.ListScopes(ctx, consent.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list scopes")
		}
		for _, scope := range scopes {
			if !seen[scope.Scope] {
				seen[scope.Scope] = true
				out = append(out, scope.Scope)
			}
		}
	}
	return out, nil
}
