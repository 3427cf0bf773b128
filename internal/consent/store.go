package consent

import (
	"context"
	"time"

	"finbase/pkg/domain"
)

// Store persists consents and their scopes. Scopes cascade from their
// consent and are never deleted individually; Revoke stamps revoked_at
// and leaves the scope rows as the audit record of what was authorized.
type Store interface {
	Create(ctx context.Context, consent *Consent) error
	Find(ctx context.Context, id domain.ConsentID) (*Consent, error)
	ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]*Consent, error)
	Revoke(ctx context.Context, id domain.ConsentID, revokedAt time.Time) error

	AddScopes(ctx context.Context, consentID domain.ConsentID, scopes []*Scope) error
	ListScopes(ctx context.Context, consentID domain.ConsentID) ([]*Scope, error)

	DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error
}
