package consent

import (
	"time"

	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

// KnownScopes is the advisory vocabulary for consent scopes. Scopes are
// open strings; new data domains appear upstream without a schema change.
var KnownScopes = map[string]bool{
	"accounts":    true,
	"credit":      true,
	"investments": true,
	"fx":          true,
	"payments":    true,
}

// Consent is a grant of data-sharing or payment-initiation permission.
// Activity is never stored; it is derived from the three timestamps at
// read time so it can never go stale.
type Consent struct {
	ID          domain.ConsentID
	CustomerID  domain.CustomerID
	GrantedAt   time.Time
	ExpiresAt   *time.Time
	RevokedAt   *time.Time
	Description *string
}

// NewConsent validates a grant. Expiry, when present, must be after the
// grant instant.
func NewConsent(customerID domain.CustomerID, grantedAt time.Time, expiresAt *time.Time) (*Consent, error) {
	if customerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "consent requires a customer id")
	}
	if grantedAt.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "consent requires a grant instant")
	}
	if expiresAt != nil && !expiresAt.After(grantedAt) {
		return nil, dErrors.New(dErrors.CodeDomainValue, "consent expiry must be after the grant instant")
	}
	return &Consent{
		CustomerID: customerID,
		GrantedAt:  grantedAt.UTC(),
		ExpiresAt:  expiresAt,
	}, nil
}

// IsActive reports whether the consent authorizes access at the given
// instant: not revoked, and either unexpiring or not yet expired.
func (c *Consent) IsActive(now time.Time) bool {
	if c.RevokedAt != nil {
		return false
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	return true
}

// Scope is one authorized data domain within a consent. Scopes are
// immutable once written; narrowing a consent means revoking it and
// granting a new one.
type Scope struct {
	ID        domain.ScopeID
	ConsentID domain.ConsentID
	Scope     string
	CreatedAt time.Time
}
