package customer

import (
	"strings"
	"time"

	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

// MaritalStatus is a closed enumeration persisted as its string value.
type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "single"
	MaritalMarried  MaritalStatus = "married"
	MaritalDivorced MaritalStatus = "divorced"
	MaritalWidowed  MaritalStatus = "widowed"
	MaritalOther    MaritalStatus = "other"
)

// IsValid checks if the marital status is one of the supported enum values.
func (m MaritalStatus) IsValid() bool {
	switch m {
	case MaritalSingle, MaritalMarried, MaritalDivorced, MaritalWidowed, MaritalOther:
		return true
	}
	return false
}

func (m MaritalStatus) String() string { return string(m) }

// ParseMaritalStatus validates a marital status received from an upstream API.
func ParseMaritalStatus(s string) (MaritalStatus, error) {
	m := MaritalStatus(s)
	if !m.IsValid() {
		return "", dErrors.Newf(dErrors.CodeDomainValue, "invalid marital status %q", s)
	}
	return m, nil
}

// Core is the aggregation root for one natural person or entity. Every other
// cluster's ownership chain terminates here.
//
// Invariants:
//   - TaxID is non-empty, at most 32 characters, and globally unique
//   - Birthdate, MaritalStatus and DependentsCount tolerate absence; upstream
//     APIs may not disclose them, and their absence must not block ingestion
//     of dependent entities
//   - PEPFlag is never null: absence of exposure information is recorded as
//     false, an explicit product decision
//
// Deleting a Core row removes every owned row across all clusters. That is an
// explicit, irreversible operation (Service.Purge), never a side effect of an
// unrelated update.
type Core struct {
	ID              domain.CustomerID
	TaxID           string
	Birthdate       *time.Time
	MaritalStatus   *MaritalStatus
	DependentsCount *int
	PEPFlag         bool
}

// NewCore validates the identifying fields of a customer record.
func NewCore(taxID string) (*Core, error) {
	taxID = strings.TrimSpace(taxID)
	if taxID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "tax id cannot be empty")
	}
	if len(taxID) > 32 {
		return nil, dErrors.New(dErrors.CodeValidation, "tax id must be 32 characters or less")
	}
	return &Core{TaxID: taxID}, nil
}

// SetDependents guards the one numeric demographic field.
func (c *Core) SetDependents(n int) error {
	if n < 0 {
		return dErrors.New(dErrors.CodeDomainValue, "dependents count cannot be negative")
	}
	c.DependentsCount = &n
	return nil
}

// KnownContactTypes is the advisory vocabulary for contact channels. Values
// outside it are accepted; upstream vocabulary drifts without notice.
var KnownContactTypes = map[string]bool{
	"email":   true,
	"phone":   true,
	"address": true,
}

// Contact is one contact channel linked to a customer. Rows are created and
// deleted freely; in practice the ingestion path only appends.
type Contact struct {
	ID         domain.ContactID
	CustomerID domain.CustomerID
	Type       string
	Value      string
	CreatedAt  time.Time
}

// NewContact validates a contact channel for a customer.
func NewContact(customerID domain.CustomerID, contactType, value string, now time.Time) (*Contact, error) {
	if customerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "contact requires a customer id")
	}
	if contactType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "contact type cannot be empty")
	}
	if value == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "contact value cannot be empty")
	}
	return &Contact{
		CustomerID: customerID,
		Type:       contactType,
		Value:      value,
		CreatedAt:  now.UTC(),
	}, nil
}
