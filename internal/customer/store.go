package customer

import (
	"context"

	"finbase/pkg/domain"
)

// Store persists the identity cluster. Implementations enforce tax_id
// uniqueness and cascade contacts when a customer row is deleted.
type Store interface {
	Create(ctx context.Context, core *Core) error
	FindByID(ctx context.Context, id domain.CustomerID) (*Core, error)
	FindByTaxID(ctx context.Context, taxID string) (*Core, error)
	Update(ctx context.Context, core *Core) error
	Delete(ctx context.Context, id domain.CustomerID) error
	Exists(ctx context.Context, id domain.CustomerID) (bool, error)

	AddContact(ctx context.Context, contact *Contact) error
	ListContacts(ctx context.Context, id domain.CustomerID) ([]*Contact, error)
	DeleteContact(ctx context.Context, id domain.ContactID) error
}

// Directory is the narrow read surface other clusters use to verify that a
// customer row is live before accepting dependent rows.
type Directory interface {
	Exists(ctx context.Context, id domain.CustomerID) (bool, error)
}
