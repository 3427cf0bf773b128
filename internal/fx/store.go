package fx

import (
	"context"

	"finbase/pkg/domain"
)

// Store persists FX operations. Rows are append-only apart from the
// customer-level purge.
type Store interface {
	Insert(ctx context.Context, operation *Operation) error
	Find(ctx context.Context, id domain.FxOperationID) (*Operation, error)
	ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]*Operation, error)
	DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error
}
