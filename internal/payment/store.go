package payment

import (
	"context"
	"time"

	"finbase/pkg/domain"
)

// Store persists payment orders. Transition enforces the state machine at
// the storage layer so a lost race surfaces as ErrInvalidState rather
// than a silent double write.
type Store interface {
	Create(ctx context.Context, order *Order) error
	Find(ctx context.Context, id domain.PaymentOrderID) (*Order, error)
	ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]*Order, error)

	// Transition moves a pending order to a terminal state. completedAt is
	// non-nil only for the completed state.
	Transition(ctx context.Context, id domain.PaymentOrderID, target Status, completedAt *time.Time) error

	DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error
}
