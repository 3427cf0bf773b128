package investment

import (
	"context"

	"finbase/pkg/domain"
)

// Store persists the investment cluster. Positions are upserted by their
// natural instrument key within a customer; movements are append-only.
type Store interface {
	UpsertFund(ctx context.Context, position *PositionFund) error
	ListFunds(ctx context.Context, customerID domain.CustomerID) ([]*PositionFund, error)

	UpsertFixedIncome(ctx context.Context, position *PositionFixedIncome) error
	ListFixedIncome(ctx context.Context, customerID domain.CustomerID) ([]*PositionFixedIncome, error)

	UpsertEquity(ctx context.Context, position *PositionEquity) error
	ListEquities(ctx context.Context, customerID domain.CustomerID) ([]*PositionEquity, error)

	UpsertTreasury(ctx context.Context, position *PositionTreasury) error
	ListTreasuries(ctx context.Context, customerID domain.CustomerID) ([]*PositionTreasury, error)

	InsertMovement(ctx context.Context, movement *Movement) error
	ListMovements(ctx context.Context, customerID domain.CustomerID) ([]*Movement, error)

	DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error
}
