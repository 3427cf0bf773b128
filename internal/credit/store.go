package credit

import (
	"context"

	"github.com/shopspring/decimal"

	"finbase/pkg/domain"
)

// Store persists the credit-obligation cluster. Schedules and collaterals
// cascade from their contract; ReplaceSchedules swaps the amortization plan
// wholesale on contract amendment.
type Store interface {
	CreateContract(ctx context.Context, contract *Contract) error
	FindContract(ctx context.Context, id domain.ContractID) (*Contract, error)
	ListContracts(ctx context.Context, customerID domain.CustomerID) ([]*Contract, error)
	DeleteContract(ctx context.Context, id domain.ContractID) error

	InsertSchedules(ctx context.Context, contractID domain.ContractID, schedules []*Schedule) error
	ReplaceSchedules(ctx context.Context, contractID domain.ContractID, schedules []*Schedule) error
	ListSchedules(ctx context.Context, contractID domain.ContractID) ([]*Schedule, error)
	UpdateScheduleStatus(ctx context.Context, id domain.ScheduleID, status string, paidAmount *decimal.Decimal) error

	AddCollateral(ctx context.Context, collateral *Collateral) error
	ListCollaterals(ctx context.Context, contractID domain.ContractID) ([]*Collateral, error)
	ReassessCollateral(ctx context.Context, id domain.CollateralID, value decimal.Decimal) error

	DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error
}
