package investment

import (
	"time"

	"github.com/shopspring/decimal"

	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

// KnownMovementTypes is the advisory vocabulary for movement kinds. The
// field stays an open string so upstream vocabulary can drift without a
// schema migration.
var KnownMovementTypes = map[string]bool{
	"buy":        true,
	"sell":       true,
	"dividend":   true,
	"reinvest":   true,
	"redemption": true,
}

// PositionFund is a customer's current holding in an investment fund,
// identified by the fund's CNPJ. Re-ingesting the same fund replaces the
// row; positions carry current state, not history.
type PositionFund struct {
	ID              domain.PositionID
	CustomerID      domain.CustomerID
	FundCNPJ        string
	Quantity        decimal.Decimal
	AvgPrice        decimal.Decimal
	MarkToMarket    *decimal.Decimal
	LiquidityBucket *string
	LastEvent       *time.Time
}

// PositionFixedIncome is a current holding in a bank or private fixed
// income instrument (CDB, LCI, LCA, debenture), identified by its
// instrument code.
type PositionFixedIncome struct {
	ID              domain.PositionID
	CustomerID      domain.CustomerID
	InstrumentID    string
	Quantity        decimal.Decimal
	AvgPrice        decimal.Decimal
	MarkToMarket    *decimal.Decimal
	LiquidityBucket *string
	MaturityDate    *time.Time
	LastEvent       *time.Time
}

// PositionEquity is a current stock holding, identified by ticker.
type PositionEquity struct {
	ID              domain.PositionID
	CustomerID      domain.CustomerID
	Ticker          string
	Quantity        decimal.Decimal
	AvgPrice        decimal.Decimal
	MarkToMarket    *decimal.Decimal
	LiquidityBucket *string
	LastEvent       *time.Time
}

// PositionTreasury is a current treasury bond holding, identified by its
// instrument code.
type PositionTreasury struct {
	ID              domain.PositionID
	CustomerID      domain.CustomerID
	InstrumentID    string
	Quantity        decimal.Decimal
	AvgPrice        decimal.Decimal
	MarkToMarket    *decimal.Decimal
	LiquidityBucket *string
	MaturityDate    *time.Time
	LastEvent       *time.Time
}

// Movement is one event that changed the quantity or valuation of an
// instrument. Movements are append-only facts; they are never updated
// and they survive position upserts.
type Movement struct {
	ID              domain.MovementID
	CustomerID      domain.CustomerID
	InstrumentID    string
	MovementType    string
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	Amount          decimal.Decimal
	TransactionDate time.Time
	SettlementDate  *time.Time
	CreatedAt       time.Time
}

// NewMovement validates a movement fact.
func NewMovement(customerID domain.CustomerID, instrumentID, movementType string, quantity, price, amount decimal.Decimal, transactionDate time.Time, now time.Time) (*Movement, error) {
	if customerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "movement requires a customer id")
	}
	if instrumentID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "movement requires an instrument id")
	}
	if movementType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "movement type cannot be empty")
	}
	if transactionDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "movement requires a transaction date")
	}
	return &Movement{
		CustomerID:      customerID,
		InstrumentID:    instrumentID,
		MovementType:    movementType,
		Quantity:        quantity,
		Price:           price,
		Amount:          amount,
		TransactionDate: transactionDate,
		CreatedAt:       now.UTC(),
	}, nil
}
