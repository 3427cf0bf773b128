// Package domain holds shared primitives used across bounded contexts:
// typed surrogate identifiers and currency validation.
package domain

import (
	"strconv"

	dErrors "finbase/pkg/domain-errors"
)

// Surrogate identifiers are int64-backed and assigned by the store on insert.
// Distinct types keep IDs from different entities from being mixed up at
// compile time.
type (
	CustomerID     int64
	ContactID      int64
	AccountID      int64
	BalanceID      int64
	TransactionID  int64
	CardID         int64
	InvoiceID      int64
	ContractID     int64
	ScheduleID     int64
	CollateralID   int64
	PositionID     int64
	MovementID     int64
	FxOperationID  int64
	ConsentID      int64
	ScopeID        int64
	PaymentOrderID int64
)

func (id CustomerID) IsZero() bool     { return id == 0 }
func (id AccountID) IsZero() bool      { return id == 0 }
func (id CardID) IsZero() bool         { return id == 0 }
func (id InvoiceID) IsZero() bool      { return id == 0 }
func (id ContractID) IsZero() bool     { return id == 0 }
func (id ConsentID) IsZero() bool      { return id == 0 }
func (id PaymentOrderID) IsZero() bool { return id == 0 }

func (id CustomerID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id AccountID) String() string  { return strconv.FormatInt(int64(id), 10) }

// ParseCustomerID validates a positive int64 customer identifier.
func ParseCustomerID(s string) (CustomerID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.Newf(dErrors.CodeValidation, "invalid customer id %q", s)
	}
	return CustomerID(n), nil
}
