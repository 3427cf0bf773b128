package fx

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

// KnownNatures is the advisory vocabulary for operation natures. The field
// stays an open string so upstream vocabulary can drift without a schema
// migration.
var KnownNatures = map[string]bool{
	"purchase": true,
	"sale":     true,
}

// Operation is one executed foreign exchange transaction. Operations are
// immutable facts refreshed daily from upstream; the rate may be absent
// when the upstream feed has not published it yet.
type Operation struct {
	ID             domain.FxOperationID
	CustomerID     domain.CustomerID
	CurrencyPair   string
	Notional       decimal.Decimal
	Nature         string
	SettlementDate time.Time
	Rate           *decimal.Decimal
	CreatedAt      time.Time
}

// NewOperation validates an FX operation. The pair must look like USD/BRL:
// two three-letter codes joined by a slash.
func NewOperation(customerID domain.CustomerID, pair string, notional decimal.Decimal, nature string, settlement time.Time, now time.Time) (*Operation, error) {
	if customerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "fx operation requires a customer id")
	}
	if err := ValidatePair(pair); err != nil {
		return nil, err
	}
	if nature == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "fx operation nature cannot be empty")
	}
	if settlement.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "fx operation requires a settlement date")
	}
	return &Operation{
		CustomerID:     customerID,
		CurrencyPair:   pair,
		Notional:       notional,
		Nature:         nature,
		SettlementDate: settlement,
		CreatedAt:      now.UTC(),
	}, nil
}

// ValidatePair checks the BASE/QUOTE shape of a currency pair.
func ValidatePair(pair string) error {
	parts := strings.Split(pair, "/")
	if len(parts) != 2 {
		return dErrors.Newf(dErrors.CodeDomainValue, "currency pair %q is not BASE/QUOTE", pair)
	}
	for _, code := range parts {
		if err := domain.ValidateCurrency(code); err != nil {
			return dErrors.Newf(dErrors.CodeDomainValue, "currency pair %q has an invalid code %q", pair, code)
		}
	}
	return nil
}
