package account

import (
	"time"

	"github.com/shopspring/decimal"

	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

// Type is a closed enumeration of account products, persisted as its string
// value.
type Type string

const (
	TypeChecking Type = "checking"
	TypeSavings  Type = "savings"
	TypePrepaid  Type = "prepaid"
	TypePayment  Type = "payment"
)

// IsValid checks if the account type is one of the supported enum values.
func (t Type) IsValid() bool {
	switch t {
	case TypeChecking, TypeSavings, TypePrepaid, TypePayment:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

// ParseType validates an account type received from an upstream API.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeDomainValue, "invalid account type %q", s)
	}
	return t, nil
}

// Account is near-static reference data once discovered. Balance and
// transaction history live in separate time-series tables because their
// refresh cadences differ and are independently retriable.
type Account struct {
	ID            domain.AccountID
	CustomerID    domain.CustomerID
	Type          Type
	Institution   *string
	BranchNumber  *string
	AccountNumber *string
	OpeningDate   *time.Time
	CreatedAt     time.Time
}

// NewAccount validates the discovery-time fields of an account.
func NewAccount(customerID domain.CustomerID, accountType Type, now time.Time) (*Account, error) {
	if customerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "account requires a customer id")
	}
	if !accountType.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeDomainValue, "invalid account type %q", accountType)
	}
	return &Account{
		CustomerID: customerID,
		Type:       accountType,
		CreatedAt:  now.UTC(),
	}, nil
}

// Balance is an append-only snapshot of the available balance at a point in
// time. At most one row may exist per (account, as_of); re-ingesting the same
// snapshot is rejected so retried fetches never duplicate facts.
type Balance struct {
	ID               domain.BalanceID
	AccountID        domain.AccountID
	AvailableBalance decimal.Decimal
	AsOf             time.Time
}

// NewBalance validates a balance snapshot.
func NewBalance(accountID domain.AccountID, available decimal.Decimal, asOf time.Time) (*Balance, error) {
	if accountID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "balance requires an account id")
	}
	if asOf.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "balance requires an as-of timestamp")
	}
	return &Balance{
		AccountID:        accountID,
		AvailableBalance: available,
		AsOf:             asOf.UTC(),
	}, nil
}

// Transaction is one posted movement, immutable once created. PostingDate is
// required; TransactionDate may precede it by settlement lag and both are
// retained because downstream reconciliation depends on the distinction.
type Transaction struct {
	ID              domain.TransactionID
	AccountID       domain.AccountID
	Amount          decimal.Decimal
	Currency        string
	MCC             *string
	Description     *string
	PostingDate     time.Time
	TransactionDate *time.Time
	CreatedAt       time.Time
}

// NewTransaction validates a posted account movement.
func NewTransaction(accountID domain.AccountID, amount decimal.Decimal, currency string, postingDate time.Time, now time.Time) (*Transaction, error) {
	if accountID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "transaction requires an account id")
	}
	if postingDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "transaction requires a posting date")
	}
	currency = domain.CurrencyOrDefault(currency)
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}
	return &Transaction{
		AccountID:   accountID,
		Amount:      amount,
		Currency:    currency,
		PostingDate: postingDate,
		CreatedAt:   now.UTC(),
	}, nil
}
