package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

// Status is the closed lifecycle state of a payment order, persisted as
// its string value. Pending is the only non-terminal state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

func (s Status) String() string { return string(s) }

// ParseStatus validates a payment status from an upstream API.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", dErrors.Newf(dErrors.CodeDomainValue, "invalid payment status %q", v)
	}
	return s, nil
}

// Order is a fund transfer initiated through a payment initiator, PIX
// typically. It starts pending and moves exactly once to completed,
// failed or cancelled; terminal orders never change again.
type Order struct {
	ID          domain.PaymentOrderID
	CustomerID  domain.CustomerID
	Amount      decimal.Decimal
	Currency    string
	Scope       string
	PixE2EID    *string
	Status      Status
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// NewOrder validates and initializes a pending order. An empty currency
// defaults to BRL.
func NewOrder(customerID domain.CustomerID, amount decimal.Decimal, currency, scope string, now time.Time) (*Order, error) {
	if customerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "payment order requires a customer id")
	}
	if !amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeDomainValue, "payment amount must be positive")
	}
	if scope == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "payment order requires a scope")
	}
	currency = domain.CurrencyOrDefault(currency)
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}
	return &Order{
		CustomerID: customerID,
		Amount:     amount,
		Currency:   currency,
		Scope:      scope,
		Status:     StatusPending,
		CreatedAt:  now.UTC(),
	}, nil
}

// CanTransitionTo reports whether the order may move to the target state.
// Only pending orders transition, and never back to pending.
func (o *Order) CanTransitionTo(target Status) bool {
	return o.Status == StatusPending && target.IsTerminal() && target.IsValid()
}
