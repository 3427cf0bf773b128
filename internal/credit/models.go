package credit

import (
	"time"

	"github.com/shopspring/decimal"

	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

// ProductType is a closed enumeration of credit products, persisted as its
// string value.
type ProductType string

const (
	ProductLoan      ProductType = "loan"
	ProductFinancing ProductType = "financing"
	ProductOverdraft ProductType = "overdraft"
)

// IsValid checks if the product type is one of the supported enum values.
func (p ProductType) IsValid() bool {
	switch p {
	case ProductLoan, ProductFinancing, ProductOverdraft:
		return true
	}
	return false
}

func (p ProductType) String() string { return string(p) }

// ParseProductType validates a credit product type from an upstream API.
func ParseProductType(s string) (ProductType, error) {
	p := ProductType(s)
	if !p.IsValid() {
		return "", dErrors.Newf(dErrors.CodeDomainValue, "invalid credit product type %q", s)
	}
	return p, nil
}

// ScheduleStatusDue is the initial status of every installment.
const ScheduleStatusDue = "due"

// KnownScheduleStatuses is the advisory vocabulary for installment status.
// The field stays an open string so upstream vocabulary can drift without a
// schema migration.
var KnownScheduleStatuses = map[string]bool{
	"due":  true,
	"paid": true,
	"late": true,
}

// KnownCollateralTypes is the advisory vocabulary for guarantee kinds.
var KnownCollateralTypes = map[string]bool{
	"property":   true,
	"vehicle":    true,
	"investment": true,
}

// Contract captures the static origination terms of a loan, financing or
// overdraft agreement. Terms rarely change post-creation; a contract
// amendment recomputes the schedule wholesale instead of editing rows.
type Contract struct {
	ID                domain.ContractID
	CustomerID        domain.CustomerID
	Product           ProductType
	PrincipalAmount   decimal.Decimal
	RateNominal       decimal.Decimal
	MaturityDate      time.Time
	InstallmentAmount decimal.Decimal
	Balloon           bool
	GuaranteeType     *string
	CreatedAt         time.Time
}

// NewContract validates origination terms.
func NewContract(customerID domain.CustomerID, product ProductType, principal, rate, installment decimal.Decimal, maturity time.Time, now time.Time) (*Contract, error) {
	if customerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "contract requires a customer id")
	}
	if !product.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeDomainValue, "invalid credit product type %q", product)
	}
	if principal.IsNegative() {
		return nil, dErrors.New(dErrors.CodeDomainValue, "principal amount cannot be negative")
	}
	if maturity.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "contract requires a maturity date")
	}
	return &Contract{
		CustomerID:        customerID,
		Product:           product,
		PrincipalAmount:   principal,
		RateNominal:       rate,
		MaturityDate:      maturity,
		InstallmentAmount: installment,
		CreatedAt:         now.UTC(),
	}, nil
}

// Schedule is one installment of the amortization plan. Status and paid
// amount mutate as payments are observed; the plan itself is generated once
// at origination or recomputed wholesale on amendment.
type Schedule struct {
	ID                domain.ScheduleID
	ContractID        domain.ContractID
	InstallmentNumber int
	DueDate           time.Time
	InstallmentAmount decimal.Decimal
	PaidAmount        *decimal.Decimal
	Status            string
	CreatedAt         time.Time
}

// ValidateContiguity checks that installment numbers form the sequence 1..N
// with no duplicates or gaps. An amortization plan with holes cannot be
// reconciled against observed payments.
func ValidateContiguity(schedules []*Schedule) error {
	seen := make(map[int]bool, len(schedules))
	for _, sched := range schedules {
		n := sched.InstallmentNumber
		if n < 1 {
			return dErrors.Newf(dErrors.CodeInvalidState, "installment number %d is below 1", n)
		}
		if n > len(schedules) {
			return dErrors.Newf(dErrors.CodeInvalidState, "installment number %d exceeds term length %d", n, len(schedules))
		}
		if seen[n] {
			return dErrors.Newf(dErrors.CodeInvalidState, "duplicate installment number %d", n)
		}
		seen[n] = true
	}
	return nil
}

// Collateral is one guarantee securing a contract. Its assessed value is
// periodically revised in place, unlike schedules which gain new facts by
// status transition.
type Collateral struct {
	ID              domain.CollateralID
	ContractID      domain.ContractID
	CollateralType  string
	CollateralValue decimal.Decimal
	Description     *string
	CreatedAt       time.Time
}

// NewCollateral validates a guarantee record.
func NewCollateral(contractID domain.ContractID, collateralType string, value decimal.Decimal, now time.Time) (*Collateral, error) {
	if contractID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "collateral requires a contract id")
	}
	if collateralType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "collateral type cannot be empty")
	}
	if value.IsNegative() {
		return nil, dErrors.New(dErrors.CodeDomainValue, "collateral value cannot be negative")
	}
	return &Collateral{
		ContractID:      contractID,
		CollateralType:  collateralType,
		CollateralValue: value,
		CreatedAt:       now.UTC(),
	}, nil
}
