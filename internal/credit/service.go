package credit

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"finbase/internal/platform/metrics"
	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
	"finbase/pkg/platform/sentinel"
	"finbase/pkg/platform/tx"
)

// Service orchestrates origination: a contract and its amortization plan are
// written atomically, and the plan is validated for contiguity before any
// row lands.
type Service struct {
	store   Store
	runner  tx.Runner
	metrics *metrics.Metrics
}

func NewService(store Store, runner tx.Runner, m *metrics.Metrics) *Service {
	return &Service{store: store, runner: runner, metrics: m}
}

// Originate writes the contract and its full schedule in one transaction.
// Partial plans must never be observable.
func (s *Service) Originate(ctx context.Context, contract *Contract, schedules []*Schedule) error {
	if err := ValidateContiguity(schedules); err != nil {
		return err
	}
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateContract(ctx, contract); err != nil {
			return err
		}
		return s.store.InsertSchedules(ctx, contract.ID, schedules)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeConstraintViolation, "contract references unknown customer")
		}
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.ConstraintViolations.WithLabelValues("credit_schedules").Inc()
			return dErrors.Wrap(err, dErrors.CodeConstraintViolation, "duplicate installment number")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "originate contract")
	}
	s.metrics.RowsWritten.WithLabelValues("credit_contracts").Inc()
	s.metrics.RowsWritten.WithLabelValues("credit_schedules").Add(float64(len(schedules)))
	return nil
}

// Amend recomputes the amortization plan wholesale. The old plan and the new
// one never coexist outside the transaction.
func (s *Service) Amend(ctx context.Context, contractID domain.ContractID, schedules []*Schedule) error {
	if err := ValidateContiguity(schedules); err != nil {
		return err
	}
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		return s.store.ReplaceSchedules(ctx, contractID, schedules)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "contract not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "amend schedule")
	}
	return nil
}

// MarkInstallment records an observed payment state on one installment.
// Status is an open string; unrecognized values are accepted and counted.
func (s *Service) MarkInstallment(ctx context.Context, id domain.ScheduleID, status string, paidAmount *decimal.Decimal) error {
	if status == "" {
		return dErrors.New(dErrors.CodeValidation, "installment status cannot be empty")
	}
	if !KnownScheduleStatuses[status] {
		s.metrics.UnknownVocabulary.WithLabelValues("schedule_status").Inc()
	}
	if paidAmount != nil && paidAmount.IsNegative() {
		return dErrors.New(dErrors.CodeDomainValue, "paid amount cannot be negative")
	}
	if err := s.store.UpdateScheduleStatus(ctx, id, status, paidAmount); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "installment not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "mark installment")
	}
	return nil
}

// AddCollateral appends a guarantee to a contract. The collateral type is
// an open string; unrecognized values are accepted and counted.
func (s *Service) AddCollateral(ctx context.Context, collateral *Collateral) error {
	if !KnownCollateralTypes[collateral.CollateralType] {
		s.metrics.UnknownVocabulary.WithLabelValues("collateral_type").Inc()
	}
	if err := s.store.AddCollateral(ctx, collateral); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "contract not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "add collateral")
	}
	s.metrics.RowsWritten.WithLabelValues("collaterals").Inc()
	return nil
}

// Reassess updates a guarantee's assessed value in place.
func (s *Service) Reassess(ctx context.Context, id domain.CollateralID, value decimal.Decimal) error {
	if value.IsNegative() {
		return dErrors.New(dErrors.CodeDomainValue, "collateral value cannot be negative")
	}
	if err := s.store.ReassessCollateral(ctx, id, value); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "collateral not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "reassess collateral")
	}
	return nil
}
