package investment

import (
	"context"
	"errors"

	"finbase/internal/platform/metrics"
	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
	"finbase/pkg/platform/sentinel"
)

// Service fronts the position and movement stores. Positions carry current
// state and are replaced on re-ingestion; movements accumulate.
type Service struct {
	store   Store
	metrics *metrics.Metrics
}

func NewService(store Store, m *metrics.Metrics) *Service {
	return &Service{store: store, metrics: m}
}

func (s *Service) IngestFund(ctx context.Context, position *PositionFund) error {
	if position.FundCNPJ == "" {
		return dErrors.New(dErrors.CodeValidation, "fund position requires a CNPJ")
	}
	if err := s.store.UpsertFund(ctx, position); err != nil {
		return s.mapUpsertErr(err, "fund position")
	}
	s.metrics.RowsWritten.WithLabelValues("positions_funds").Inc()
	return nil
}

func (s *Service) IngestFixedIncome(ctx context.Context, position *PositionFixedIncome) error {
	if position.InstrumentID == "" {
		return dErrors.New(dErrors.CodeValidation, "fixed income position requires an instrument id")
	}
	if err := s.store.UpsertFixedIncome(ctx, position); err != nil {
		return s.mapUpsertErr(err, "fixed income position")
	}
	s.metrics.RowsWritten.WithLabelValues("positions_fixed_income").Inc()
	return nil
}

func (s *Service) IngestEquity(ctx context.Context, position *PositionEquity) error {
	if position.Ticker == "" {
		return dErrors.New(dErrors.CodeValidation, "equity position requires a ticker")
	}
	if err := s.store.UpsertEquity(ctx, position); err != nil {
		return s.mapUpsertErr(err, "equity position")
	}
	s.metrics.RowsWritten.WithLabelValues("positions_equity").Inc()
	return nil
}

func (s *Service) IngestTreasury(ctx context.Context, position *PositionTreasury) error {
	if position.InstrumentID == "" {
		return dErrors.New(dErrors.CodeValidation, "treasury position requires an instrument id")
	}
	if err := s.store.UpsertTreasury(ctx, position); err != nil {
		return s.mapUpsertErr(err, "treasury position")
	}
	s.metrics.RowsWritten.WithLabelValues("positions_treasury").Inc()
	return nil
}

// RecordMovement appends a movement fact. Movement type is an open string;
// unrecognized values are accepted and counted.
func (s *Service) RecordMovement(ctx context.Context, movement *Movement) error {
	if !KnownMovementTypes[movement.MovementType] {
		s.metrics.UnknownVocabulary.WithLabelValues("movement_type").Inc()
	}
	if err := s.store.InsertMovement(ctx, movement); err != nil {
		return s.mapUpsertErr(err, "movement")
	}
	s.metrics.RowsWritten.WithLabelValues("investment_movements").Inc()
	return nil
}

func (s *Service) Movements(ctx context.Context, customerID domain.CustomerID) ([]*Movement, error) {
	return s.store.ListMovements(ctx, customerID)
}

func (s *Service) mapUpsertErr(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeConstraintViolation, what+" references unknown customer")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "write "+what)
}

// DeleteByCustomer implements the purge contract for the investment cluster.
func (s *Service) DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error {
	return s.store.DeleteByCustomer(ctx, customerID)
}
