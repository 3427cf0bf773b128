package payment

import (
	"context"
	"errors"
	"time"

	"finbase/internal/platform/events"
	"finbase/internal/platform/metrics"
	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
	"finbase/pkg/platform/sentinel"
)

// Service drives the payment order lifecycle and emits one event per
// transition so downstream consumers can track order progress.
type Service struct {
	store     Store
	publisher *events.Publisher
	metrics   *metrics.Metrics
}

func NewService(store Store, publisher *events.Publisher, m *metrics.Metrics) *Service {
	return &Service{store: store, publisher: publisher, metrics: m}
}

// Initiate records a new pending order.
func (s *Service) Initiate(ctx context.Context, order *Order) error {
	if err := s.store.Create(ctx, order); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeConstraintViolation, "payment order references unknown customer")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "initiate payment")
	}
	s.metrics.RowsWritten.WithLabelValues("payment_orders").Inc()
	_ = s.publisher.Emit(ctx, events.NewEvent(events.KindPaymentCreated, order.CustomerID, "payment_orders"))
	return nil
}

// Complete settles a pending order, stamping the settlement instant.
func (s *Service) Complete(ctx context.Context, id domain.PaymentOrderID, now time.Time) error {
	t := now.UTC()
	return s.transition(ctx, id, StatusCompleted, &t, events.KindPaymentCompleted)
}

// Fail marks a pending order as failed.
func (s *Service) Fail(ctx context.Context, id domain.PaymentOrderID) error {
	return s.transition(ctx, id, StatusFailed, nil, events.KindPaymentFailed)
}

// Cancel marks a pending order as cancelled.
func (s *Service) Cancel(ctx context.Context, id domain.PaymentOrderID) error {
	return s.transition(ctx, id, StatusCancelled, nil, events.KindPaymentCancelled)
}

func (s *Service) transition(ctx context.Context, id domain.PaymentOrderID, target Status, completedAt *time.Time, kind events.Kind) error {
	err := s.store.Transition(ctx, id, target, completedAt)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "payment order not found")
		}
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.Wrap(err, dErrors.CodeInvalidState, "payment order is not pending, cannot move to "+target.String())
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "transition payment")
	}
	order, err := s.store.Find(ctx, id)
	if err == nil {
		_ = s.publisher.Emit(ctx, events.NewEvent(kind, order.CustomerID, "payment_orders"))
	}
	return nil
}
