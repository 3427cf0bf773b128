package customer

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"finbase/internal/platform/events"
	"finbase/internal/platform/metrics"
	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
	"finbase/pkg/platform/sentinel"
	"finbase/pkg/platform/tx"
)

// Eraser is implemented by every cluster store that owns rows under a
// customer. Purge calls each one inside a single transaction.
type Eraser interface {
	DeleteByCustomer(ctx context.Context, id domain.CustomerID) error
}

// Service orchestrates identity-cluster lifecycle: creation against the
// unique tax_id, and the explicit cascading purge of a customer's entire
// footprint.
type Service struct {
	store     Store
	erasers   []Eraser
	runner    tx.Runner
	publisher *events.Publisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

func NewService(store Store, runner tx.Runner, publisher *events.Publisher, m *metrics.Metrics, erasers ...Eraser) *Service {
	return &Service{
		store:     store,
		erasers:   erasers,
		runner:    runner,
		publisher: publisher,
		metrics:   m,
		tracer:    otel.Tracer("finbase/customer"),
	}
}

// Create registers a new customer root. A duplicate tax_id surfaces as a
// constraint violation; the caller decides whether that means "already
// ingested" or a data problem.
func (s *Service) Create(ctx context.Context, core *Core) error {
	if core.TaxID == "" {
		return dErrors.New(dErrors.CodeValidation, "tax id cannot be empty")
	}
	if core.MaritalStatus != nil && !core.MaritalStatus.IsValid() {
		return dErrors.Newf(dErrors.CodeDomainValue, "invalid marital status %q", *core.MaritalStatus)
	}
	if core.DependentsCount != nil && *core.DependentsCount < 0 {
		return dErrors.New(dErrors.CodeDomainValue, "dependents count cannot be negative")
	}

	if err := s.store.Create(ctx, core); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.ConstraintViolations.WithLabelValues("customer_core").Inc()
			return dErrors.Wrap(err, dErrors.CodeConstraintViolation, "tax id already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "create customer")
	}

	s.metrics.RowsWritten.WithLabelValues("customer_core").Inc()
	_ = s.publisher.Emit(ctx, events.NewEvent(events.KindCustomerCreated, core.ID, "customer_core"))
	return nil
}

// Purge removes the customer and every owned row across all clusters. The
// whole cascade runs in one transaction: a crash mid-purge leaves either the
// full footprint or nothing.
func (s *Service) Purge(ctx context.Context, id domain.CustomerID) error {
	ctx, span := s.tracer.Start(ctx, "customer.purge")
	defer span.End()

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, eraser := range s.erasers {
			if err := eraser.DeleteByCustomer(ctx, id); err != nil {
				return err
			}
		}
		return s.store.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "customer not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "purge customer")
	}

	s.metrics.CustomersPurged.Inc()
	_ = s.publisher.Emit(ctx, events.NewEvent(events.KindCustomerPurged, id, "customer_core"))
	return nil
}

// RegisterContact appends a contact channel; unrecognized channel types are
// accepted and counted, never rejected.
func (s *Service) RegisterContact(ctx context.Context, contact *Contact) error {
	if !KnownContactTypes[contact.Type] {
		s.metrics.UnknownVocabulary.WithLabelValues("contact_type").Inc()
	}
	if err := s.store.AddContact(ctx, contact); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeConstraintViolation, "contact references unknown customer")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "add contact")
	}
	s.metrics.RowsWritten.WithLabelValues("customer_contacts").Inc()
	return nil
}
