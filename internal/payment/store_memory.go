package payment

import (
	"context"
	"sort"
	"sync"
	"time"

	"finbase/internal/customer"
	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	dir    customer.Directory
	orders map[domain.PaymentOrderID]Order
	nextID int64
}

func NewInMemory(dir customer.Directory) *InMemory {
	return &InMemory{
		dir:    dir,
		orders: make(map[domain.PaymentOrderID]Order),
	}
}

func (s *InMemory) Create(ctx context.Context, order *Order) error {
	live, err := s.dir.Exists(ctx, order.CustomerID)
	if err != nil {
		return err
	}
	if !live {
		return sentinel.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	order.ID = domain.PaymentOrderID(s.nextID)
	s.orders[order.ID] = *order
	return nil
}

func (s *InMemory) Find(_ context.Context, id domain.PaymentOrderID) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if order, ok := s.orders[id]; ok {
		return &order, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByCustomer(_ context.Context, customerID domain.CustomerID) ([]*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Order
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			o := order
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Transition(_ context.Context, id domain.PaymentOrderID, target Status, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !order.CanTransitionTo(target) {
		return sentinel.ErrInvalidState
	}
	order.Status = target
	order.CompletedAt = completedAt
	s.orders[id] = order
	return nil
}

func (s *InMemory) DeleteByCustomer(_ context.Context, customerID domain.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, order := range s.orders {
		if order.CustomerID == customerID {
			delete(s.orders, id)
		}
	}
	return nil
}
