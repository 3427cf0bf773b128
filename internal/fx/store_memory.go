package fx

import (
	"context"
	"sort"
	"sync"

	"finbase/internal/customer"
	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

type InMemory struct {
	mu         sync.RWMutex
	dir        customer.Directory
	operations map[domain.FxOperationID]Operation
	nextID     int64
}

func NewInMemory(dir customer.Directory) *InMemory {
	return &InMemory{
		dir:        dir,
		operations: make(map[domain.FxOperationID]Operation),
	}
}

func (s *InMemory) Insert(ctx context.Context, operation *Operation) error {
	live, err := s.dir.Exists(ctx, operation.CustomerID)
	if err != nil {
		return err
	}
	if !live {
		return sentinel.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	operation.ID = domain.FxOperationID(s.nextID)
	s.operations[operation.ID] = *operation
	return nil
}

func (s *InMemory) Find(_ context.Context, id domain.FxOperationID) (*Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if operation, ok := s.operations[id]; ok {
		return &operation, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByCustomer(_ context.Context, customerID domain.CustomerID) ([]*Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Operation
	for _, operation := range s.operations {
		if operation.CustomerID == customerID {
			o := operation
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) DeleteByCustomer(_ context.Context, customerID domain.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, operation := range s.operations {
		if operation.CustomerID == customerID {
			delete(s.operations, id)
		}
	}
	return nil
}
