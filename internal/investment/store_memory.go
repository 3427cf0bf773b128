package investment

import (
	"context"
	"sort"
	"sync"

	"finbase/internal/customer"
	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

type fundKey struct {
	customerID domain.CustomerID
	cnpj       string
}

type instrumentKey struct {
	customerID domain.CustomerID
	instrument string
}

// InMemory keys each position class by its natural instrument identifier
// within a customer, so re-ingesting a position replaces it in place.
type InMemory struct {
	mu           sync.RWMutex
	dir          customer.Directory
	funds        map[fundKey]PositionFund
	fixedIncome  map[instrumentKey]PositionFixedIncome
	equities     map[instrumentKey]PositionEquity
	treasuries   map[instrumentKey]PositionTreasury
	movements    map[domain.MovementID]Movement
	nextID       int64
}

func NewInMemory(dir customer.Directory) *InMemory {
	return &InMemory{
		dir:         dir,
		funds:       make(map[fundKey]PositionFund),
		fixedIncome: make(map[instrumentKey]PositionFixedIncome),
		equities:    make(map[instrumentKey]PositionEquity),
		treasuries:  make(map[instrumentKey]PositionTreasury),
		movements:   make(map[domain.MovementID]Movement),
	}
}

func (s *InMemory) nextKey() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemory) requireCustomer(ctx context.Context, id domain.CustomerID) error {
	live, err := s.dir.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !live {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *InMemory) UpsertFund(ctx context.Context, position *PositionFund) error {
	if err := s.requireCustomer(ctx, position.CustomerID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := fundKey{position.CustomerID, position.FundCNPJ}
	if existing, ok := s.funds[key]; ok {
		position.ID = existing.ID
	} else {
		position.ID = domain.PositionID(s.nextKey())
	}
	s.funds[key] = *position
	return nil
}

func (s *InMemory) ListFunds(_ context.Context, customerID domain.CustomerID) ([]*PositionFund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*PositionFund
	for _, position := range s.funds {
		if position.CustomerID == customerID {
			p := position
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) UpsertFixedIncome(ctx context.Context, position *PositionFixedIncome) error {
	if err := s.requireCustomer(ctx, position.CustomerID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := instrumentKey{position.CustomerID, position.InstrumentID}
	if existing, ok := s.fixedIncome[key]; ok {
		position.ID = existing.ID
	} else {
		position.ID = domain.PositionID(s.nextKey())
	}
	s.fixedIncome[key] = *position
	return nil
}

func (s *InMemory) ListFixedIncome(_ context.Context, customerID domain.CustomerID) ([]*PositionFixedIncome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*PositionFixedIncome
	for _, position := range s.fixedIncome {
		if position.CustomerID == customerID {
			p := position
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) UpsertEquity(ctx context.Context, position *PositionEquity) error {
	if err := s.requireCustomer(ctx, position.CustomerID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := instrumentKey{position.CustomerID, position.Ticker}
	if existing, ok := s.equities[key]; ok {
		position.ID = existing.ID
	} else {
		position.ID = domain.PositionID(s.nextKey())
	}
	s.equities[key] = *position
	return nil
}

func (s *InMemory) ListEquities(_ context.Context, customerID domain.CustomerID) ([]*PositionEquity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*PositionEquity
	for _, position := range s.equities {
		if position.CustomerID == customerID {
			p := position
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) UpsertTreasury(ctx context.Context, position *PositionTreasury) error {
	if err := s.requireCustomer(ctx, position.CustomerID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := instrumentKey{position.CustomerID, position.InstrumentID}
	if existing, ok := s.treasuries[key]; ok {
		position.ID = existing.ID
	} else {
		position.ID = domain.PositionID(s.nextKey())
	}
	s.treasuries[key] = *position
	return nil
}

func (s *InMemory) ListTreasuries(_ context.Context, customerID domain.CustomerID) ([]*PositionTreasury, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*PositionTreasury
	for _, position := range s.treasuries {
		if position.CustomerID == customerID {
			p := position
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) InsertMovement(ctx context.Context, movement *Movement) error {
	if err := s.requireCustomer(ctx, movement.CustomerID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	movement.ID = domain.MovementID(s.nextKey())
	s.movements[movement.ID] = *movement
	return nil
}

func (s *InMemory) ListMovements(_ context.Context, customerID domain.CustomerID) ([]*Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Movement
	for _, movement := range s.movements {
		if movement.CustomerID == customerID {
			m := movement
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) DeleteByCustomer(_ context.Context, customerID domain.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.funds {
		if key.customerID == customerID {
			delete(s.funds, key)
		}
	}
	for key := range s.fixedIncome {
		if key.customerID == customerID {
			delete(s.fixedIncome, key)
		}
	}
	for key := range s.equities {
		if key.customerID == customerID {
			delete(s.equities, key)
		}
	}
	for key := range s.treasuries {
		if key.customerID == customerID {
			delete(s.treasuries, key)
		}
	}
	for id, movement := range s.movements {
		if movement.CustomerID == customerID {
			delete(s.movements, id)
		}
	}
	return nil
}
