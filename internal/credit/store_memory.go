package credit

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"finbase/internal/customer"
	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

// InMemory enforces the credit cluster's constraints itself: contracts
// referencing a live customer, installment rows referencing a live contract
// with unique installment numbers, and full cascade on delete.
type InMemory struct {
	mu          sync.RWMutex
	dir         customer.Directory
	contracts   map[domain.ContractID]Contract
	schedules   map[domain.ScheduleID]Schedule
	collaterals map[domain.CollateralID]Collateral
	nextID      int64
}

func NewInMemory(dir customer.Directory) *InMemory {
	return &InMemory{
		dir:         dir,
		contracts:   make(map[domain.ContractID]Contract),
		schedules:   make(map[domain.ScheduleID]Schedule),
		collaterals: make(map[domain.CollateralID]Collateral),
	}
}

func (s *InMemory) nextKey() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemory) CreateContract(ctx context.Context, contract *Contract) error {
	live, err := s.dir.Exists(ctx, contract.CustomerID)
	if err != nil {
		return err
	}
	if !live {
		return sentinel.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	contract.ID = domain.ContractID(s.nextKey())
	s.contracts[contract.ID] = *contract
	return nil
}

func (s *InMemory) FindContract(_ context.Context, id domain.ContractID) (*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if contract, ok := s.contracts[id]; ok {
		return &contract, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListContracts(_ context.Context, customerID domain.CustomerID) ([]*Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Contract
	for _, contract := range s.contracts {
		if contract.CustomerID == customerID {
			c := contract
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) DeleteContract(_ context.Context, id domain.ContractID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[id]; !ok {
		return sentinel.ErrNotFound
	}
	s.dropContract(id)
	return nil
}

func (s *InMemory) InsertSchedules(_ context.Context, contractID domain.ContractID, schedules []*Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertSchedulesLocked(contractID, schedules)
}

func (s *InMemory) ReplaceSchedules(_ context.Context, contractID domain.ContractID, schedules []*Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[contractID]; !ok {
		return sentinel.ErrNotFound
	}
	for id, sched := range s.schedules {
		if sched.ContractID == contractID {
			delete(s.schedules, id)
		}
	}
	return s.insertSchedulesLocked(contractID, schedules)
}

func (s *InMemory) insertSchedulesLocked(contractID domain.ContractID, schedules []*Schedule) error {
	if _, ok := s.contracts[contractID]; !ok {
		return sentinel.ErrNotFound
	}
	taken := make(map[int]bool)
	for _, sched := range s.schedules {
		if sched.ContractID == contractID {
			taken[sched.InstallmentNumber] = true
		}
	}
	for _, sched := range schedules {
		if taken[sched.InstallmentNumber] {
			return sentinel.ErrConflict
		}
		taken[sched.InstallmentNumber] = true
	}
	for _, sched := range schedules {
		sched.ContractID = contractID
		sched.ID = domain.ScheduleID(s.nextKey())
		s.schedules[sched.ID] = *sched
	}
	return nil
}

func (s *InMemory) ListSchedules(_ context.Context, contractID domain.ContractID) ([]*Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Schedule
	for _, sched := range s.schedules {
		if sched.ContractID == contractID {
			sc := sched
			out = append(out, &sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out, nil
}

func (s *InMemory) UpdateScheduleStatus(_ context.Context, id domain.ScheduleID, status string, paidAmount *decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	sched.Status = status
	sched.PaidAmount = paidAmount
	s.schedules[id] = sched
	return nil
}

func (s *InMemory) AddCollateral(_ context.Context, collateral *Collateral) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[collateral.ContractID]; !ok {
		return sentinel.ErrNotFound
	}
	collateral.ID = domain.CollateralID(s.nextKey())
	s.collaterals[collateral.ID] = *collateral
	return nil
}

func (s *InMemory) ListCollaterals(_ context.Context, contractID domain.ContractID) ([]*Collateral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Collateral
	for _, collateral := range s.collaterals {
		if collateral.ContractID == contractID {
			c := collateral
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) ReassessCollateral(_ context.Context, id domain.CollateralID, value decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	collateral, ok := s.collaterals[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	collateral.CollateralValue = value
	s.collaterals[id] = collateral
	return nil
}

func (s *InMemory) DeleteByCustomer(_ context.Context, customerID domain.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, contract := range s.contracts {
		if contract.CustomerID == customerID {
			s.dropContract(id)
		}
	}
	return nil
}

// dropContract cascades schedules and collaterals; callers hold the lock.
func (s *InMemory) dropContract(id domain.ContractID) {
	delete(s.contracts, id)
	for schedID, sched := range s.schedules {
		if sched.ContractID == id {
			delete(s.schedules, schedID)
		}
	}
	for collID, collateral := range s.collaterals {
		if collateral.ContractID == id {
			delete(s.collaterals, collID)
		}
	}
}
