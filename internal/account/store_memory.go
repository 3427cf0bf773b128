package account

import (
	"context"
	"sort"
	"sync"

	"finbase/internal/customer"
	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

type balanceKey struct {
	accountID domain.AccountID
	asOfUnix  int64
}

// InMemory enforces the cluster's declared constraints itself: accounts must
// reference a live customer, series rows must reference a live account, and
// (account_id, as_of) is unique for balance snapshots.
type InMemory struct {
	mu           sync.RWMutex
	dir          customer.Directory
	accounts     map[domain.AccountID]Account
	balances     map[domain.BalanceID]Balance
	balanceKeys  map[balanceKey]struct{}
	transactions map[domain.TransactionID]Transaction
	nextID       int64
}

func NewInMemory(dir customer.Directory) *InMemory {
	return &InMemory{
		dir:          dir,
		accounts:     make(map[domain.AccountID]Account),
		balances:     make(map[domain.BalanceID]Balance),
		balanceKeys:  make(map[balanceKey]struct{}),
		transactions: make(map[domain.TransactionID]Transaction),
	}
}

func (s *InMemory) nextKey() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemory) CreateAccount(ctx context.Context, acct *Account) error {
	live, err := s.dir.Exists(ctx, acct.CustomerID)
	if err != nil {
		return err
	}
	if !live {
		return sentinel.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct.ID = domain.AccountID(s.nextKey())
	s.accounts[acct.ID] = *acct
	return nil
}

func (s *InMemory) FindAccount(_ context.Context, id domain.AccountID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acct, ok := s.accounts[id]; ok {
		return &acct, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListAccounts(_ context.Context, customerID domain.CustomerID) ([]*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Account
	for _, acct := range s.accounts {
		if acct.CustomerID == customerID {
			a := acct
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) DeleteAccount(_ context.Context, id domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.accounts, id)
	s.dropSeries(id)
	return nil
}

func (s *InMemory) InsertBalance(_ context.Context, balance *Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[balance.AccountID]; !ok {
		return sentinel.ErrNotFound
	}
	key := balanceKey{balance.AccountID, balance.AsOf.UTC().UnixNano()}
	if _, dup := s.balanceKeys[key]; dup {
		return sentinel.ErrConflict
	}

	balance.ID = domain.BalanceID(s.nextKey())
	s.balances[balance.ID] = *balance
	s.balanceKeys[key] = struct{}{}
	return nil
}

func (s *InMemory) LatestBalance(_ context.Context, accountID domain.AccountID) (*Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Balance
	for _, balance := range s.balances {
		if balance.AccountID != accountID {
			continue
		}
		if latest == nil || balance.AsOf.After(latest.AsOf) {
			b := balance
			latest = &b
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return latest, nil
}

func (s *InMemory) ListBalances(_ context.Context, accountID domain.AccountID) ([]*Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Balance
	for _, balance := range s.balances {
		if balance.AccountID == accountID {
			b := balance
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AsOf.Before(out[j].AsOf) })
	return out, nil
}

func (s *InMemory) InsertTransaction(_ context.Context, txn *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[txn.AccountID]; !ok {
		return sentinel.ErrNotFound
	}
	txn.ID = domain.TransactionID(s.nextKey())
	s.transactions[txn.ID] = *txn
	return nil
}

func (s *InMemory) ListTransactions(_ context.Context, accountID domain.AccountID) ([]*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Transaction
	for _, txn := range s.transactions {
		if txn.AccountID == accountID {
			t := txn
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) DeleteByCustomer(_ context.Context, customerID domain.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, acct := range s.accounts {
		if acct.CustomerID == customerID {
			delete(s.accounts, id)
			s.dropSeries(id)
		}
	}
	return nil
}

// dropSeries removes the time series owned by an account; callers hold the lock.
func (s *InMemory) dropSeries(accountID domain.AccountID) {
	for id, balance := range s.balances {
		if balance.AccountID == accountID {
			delete(s.balances, id)
			delete(s.balanceKeys, balanceKey{accountID, balance.AsOf.UTC().UnixNano()})
		}
	}
	for id, txn := range s.transactions {
		if txn.AccountID == accountID {
			delete(s.transactions, id)
		}
	}
}
