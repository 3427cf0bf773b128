package customer

import (
	"context"
	"strings"
	"sync"

	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

// InMemory is the reference store for the identity cluster. It enforces the
// same constraints the relational schema declares: unique tax_id, contact
// rows referencing a live customer, contacts cascading on customer delete.
type InMemory struct {
	mu        sync.RWMutex
	customers map[domain.CustomerID]Core
	byTaxID   map[string]domain.CustomerID
	contacts  map[domain.ContactID]Contact
	nextID    int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		customers: make(map[domain.CustomerID]Core),
		byTaxID:   make(map[string]domain.CustomerID),
		contacts:  make(map[domain.ContactID]Contact),
	}
}

func (s *InMemory) nextKey() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemory) Create(_ context.Context, core *Core) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := taxKey(core.TaxID)
	if _, taken := s.byTaxID[key]; taken {
		return sentinel.ErrConflict
	}

	core.ID = domain.CustomerID(s.nextKey())
	s.customers[core.ID] = *core
	s.byTaxID[key] = core.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CustomerID) (*Core, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if core, ok := s.customers[id]; ok {
		return &core, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByTaxID(_ context.Context, taxID string) (*Core, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byTaxID[taxKey(taxID)]; ok {
		core := s.customers[id]
		return &core, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, core *Core) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[core.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if taxKey(existing.TaxID) != taxKey(core.TaxID) {
		if _, taken := s.byTaxID[taxKey(core.TaxID)]; taken {
			return sentinel.ErrConflict
		}
		delete(s.byTaxID, taxKey(existing.TaxID))
		s.byTaxID[taxKey(core.TaxID)] = core.ID
	}
	s.customers[core.ID] = *core
	return nil
}

func (s *InMemory) Delete(_ context.Context, id domain.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	core, ok := s.customers[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.customers, id)
	delete(s.byTaxID, taxKey(core.TaxID))
	for contactID, contact := range s.contacts {
		if contact.CustomerID == id {
			delete(s.contacts, contactID)
		}
	}
	return nil
}

func (s *InMemory) Exists(_ context.Context, id domain.CustomerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.customers[id]
	return ok, nil
}

func (s *InMemory) AddContact(_ context.Context, contact *Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[contact.CustomerID]; !ok {
		return sentinel.ErrNotFound
	}
	contact.ID = domain.ContactID(s.nextKey())
	s.contacts[contact.ID] = *contact
	return nil
}

func (s *InMemory) ListContacts(_ context.Context, id domain.CustomerID) ([]*Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Contact
	for _, contact := range s.contacts {
		if contact.CustomerID == id {
			c := contact
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *InMemory) DeleteContact(_ context.Context, id domain.ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contacts[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

func taxKey(taxID string) string {
	return strings.TrimSpace(taxID)
}
