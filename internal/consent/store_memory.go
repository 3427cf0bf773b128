package consent

import (
	"context"
	"sort"
	"sync"
	"time"

	"finbase/internal/customer"
	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

// InMemory enforces the consent cluster's constraints itself: consents
// referencing a live customer, scopes referencing a live consent, and
// full cascade on customer purge. Revocation is idempotent in effect
// but keeps the first revocation instant.
type InMemory struct {
	mu       sync.RWMutex
	dir      customer.Directory
	consents map[domain.ConsentID]Consent
	scopes   map[domain.ScopeID]Scope
	nextID   int64
}

func NewInMemory(dir customer.Directory) *InMemory {
	return &InMemory{
		dir:      dir,
		consents: make(map[domain.ConsentID]Consent),
		scopes:   make(map[domain.ScopeID]Scope),
	}
}

func (s *InMemory) nextKey() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemory) Create(ctx context.Context, consent *Consent) error {
	live, err := s.dir.Exists(ctx, consent.CustomerID)
	if err != nil {
		return err
	}
	if !live {
		return sentinel.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	consent.ID = domain.ConsentID(s.nextKey())
	s.consents[consent.ID] = *consent
	return nil
}

func (s *InMemory) Find(_ context.Context, id domain.ConsentID) (*Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if consent, ok := s.consents[id]; ok {
		return &consent, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByCustomer(_ context.Context, customerID domain.CustomerID) ([]*Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Consent
	for _, consent := range s.consents {
		if consent.CustomerID == customerID {
			c := consent
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Revoke(_ context.Context, id domain.ConsentID, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	consent, ok := s.consents[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if consent.RevokedAt == nil {
		t := revokedAt.UTC()
		consent.RevokedAt = &t
		s.consents[id] = consent
	}
	return nil
}

func (s *InMemory) AddScopes(_ context.Context, consentID domain.ConsentID, scopes []*Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.consents[consentID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, scope := range scopes {
		scope.ConsentID = consentID
		scope.ID = domain.ScopeID(s.nextKey())
		s.scopes[scope.ID] = *scope
	}
	return nil
}

func (s *InMemory) ListScopes(_ context.Context, consentID domain.ConsentID) ([]*Scope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Scope
	for _, scope := range s.scopes {
		if scope.ConsentID == consentID {
			sc := scope
			out = append(out, &sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) DeleteByCustomer(_ context.Context, customerID domain.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, consent := range s.consents {
		if consent.CustomerID == customerID {
			delete(s.consents, id)
			for scopeID, scope := range s.scopes {
				if scope.ConsentID == id {
					delete(s.scopes, scopeID)
				}
			}
		}
	}
	return nil
}
