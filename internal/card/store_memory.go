package card

import (
	"context"
	"sort"
	"strings"
	"sync"

	"finbase/internal/customer"
	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

// InMemory enforces the card cluster's constraints itself: unique card
// number, headers referencing live parents, cascade on card delete, detach
// on invoice delete, one-way invoice attachment.
type InMemory struct {
	mu           sync.RWMutex
	dir          customer.Directory
	cards        map[domain.CardID]Card
	byNumber     map[string]domain.CardID
	invoices     map[domain.InvoiceID]Invoice
	transactions map[domain.TransactionID]Transaction
	nextID       int64
}

func NewInMemory(dir customer.Directory) *InMemory {
	return &InMemory{
		dir:          dir,
		cards:        make(map[domain.CardID]Card),
		byNumber:     make(map[string]domain.CardID),
		invoices:     make(map[domain.InvoiceID]Invoice),
		transactions: make(map[domain.TransactionID]Transaction),
	}
}

func (s *InMemory) nextKey() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemory) CreateCard(ctx context.Context, c *Card) error {
	live, err := s.dir.Exists(ctx, c.CustomerID)
	if err != nil {
		return err
	}
	if !live {
		return sentinel.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := numberKey(c.CardNumber)
	if _, taken := s.byNumber[key]; taken {
		return sentinel.ErrConflict
	}
	c.ID = domain.CardID(s.nextKey())
	s.cards[c.ID] = *c
	s.byNumber[key] = c.ID
	return nil
}

func (s *InMemory) FindCard(_ context.Context, id domain.CardID) (*Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.cards[id]; ok {
		return &c, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindCardByNumber(_ context.Context, number string) (*Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byNumber[numberKey(number)]; ok {
		c := s.cards[id]
		return &c, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListCards(_ context.Context, customerID domain.CustomerID) ([]*Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Card
	for _, c := range s.cards {
		if c.CustomerID == customerID {
			cc := c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) DeleteCard(_ context.Context, id domain.CardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.dropCard(id, c.CardNumber)
	return nil
}

func (s *InMemory) CreateInvoice(_ context.Context, invoice *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[invoice.CardID]; !ok {
		return sentinel.ErrNotFound
	}
	invoice.ID = domain.InvoiceID(s.nextKey())
	s.invoices[invoice.ID] = *invoice
	return nil
}

func (s *InMemory) UpdateInvoice(_ context.Context, invoice *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[invoice.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.invoices[invoice.ID] = *invoice
	return nil
}

// DeleteInvoice removes the statement but detaches its transactions:
// transaction history must not be destructible by a billing correction.
func (s *InMemory) DeleteInvoice(_ context.Context, id domain.InvoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.invoices, id)
	for txnID, txn := range s.transactions {
		if txn.InvoiceID != nil && *txn.InvoiceID == id {
			txn.InvoiceID = nil
			s.transactions[txnID] = txn
		}
	}
	return nil
}

func (s *InMemory) ListInvoices(_ context.Context, cardID domain.CardID) ([]*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Invoice
	for _, invoice := range s.invoices {
		if invoice.CardID == cardID {
			inv := invoice
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) InsertTransaction(_ context.Context, txn *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[txn.CardID]; !ok {
		return sentinel.ErrNotFound
	}
	if txn.InvoiceID != nil {
		if _, ok := s.invoices[*txn.InvoiceID]; !ok {
			return sentinel.ErrNotFound
		}
	}
	txn.ID = domain.TransactionID(s.nextKey())
	s.transactions[txn.ID] = *txn
	return nil
}

func (s *InMemory) FindTransaction(_ context.Context, id domain.TransactionID) (*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if txn, ok := s.transactions[id]; ok {
		return &txn, nil
	}
	return nil, sentinel.ErrNotFound
}

// AttachToInvoice binds an unbilled transaction to a closed statement. The
// transition is one-way; attaching an already-billed transaction to a
// different invoice is rejected.
func (s *InMemory) AttachToInvoice(_ context.Context, id domain.TransactionID, invoiceID domain.InvoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := s.invoices[invoiceID]; !ok {
		return sentinel.ErrNotFound
	}
	if err := txn.CanAttach(invoiceID); err != nil {
		return sentinel.ErrInvalidState
	}
	txn.InvoiceID = &invoiceID
	s.transactions[id] = txn
	return nil
}

func (s *InMemory) ListTransactions(_ context.Context, cardID domain.CardID) ([]*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Transaction
	for _, txn := range s.transactions {
		if txn.CardID == cardID {
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

	for id, c := range s.cards {
		if c.CustomerID == customerID {
			s.dropCard(id, c.CardNumber)
		}
	}
	return nil
}

// dropCard cascades a card's invoices and transactions; callers hold the lock.
func (s *InMemory) dropCard(id domain.CardID, number string) {
	delete(s.cards, id)
	delete(s.byNumber, numberKey(number))
	for invoiceID, invoice := range s.invoices {
		if invoice.CardID == id {
			delete(s.invoices, invoiceID)
		}
	}
	for txnID, txn := range s.transactions {
		if txn.CardID == id {
			delete(s.transactions, txnID)
		}
	}
}

func numberKey(number string) string {
	return strings.TrimSpace(number)
}
