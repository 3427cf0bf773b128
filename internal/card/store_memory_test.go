package card

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"finbase/pkg/domain"
	"finbase/pkg/platform/sentinel"
)

type stubDirectory map[domain.CustomerID]bool

func (d stubDirectory) Exists(_ context.Context, id domain.CustomerID) (bool, error) {
	return d[id], nil
}

type CardStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func (s *CardStoreSuite) SetupTest() {
	s.store = NewInMemory(stubDirectory{1: true})
	s.ctx = context.Background()
	s.now = time.Now()
}

func TestCardStoreSuite(t *testing.T) {
	suite.Run(t, new(CardStoreSuite))
}

func (s *CardStoreSuite) createCard(number string) *Card {
	c, err := NewCard(1, number, ProductCredit, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateCard(s.ctx, c))
	return c
}

func (s *CardStoreSuite) createInvoice(cardID domain.CardID) *Invoice {
	invoice, err := NewInvoice(cardID, s.now, s.now.AddDate(0, 0, 10),
		decimal.RequireFromString("500.00"), decimal.RequireFromString("75.00"), s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateInvoice(s.ctx, invoice))
	return invoice
}

func (s *CardStoreSuite) createTransaction(cardID domain.CardID) *Transaction {
	txn, err := NewTransaction(cardID, decimal.RequireFromString("120.90"), "BRL", s.now, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.InsertTransaction(s.ctx, txn))
	return txn
}

// TestCardNumberUniqueness verifies the global card number constraint.
func (s *CardStoreSuite) TestCardNumberUniqueness() {
	s.createCard("4111111111111111")

	dup, err := NewCard(1, "4111111111111111", ProductDebit, s.now)
	s.Require().NoError(err)
	s.Require().ErrorIs(s.store.CreateCard(s.ctx, dup), sentinel.ErrConflict)

	found, err := s.store.FindCardByNumber(s.ctx, "4111111111111111")
	s.Require().NoError(err)
	s.Equal(ProductCredit, found.Product)
}

// TestAttachment verifies the one-way unbilled to billed transition.
func (s *CardStoreSuite) TestAttachment() {
	c := s.createCard("5500000000000004")
	invoice := s.createInvoice(c.ID)
	other := s.createInvoice(c.ID)
	txn := s.createTransaction(c.ID)

	s.Run("attaches an unbilled transaction", func() {
		s.Require().NoError(s.store.AttachToInvoice(s.ctx, txn.ID, invoice.ID))

		found, err := s.store.FindTransaction(s.ctx, txn.ID)
		s.Require().NoError(err)
		s.Require().NotNil(found.InvoiceID)
		s.Equal(invoice.ID, *found.InvoiceID)
	})

	s.Run("attachment is idempotent for the same invoice", func() {
		s.Require().NoError(s.store.AttachToInvoice(s.ctx, txn.ID, invoice.ID))
	})

	s.Run("rejects re-assignment to another invoice", func() {
		err := s.store.AttachToInvoice(s.ctx, txn.ID, other.ID)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})
}

// TestInvoiceDeletionDetaches verifies history survives billing corrections.
func (s *CardStoreSuite) TestInvoiceDeletionDetaches() {
	c := s.createCard("4222222222222")
	invoice := s.createInvoice(c.ID)
	txn := s.createTransaction(c.ID)
	s.Require().NoError(s.store.AttachToInvoice(s.ctx, txn.ID, invoice.ID))

	s.Require().NoError(s.store.DeleteInvoice(s.ctx, invoice.ID))

	found, err := s.store.FindTransaction(s.ctx, txn.ID)
	s.Require().NoError(err)
	s.Nil(found.InvoiceID)
}

// TestInvoiceRevision verifies invoices stay mutable until settled.
func (s *CardStoreSuite) TestInvoiceRevision() {
	c := s.createCard("4000000000000002")
	invoice := s.createInvoice(c.ID)

	invoice.TotalAmount = decimal.RequireFromString("510.00")
	s.Require().NoError(s.store.UpdateInvoice(s.ctx, invoice))

	invoices, err := s.store.ListInvoices(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Require().Len(invoices, 1)
	s.True(invoices[0].TotalAmount.Equal(decimal.RequireFromString("510.00")))
}

// TestCustomerPurge verifies the card cluster cascade.
func (s *CardStoreSuite) TestCustomerPurge() {
	c := s.createCard("6011000000000004")
	s.createInvoice(c.ID)
	s.createTransaction(c.ID)

	s.Require().NoError(s.store.DeleteByCustomer(s.ctx, 1))

	cards, err := s.store.ListCards(s.ctx, 1)
	s.Require().NoError(err)
	s.Empty(cards)

	txns, err := s.store.ListTransactions(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Empty(txns)
}
