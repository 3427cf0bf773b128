package card

import (
	"context"

	"finbase/pkg/domain"
)

// Store persists the card cluster. Cards and transactions cascade from the
// customer; invoice deletion detaches transactions (SET NULL) rather than
// deleting them, the one non-cascading relationship in the model.
type Store interface {
	CreateCard(ctx context.Context, c *Card) error
	FindCard(ctx context.Context, id domain.CardID) (*Card, error)
	FindCardByNumber(ctx context.Context, number string) (*Card, error)
	ListCards(ctx context.Context, customerID domain.CustomerID) ([]*Card, error)
	DeleteCard(ctx context.Context, id domain.CardID) error

	CreateInvoice(ctx context.Context, invoice *Invoice) error
	UpdateInvoice(ctx context.Context, invoice *Invoice) error
	DeleteInvoice(ctx context.Context, id domain.InvoiceID) error
	ListInvoices(ctx context.Context, cardID domain.CardID) ([]*Invoice, error)

	InsertTransaction(ctx context.Context, txn *Transaction) error
	FindTransaction(ctx context.Context, id domain.TransactionID) (*Transaction, error)
	AttachToInvoice(ctx context.Context, id domain.TransactionID, invoiceID domain.InvoiceID) error
	ListTransactions(ctx context.Context, cardID domain.CardID) ([]*Transaction, error)

	DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error
}
