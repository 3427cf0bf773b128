package card

import (
	"time"

	"github.com/shopspring/decimal"

	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

// ProductType is a closed enumeration of card products, persisted as its
// string value.
type ProductType string

const (
	ProductCredit ProductType = "credit"
	ProductDebit  ProductType = "debit"
	ProductHybrid ProductType = "hybrid"
)

// IsValid checks if the product type is one of the supported enum values.
func (p ProductType) IsValid() bool {
	switch p {
	case ProductCredit, ProductDebit, ProductHybrid:
		return true
	}
	return false
}

func (p ProductType) String() string { return string(p) }

// ParseProductType validates a card product type from an upstream API.
func ParseProductType(s string) (ProductType, error) {
	p := ProductType(s)
	if !p.IsValid() {
		return "", dErrors.Newf(dErrors.CodeDomainValue, "invalid card product type %q", s)
	}
	return p, nil
}

// Card is one card product instance. The card number is globally unique
// across all customers.
type Card struct {
	ID         domain.CardID
	CustomerID domain.CustomerID
	CardNumber string
	Product    ProductType
	Issuer     *string
	CreatedAt  time.Time
}

// NewCard validates a discovered card.
func NewCard(customerID domain.CustomerID, cardNumber string, product ProductType, now time.Time) (*Card, error) {
	if customerID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "card requires a customer id")
	}
	if cardNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "card number cannot be empty")
	}
	if len(cardNumber) > 20 {
		return nil, dErrors.New(dErrors.CodeValidation, "card number must be 20 characters or less")
	}
	if !product.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeDomainValue, "invalid card product type %q", product)
	}
	return &Card{
		CustomerID: customerID,
		CardNumber: cardNumber,
		Product:    product,
		CreatedAt:  now.UTC(),
	}, nil
}

// Invoice is one billing statement. Totals may be revised until the due
// date, so rows are mutable, the single mutable header in the card cluster.
type Invoice struct {
	ID             domain.InvoiceID
	CardID         domain.CardID
	StatementDate  time.Time
	DueDate        time.Time
	TotalAmount    decimal.Decimal
	MinimumPayment decimal.Decimal
	CreatedAt      time.Time
}

// NewInvoice validates a billing statement.
func NewInvoice(cardID domain.CardID, statementDate, dueDate time.Time, total, minimum decimal.Decimal, now time.Time) (*Invoice, error) {
	if cardID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "invoice requires a card id")
	}
	if statementDate.IsZero() || dueDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "invoice requires statement and due dates")
	}
	if minimum.GreaterThan(total) {
		return nil, dErrors.New(dErrors.CodeDomainValue, "minimum payment cannot exceed total amount")
	}
	return &Invoice{
		CardID:         cardID,
		StatementDate:  statementDate,
		DueDate:        dueDate,
		TotalAmount:    total,
		MinimumPayment: minimum,
		CreatedAt:      now.UTC(),
	}, nil
}

// Transaction is one purchase or payment event on a card, append-only. It
// may exist unbilled (InvoiceID nil) and later be attached when the
// statement closes. Attachment is one-way: re-assigning a billed transaction
// is abnormal input and is rejected. Deleting an invoice detaches its
// transactions instead of deleting them; history must survive billing
// corrections.
type Transaction struct {
	ID              domain.TransactionID
	CardID          domain.CardID
	InvoiceID       *domain.InvoiceID
	Amount          decimal.Decimal
	Currency        string
	MerchantName    *string
	MCC             *string
	Description     *string
	TransactionDate time.Time
	PostingDate     *time.Time
	CreatedAt       time.Time
}

// NewTransaction validates a card event.
func NewTransaction(cardID domain.CardID, amount decimal.Decimal, currency string, transactionDate time.Time, now time.Time) (*Transaction, error) {
	if cardID.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "transaction requires a card id")
	}
	if transactionDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "transaction requires a transaction date")
	}
	currency = domain.CurrencyOrDefault(currency)
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}
	return &Transaction{
		CardID:          cardID,
		Amount:          amount,
		Currency:        currency,
		TransactionDate: transactionDate,
		CreatedAt:       now.UTC(),
	}, nil
}

// CanAttach reports whether the transaction may be attached to an invoice.
// Only the unbilled → billed transition is allowed.
func (t *Transaction) CanAttach(invoiceID domain.InvoiceID) error {
	if t.InvoiceID != nil && *t.InvoiceID != invoiceID {
		return dErrors.New(dErrors.CodeInvalidState, "transaction is already billed to another invoice")
	}
	return nil
}
