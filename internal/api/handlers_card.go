package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"finbase/internal/card"
	"finbase/pkg/domain"
)

type createCardRequest struct {
	CardNumber string  `json:"card_number"`
	Product    string  `json:"product_type"`
	Issuer     *string `json:"issuer,omitempty"`
}

func (h *Handler) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createCardRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	product, err := card.ParseProductType(req.Product)
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := card.NewCard(domain.CustomerID(customerID), req.CardNumber, product, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	c.Issuer = req.Issuer

	if err := h.cards.CreateCard(r.Context(), c); err != nil {
		writeError(w, mapStoreErr(err, "card"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(c.ID)})
}

type invoiceRequest struct {
	StatementDate  time.Time       `json:"statement_date"`
	DueDate        time.Time       `json:"due_date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
}

func (h *Handler) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	cardID, err := urlID(r, "cardID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req invoiceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	invoice, err := card.NewInvoice(domain.CardID(cardID), req.StatementDate, req.DueDate,
		req.TotalAmount, req.MinimumPayment, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.cards.CreateInvoice(r.Context(), invoice); err != nil {
		writeError(w, mapStoreErr(err, "invoice"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(invoice.ID)})
}

// handleDeleteInvoice removes a billing statement. Its transactions are
// detached, never deleted.
func (h *Handler) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := urlID(r, "invoiceID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.cards.DeleteInvoice(r.Context(), domain.InvoiceID(invoiceID)); err != nil {
		writeError(w, mapStoreErr(err, "invoice"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type cardTransactionRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	MerchantName    *string         `json:"merchant_name,omitempty"`
	MCC             *string         `json:"mcc,omitempty"`
	Description     *string         `json:"description,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	PostingDate     *time.Time      `json:"posting_date,omitempty"`
}

func (h *Handler) handleInsertCardTransaction(w http.ResponseWriter, r *http.Request) {
	cardID, err := urlID(r, "cardID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req cardTransactionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	txn, err := card.NewTransaction(domain.CardID(cardID), req.Amount, req.Currency, req.TransactionDate, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	txn.MerchantName = req.MerchantName
	txn.MCC = req.MCC
	txn.Description = req.Description
	txn.PostingDate = req.PostingDate

	if err := h.cards.InsertTransaction(r.Context(), txn); err != nil {
		writeError(w, mapStoreErr(err, "card transaction"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(txn.ID)})
}

type attachRequest struct {
	InvoiceID int64 `json:"invoice_id"`
}

func (h *Handler) handleAttachTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := urlID(r, "transactionID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req attachRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err = h.cards.AttachToInvoice(r.Context(), domain.TransactionID(transactionID), domain.InvoiceID(req.InvoiceID))
	if err != nil {
		writeError(w, mapStoreErr(err, "transaction attachment"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
