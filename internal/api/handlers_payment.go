package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"finbase/internal/payment"
	"finbase/pkg/domain"
)

type paymentOrderRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Scope    string          `json:"scope"`
	PixE2EID *string         `json:"pix_e2e_id,omitempty"`
}

func (h *Handler) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req paymentOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	order, err := payment.NewOrder(domain.CustomerID(customerID), req.Amount, req.Currency, req.Scope, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	order.PixE2EID = req.PixE2EID

	if err := h.payments.Initiate(r.Context(), order); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     int64(order.ID),
		"status": order.Status.String(),
	})
}

func (h *Handler) handleCompletePayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.payments.Complete(r.Context(), domain.PaymentOrderID(orderID), time.Now()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFailPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.payments.Fail(r.Context(), domain.PaymentOrderID(orderID)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlID(r, "orderID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.payments.Cancel(r.Context(), domain.PaymentOrderID(orderID)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
