package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"finbase/internal/fx"
	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

type fxOperationRequest struct {
	CurrencyPair   string           `json:"currency_pair"`
	Notional       decimal.Decimal  `json:"notional"`
	Nature         string           `json:"nature"`
	SettlementDate time.Time        `json:"settlement_date"`
	Rate           *decimal.Decimal `json:"rate,omitempty"`
}

func (h *Handler) handleInsertFxOperation(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req fxOperationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	operation, err := fx.NewOperation(domain.CustomerID(customerID),
		req.CurrencyPair, req.Notional, req.Nature, req.SettlementDate, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	operation.Rate = req.Rate

	if err := h.fxOps.Insert(r.Context(), operation); err != nil {
		writeError(w, mapStoreErr(err, "fx operation"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(operation.ID)})
}

func (h *Handler) handleListFxOperations(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	operations, err := h.fxOps.ListByCustomer(r.Context(), domain.CustomerID(customerID))
	if err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list fx operations"))
		return
	}
	writeJSON(w, http.StatusOK, operations)
}
