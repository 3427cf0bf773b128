package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"finbase/internal/account"
	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
	"finbase/pkg/platform/sentinel"
)

type createAccountRequest struct {
	Type          string     `json:"account_type"`
	Institution   *string    `json:"institution,omitempty"`
	BranchNumber  *string    `json:"branch_number,omitempty"`
	AccountNumber *string    `json:"account_number,omitempty"`
	OpeningDate   *time.Time `json:"opening_date,omitempty"`
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createAccountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	accountType, err := account.ParseType(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	acct, err := account.NewAccount(domain.CustomerID(customerID), accountType, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	acct.Institution = req.Institution
	acct.BranchNumber = req.BranchNumber
	acct.AccountNumber = req.AccountNumber
	acct.OpeningDate = req.OpeningDate

	if err := h.accounts.CreateAccount(r.Context(), acct); err != nil {
		writeError(w, mapStoreErr(err, "account"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(acct.ID)})
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	accounts, err := h.accounts.ListAccounts(r.Context(), domain.CustomerID(customerID))
	if err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list accounts"))
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

type balanceRequest struct {
	AvailableBalance decimal.Decimal `json:"available_balance"`
	AsOf             time.Time       `json:"as_of"`
}

func (h *Handler) handleInsertBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := urlID(r, "accountID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req balanceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	balance, err := account.NewBalance(domain.AccountID(accountID), req.AvailableBalance, req.AsOf)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.InsertBalance(r.Context(), balance); err != nil {
		writeError(w, mapStoreErr(err, "balance snapshot"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(balance.ID)})
}

func (h *Handler) handleLatestBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := urlID(r, "accountID")
	if err != nil {
		writeError(w, err)
		return
	}
	balance, err := h.accounts.LatestBalance(r.Context(), domain.AccountID(accountID))
	if err != nil {
		writeError(w, mapStoreErr(err, "balance"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":        int64(balance.AccountID),
		"available_balance": balance.AvailableBalance,
		"as_of":             balance.AsOf,
	})
}

type accountTransactionRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	MCC             *string         `json:"mcc,omitempty"`
	Description     *string         `json:"description,omitempty"`
	PostingDate     time.Time       `json:"posting_date"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"`
}

func (h *Handler) handleInsertAccountTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, err := urlID(r, "accountID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req accountTransactionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	txn, err := account.NewTransaction(domain.AccountID(accountID), req.Amount, req.Currency, req.PostingDate, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	txn.MCC = req.MCC
	txn.Description = req.Description
	txn.TransactionDate = req.TransactionDate

	if err := h.accounts.InsertTransaction(r.Context(), txn); err != nil {
		writeError(w, mapStoreErr(err, "account transaction"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(txn.ID)})
}

// mapStoreErr translates store sentinels for handlers that call a store
// directly, mirroring what the services do for orchestrated writes.
func mapStoreErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, what+" target not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConstraintViolation, what+" violates a uniqueness constraint")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, what+" rejected by lifecycle rule")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "write "+what)
	}
}
