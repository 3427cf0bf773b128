package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"finbase/internal/account"
	"finbase/internal/card"
	"finbase/internal/consent"
	"finbase/internal/credit"
	"finbase/internal/customer"
	"finbase/internal/fx"
	"finbase/internal/investment"
	"finbase/internal/payment"
	"finbase/pkg/domain"
	dErrors "finbase/pkg/domain-errors"
)

// Handler is the ingestion and lifecycle surface over the data core. It
// delegates to domain services and stores without embedding business
// logic so transport concerns remain isolated.
type Handler struct {
	log *slog.Logger

	customers   *customer.Service
	credits     *credit.Service
	investments *investment.Service
	consents    *consent.Service
	payments    *payment.Service

	customerStore customer.Store
	accounts      account.Store
	cards         card.Store
	fxOps         fx.Store
}

// Services groups the orchestrating services the handler depends on.
type Services struct {
	Customers   *customer.Service
	Credits     *credit.Service
	Investments *investment.Service
	Consents    *consent.Service
	Payments    *payment.Service
}

// Stores groups the cluster stores the handler reads and writes directly
// when no orchestration is needed.
type Stores struct {
	Customers customer.Store
	Accounts  account.Store
	Cards     card.Store
	FxOps     fx.Store
}

func NewHandler(logger *slog.Logger, services Services, stores Stores) *Handler {
	return &Handler{
		log:           logger,
		customers:     services.Customers,
		credits:       services.Credits,
		investments:   services.Investments,
		consents:      services.Consents,
		payments:      services.Payments,
		customerStore: stores.Customers,
		accounts:      stores.Accounts,
		cards:         stores.Cards,
		fxOps:         stores.FxOps,
	}
}

// Register mounts every route on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.handleCreateCustomer)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.handleGetCustomer)
			r.Delete("/", h.handlePurgeCustomer)
			r.Post("/contacts", h.handleRegisterContact)

			r.Post("/accounts", h.handleCreateAccount)
			r.Get("/accounts", h.handleListAccounts)
			r.Post("/cards", h.handleCreateCard)
			r.Post("/credit-contracts", h.handleOriginateContract)
			r.Post("/fx-operations", h.handleInsertFxOperation)
			r.Get("/fx-operations", h.handleListFxOperations)
			r.Post("/consents", h.handleGrantConsent)
			r.Get("/consents/scopes", h.handleActiveScopes)
			r.Post("/payment-orders", h.handleInitiatePayment)

			r.Post("/positions/funds", h.handleIngestFund)
			r.Post("/positions/fixed-income", h.handleIngestFixedIncome)
			r.Post("/positions/equities", h.handleIngestEquity)
			r.Post("/positions/treasury", h.handleIngestTreasury)
			r.Post("/movements", h.handleRecordMovement)
		})
	})

	r.Route("/accounts/{accountID}", func(r chi.Router) {
		r.Post("/balances", h.handleInsertBalance)
		r.Get("/balances/latest", h.handleLatestBalance)
		r.Post("/transactions", h.handleInsertAccountTransaction)
	})

	r.Route("/cards/{cardID}", func(r chi.Router) {
		r.Post("/invoices", h.handleCreateInvoice)
		r.Post("/transactions", h.handleInsertCardTransaction)
	})
	r.Delete("/invoices/{invoiceID}", h.handleDeleteInvoice)
	r.Post("/card-transactions/{transactionID}/invoice", h.handleAttachTransaction)

	r.Route("/credit-contracts/{contractID}", func(r chi.Router) {
		r.Put("/schedules", h.handleAmendSchedules)
		r.Post("/collaterals", h.handleAddCollateral)
	})
	r.Patch("/schedules/{scheduleID}", h.handleMarkInstallment)
	r.Patch("/collaterals/{collateralID}", h.handleReassessCollateral)

	r.Post("/consents/{consentID}/revoke", h.handleRevokeConsent)

	r.Route("/payment-orders/{orderID}", func(r chi.Router) {
		r.Post("/complete", h.handleCompletePayment)
		r.Post("/fail", h.handleFailPayment)
		r.Post("/cancel", h.handleCancelPayment)
	})
}

// urlID parses a positive integer path parameter.
func urlID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.Newf(dErrors.CodeValidation, "invalid %s %q", name, raw)
	}
	return id, nil
}

func decode(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid request body")
	}
	return nil
}

type createCustomerRequest struct {
	TaxID           string     `json:"tax_id"`
	Birthdate       *time.Time `json:"birthdate,omitempty"`
	MaritalStatus   *string    `json:"marital_status,omitempty"`
	DependentsCount *int       `json:"dependents_count,omitempty"`
	PEPFlag         bool       `json:"pep_flag"`
}

type customerResponse struct {
	ID              int64      `json:"id"`
	TaxID           string     `json:"tax_id"`
	Birthdate       *time.Time `json:"birthdate,omitempty"`
	MaritalStatus   *string    `json:"marital_status,omitempty"`
	DependentsCount *int       `json:"dependents_count,omitempty"`
	PEPFlag         bool       `json:"pep_flag"`
}

func toCustomerResponse(core *customer.Core) customerResponse {
	resp := customerResponse{
		ID:              int64(core.ID),
		TaxID:           core.TaxID,
		Birthdate:       core.Birthdate,
		DependentsCount: core.DependentsCount,
		PEPFlag:         core.PEPFlag,
	}
	if core.MaritalStatus != nil {
		v := core.MaritalStatus.String()
		resp.MaritalStatus = &v
	}
	return resp
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	core, err := customer.NewCore(req.TaxID)
	if err != nil {
		writeError(w, err)
		return
	}
	core.Birthdate = req.Birthdate
	core.PEPFlag = req.PEPFlag
	if req.MaritalStatus != nil {
		status, err := customer.ParseMaritalStatus(*req.MaritalStatus)
		if err != nil {
			writeError(w, err)
			return
		}
		core.MaritalStatus = &status
	}
	if req.DependentsCount != nil {
		if err := core.SetDependents(*req.DependentsCount); err != nil {
			writeError(w, err)
			return
		}
	}

	if err := h.customers.Create(r.Context(), core); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(core))
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	core, err := h.customerStore.FindByID(r.Context(), domain.CustomerID(id))
	if err != nil {
		writeError(w, mapStoreErr(err, "customer"))
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(core))
}

func (h *Handler) handlePurgeCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.customers.Purge(r.Context(), domain.CustomerID(id)); err != nil {
		writeError(w, err)
		return
	}
	h.log.Info("purged customer and full footprint", "customer_id", int64(id))
	w.WriteHeader(http.StatusNoContent)
}

type contactRequest struct {
	Type  string `json:"contact_type"`
	Value string `json:"contact_value"`
}

func (h *Handler) handleRegisterContact(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req contactRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	contact, err := customer.NewContact(domain.CustomerID(id), req.Type, req.Value, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.customers.RegisterContact(r.Context(), contact); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(contact.ID)})
}
