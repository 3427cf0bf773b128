package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"finbase/internal/credit"
	"finbase/pkg/domain"
)

type scheduleInput struct {
	InstallmentNumber int             `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
}

type originateRequest struct {
	Product           string          `json:"product_type"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount"`
	RateNominal       decimal.Decimal `json:"rate_nominal"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	MaturityDate      time.Time       `json:"maturity_date"`
	Balloon           bool            `json:"balloon"`
	GuaranteeType     *string         `json:"guarantee_type,omitempty"`
	Schedules         []scheduleInput `json:"schedules"`
}

func buildSchedules(inputs []scheduleInput, now time.Time) []*credit.Schedule {
	out := make([]*credit.Schedule, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, &credit.Schedule{
			InstallmentNumber: in.InstallmentNumber,
			DueDate:           in.DueDate,
			InstallmentAmount: in.InstallmentAmount,
			Status:            credit.ScheduleStatusDue,
			CreatedAt:         now,
		})
	}
	return out
}

func (h *Handler) handleOriginateContract(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req originateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	product, err := credit.ParseProductType(req.Product)
	if err != nil {
		writeError(w, err)
		return
	}
	now := time.Now()
	contract, err := credit.NewContract(domain.CustomerID(customerID), product,
		req.PrincipalAmount, req.RateNominal, req.InstallmentAmount, req.MaturityDate, now)
	if err != nil {
		writeError(w, err)
		return
	}
	contract.Balloon = req.Balloon
	contract.GuaranteeType = req.GuaranteeType

	if err := h.credits.Originate(r.Context(), contract, buildSchedules(req.Schedules, now)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(contract.ID)})
}

type amendRequest struct {
	Schedules []scheduleInput `json:"schedules"`
}

func (h *Handler) handleAmendSchedules(w http.ResponseWriter, r *http.Request) {
	contractID, err := urlID(r, "contractID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req amendRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err = h.credits.Amend(r.Context(), domain.ContractID(contractID), buildSchedules(req.Schedules, time.Now()))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type markInstallmentRequest struct {
	Status     string           `json:"status"`
	PaidAmount *decimal.Decimal `json:"paid_amount,omitempty"`
}

func (h *Handler) handleMarkInstallment(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := urlID(r, "scheduleID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req markInstallmentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err = h.credits.MarkInstallment(r.Context(), domain.ScheduleID(scheduleID), req.Status, req.PaidAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type collateralRequest struct {
	CollateralType  string          `json:"collateral_type"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	Description     *string         `json:"description,omitempty"`
}

func (h *Handler) handleAddCollateral(w http.ResponseWriter, r *http.Request) {
	contractID, err := urlID(r, "contractID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req collateralRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	collateral, err := credit.NewCollateral(domain.ContractID(contractID), req.CollateralType, req.CollateralValue, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	collateral.Description = req.Description

	if err := h.credits.AddCollateral(r.Context(), collateral); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(collateral.ID)})
}

type reassessRequest struct {
	CollateralValue decimal.Decimal `json:"collateral_value"`
}

func (h *Handler) handleReassessCollateral(w http.ResponseWriter, r *http.Request) {
	collateralID, err := urlID(r, "collateralID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req reassessRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	err = h.credits.Reassess(r.Context(), domain.CollateralID(collateralID), req.CollateralValue)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
