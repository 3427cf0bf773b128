package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"finbase/internal/investment"
	"finbase/pkg/domain"
)

type positionFields struct {
	Quantity        decimal.Decimal  `json:"quantity"`
	AvgPrice        decimal.Decimal  `json:"avg_price"`
	MarkToMarket    *decimal.Decimal `json:"mark_to_market,omitempty"`
	LiquidityBucket *string          `json:"liquidity_bucket,omitempty"`
	LastEvent       *time.Time       `json:"last_event,omitempty"`
}

type fundPositionRequest struct {
	FundCNPJ string `json:"fund_cnpj"`
	positionFields
}

func (h *Handler) handleIngestFund(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req fundPositionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	position := &investment.PositionFund{
		CustomerID:      domain.CustomerID(customerID),
		FundCNPJ:        req.FundCNPJ,
		Quantity:        req.Quantity,
		AvgPrice:        req.AvgPrice,
		MarkToMarket:    req.MarkToMarket,
		LiquidityBucket: req.LiquidityBucket,
		LastEvent:       req.LastEvent,
	}
	if err := h.investments.IngestFund(r.Context(), position); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": int64(position.ID)})
}

type fixedIncomePositionRequest struct {
	InstrumentID string     `json:"instrument_id"`
	MaturityDate *time.Time `json:"maturity_date,omitempty"`
	positionFields
}

func (h *Handler) handleIngestFixedIncome(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req fixedIncomePositionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	position := &investment.PositionFixedIncome{
		CustomerID:      domain.CustomerID(customerID),
		InstrumentID:    req.InstrumentID,
		Quantity:        req.Quantity,
		AvgPrice:        req.AvgPrice,
		MarkToMarket:    req.MarkToMarket,
		LiquidityBucket: req.LiquidityBucket,
		MaturityDate:    req.MaturityDate,
		LastEvent:       req.LastEvent,
	}
	if err := h.investments.IngestFixedIncome(r.Context(), position); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": int64(position.ID)})
}

type equityPositionRequest struct {
	Ticker string `json:"ticker"`
	positionFields
}

func (h *Handler) handleIngestEquity(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req equityPositionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	position := &investment.PositionEquity{
		CustomerID:      domain.CustomerID(customerID),
		Ticker:          req.Ticker,
		Quantity:        req.Quantity,
		AvgPrice:        req.AvgPrice,
		MarkToMarket:    req.MarkToMarket,
		LiquidityBucket: req.LiquidityBucket,
		LastEvent:       req.LastEvent,
	}
	if err := h.investments.IngestEquity(r.Context(), position); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": int64(position.ID)})
}

type treasuryPositionRequest struct {
	InstrumentID string     `json:"instrument_id"`
	MaturityDate *time.Time `json:"maturity_date,omitempty"`
	positionFields
}

func (h *Handler) handleIngestTreasury(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req treasuryPositionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	position := &investment.PositionTreasury{
		CustomerID:      domain.CustomerID(customerID),
		InstrumentID:    req.InstrumentID,
		Quantity:        req.Quantity,
		AvgPrice:        req.AvgPrice,
		MarkToMarket:    req.MarkToMarket,
		LiquidityBucket: req.LiquidityBucket,
		MaturityDate:    req.MaturityDate,
		LastEvent:       req.LastEvent,
	}
	if err := h.investments.IngestTreasury(r.Context(), position); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": int64(position.ID)})
}

type movementRequest struct {
	InstrumentID    string          `json:"instrument_id"`
	MovementType    string          `json:"movement_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	SettlementDate  *time.Time      `json:"settlement_date,omitempty"`
}

func (h *Handler) handleRecordMovement(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req movementRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	movement, err := investment.NewMovement(domain.CustomerID(customerID),
		req.InstrumentID, req.MovementType, req.Quantity, req.Price, req.Amount,
		req.TransactionDate, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	movement.SettlementDate = req.SettlementDate

	if err := h.investments.RecordMovement(r.Context(), movement); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(movement.ID)})
}
