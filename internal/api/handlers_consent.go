package api

import (
	"net/http"
	"time"

	"finbase/internal/consent"
	"finbase/pkg/domain"
)

type grantConsentRequest struct {
	GrantedAt   *time.Time `json:"granted_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Description *string    `json:"description,omitempty"`
	Scopes      []string   `json:"scopes"`
}

func (h *Handler) handleGrantConsent(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req grantConsentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	grantedAt := now
	if req.GrantedAt != nil {
		grantedAt = *req.GrantedAt
	}
	grant, err := consent.NewConsent(domain.CustomerID(customerID), grantedAt, req.ExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}
	grant.Description = req.Description

	if err := h.consents.Grant(r.Context(), grant, req.Scopes, now); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": int64(grant.ID)})
}

func (h *Handler) handleRevokeConsent(w http.ResponseWriter, r *http.Request) {
	consentID, err := urlID(r, "consentID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.consents.Revoke(r.Context(), domain.ConsentID(consentID), time.Now()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleActiveScopes(w http.ResponseWriter, r *http.Request) {
	customerID, err := urlID(r, "customerID")
	if err != nil {
		writeError(w, err)
		return
	}
	scopes, err := h.consents.ActiveScopes(r.Context(), domain.CustomerID(customerID), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"scopes": scopes})
}
