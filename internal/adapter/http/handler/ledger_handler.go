package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/kasa/internal/adapter/http/dto"
	"github.com/iho/kasa/internal/usecase"
)

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CheckConsistency reconciles every account and reports drift.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	status := http.StatusOK
	if len(report.Inconsistent) > 0 {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ConsistencyFromReport(report))
}

// ReconcileAccount recomputes one account's balance from its events.
func (h *LedgerHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	rec, err := h.ledgerUC.ReconcileAccount(r.Context(), accountID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reconcile account", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(rec))
}

// BalanceAt returns the account balance as of a point in time.
func (h *LedgerHandler) BalanceAt(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	at := time.Now().UTC()
	if v := r.URL.Query().Get("at"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid timestamp", err.Error())
			return
		}
		at = parsed
	}

	balance, err := h.ledgerUC.BalanceAt(r.Context(), accountID, at)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to compute balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": accountID,
		"at":         at,
		"balance":    balance,
	})
}

// ReferenceEvents lists the balance events caused by one payment or transfer.
func (h *LedgerHandler) ReferenceEvents(w http.ResponseWriter, r *http.Request) {
	referenceType := chi.URLParam(r, "type")
	referenceID := chi.URLParam(r, "id")
	if referenceType == "" || referenceID == "" {
		writeError(w, http.StatusBadRequest, "missing reference", "")
		return
	}

	events, err := h.ledgerUC.GetReference(r.Context(), referenceType, referenceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get reference events", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceEventsFromDomain(events))
}
