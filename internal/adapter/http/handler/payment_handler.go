package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/kasa/internal/adapter/http/dto"
	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
)

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC *usecase.PaymentUseCase
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC *usecase.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Create creates a new payment.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToCreateInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment type", err.Error())
		return
	}

	payment, err := h.paymentUC.CreatePayment(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create payment", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// Get retrieves a payment by ID.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	payment, err := h.paymentUC.GetPayment(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get payment", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// List lists payments matching the query filters.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := paymentFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	payments, err := h.paymentUC.ListPayments(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list payments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentsFromDomain(payments))
}

// Update replaces a payment; its balance effect is reversed and reapplied.
func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	var req dto.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUpdateInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment type", err.Error())
		return
	}

	payment, err := h.paymentUC.UpdatePayment(r.Context(), id, input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update payment", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// RequestDelete issues a confirmation token for a pending deletion.
func (h *PaymentHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	token, err := h.paymentUC.RequestDelete(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to request deletion", err.Error())

		return
	}

	writeJSON(w, http.StatusAccepted, dto.DeleteRequestedResponse{
		PaymentID:         id,
		ConfirmationToken: token,
		ExpiresIn:         usecase.DeleteConfirmationTTL.String(),
	})
}

// Delete deletes a payment, reversing its balance effect. Requires the
// confirmation token issued by RequestDelete.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	var req dto.DeletePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.paymentUC.DeletePayment(r.Context(), id, req.ConfirmationToken); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete payment", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BalanceHistory lists the balance events of an account.
func (h *PaymentHandler) BalanceHistory(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	events, err := h.paymentUC.GetBalanceHistory(r.Context(), accountID, limit, offset)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balance history", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceEventsFromDomain(events))
}

func paymentFilterFromQuery(r *http.Request) (usecase.PaymentFilter, error) {
	q := r.URL.Query()

	filter := usecase.PaymentFilter{
		Channel:   q.Get("channel"),
		AccountID: q.Get("account_id"),
		ContactID: q.Get("contact_id"),
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	if legacy := q.Get("type"); legacy != "" {
		pt, err := domain.ParsePaymentType(legacy)
		if err != nil {
			return filter, err
		}
		filter.Direction = pt.Direction
		filter.Category = pt.Category
	} else {
		filter.Direction = domain.Direction(q.Get("direction"))
		filter.Category = domain.Category(q.Get("category"))
	}

	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}

	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}

	return filter, nil
}
