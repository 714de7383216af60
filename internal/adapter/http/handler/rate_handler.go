package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/kasa/internal/adapter/http/dto"
	"github.com/iho/kasa/internal/usecase"
)

// RateHandler handles exchange rate HTTP requests.
type RateHandler struct {
	rateUC *usecase.RateUseCase
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateUC *usecase.RateUseCase) *RateHandler {
	return &RateHandler{rateUC: rateUC}
}

// Record upserts the quote for (currency, date).
func (h *RateHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rate, err := h.rateUC.RecordRate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record rate", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.RateFromDomain(rate))
}

// Get returns the quote for a currency. With a date query parameter it
// returns that day's quote, otherwise the latest known one.
func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency := chi.URLParam(r, "currency")
	if currency == "" {
		writeError(w, http.StatusBadRequest, "missing currency", "")
		return
	}

	if v := r.URL.Query().Get("date"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date", err.Error())
			return
		}

		rate, err := h.rateUC.GetRate(r.Context(), currency, date)
		if err != nil {
			status := mapDomainError(err)
			writeError(w, status, "failed to get rate", err.Error())

			return
		}

		writeJSON(w, http.StatusOK, dto.RateFromDomain(rate))
		return
	}

	rate, err := h.rateUC.GetLatestRate(r.Context(), currency)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get rate", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RateFromDomain(rate))
}

// Cross returns the derived from->to conversion rate.
func (h *RateHandler) Cross(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from := q.Get("from")
	to := q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "missing from or to currency", "")
		return
	}

	var date *time.Time
	if v := q.Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date", err.Error())
			return
		}
		date = &parsed
	}

	rate, err := h.rateUC.CrossRate(r.Context(), from, to, date)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to derive cross rate", err.Error())

		return
	}

	resp := dto.CrossRateResponse{From: from, To: to, Rate: rate}
	if date != nil {
		resp.Date = date.Format("2006-01-02")
	}

	writeJSON(w, http.StatusOK, resp)
}
