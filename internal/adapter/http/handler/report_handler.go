package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/iho/kasa/internal/adapter/http/dto"
	"github.com/iho/kasa/internal/usecase"
)

// ReportHandler handles transaction lines and reporting HTTP requests.
type ReportHandler struct {
	profitUC *usecase.ProfitUseCase
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(profitUC *usecase.ProfitUseCase) *ReportHandler {
	return &ReportHandler{profitUC: profitUC}
}

// RecordItem persists one sale or purchase line.
func (h *ReportHandler) RecordItem(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	item, err := h.profitUC.RecordItem(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record item", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.ItemFromDomain(item))
}

// ProfitLoss returns the aggregated profit report.
func (h *ReportHandler) ProfitLoss(w http.ResponseWriter, r *http.Request) {
	filter, err := itemFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	q := r.URL.Query()
	groupBy := q.Get("group_by")
	if groupBy == "" {
		groupBy = usecase.GroupByProduct
	}

	report, err := h.profitUC.ProfitLoss(r.Context(), filter, groupBy, q.Get("currency"))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to build profit report", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ProfitLossFromReport(report))
}

// CurrencySummary returns the whole-ledger position across currencies.
func (h *ReportHandler) CurrencySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.profitUC.SummarizeCurrencies(r.Context())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to summarize currencies", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.CurrencySummaryFromDomain(summary))
}

func itemFilterFromQuery(r *http.Request) (usecase.ItemFilter, error) {
	q := r.URL.Query()

	filter := usecase.ItemFilter{
		ProductID: q.Get("product_id"),
		ContactID: q.Get("contact_id"),
		CompanyID: q.Get("company_id"),
		Currency:  q.Get("item_currency"),
	}

	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}

	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}

	return filter, nil
}
