package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/adapter/http/dto"
	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
	"github.com/iho/kasa/internal/usecase/mocks"
)

type reportHandlerFixture struct {
	router   http.Handler
	accounts *mocks.MockAccountRepository
}

func newReportHandlerFixture(t *testing.T) *reportHandlerFixture {
	t.Helper()

	accounts := mocks.NewMockAccountRepository()
	profitUC := usecase.NewProfitUseCase(
		mocks.NewMockItemRepository(),
		accounts,
		mocks.NewMockRateSource(),
		mocks.NewMockIDGenerator(),
	)

	handler := NewReportHandler(profitUC)

	router := chi.NewRouter()
	router.Post("/items/", handler.RecordItem)
	router.Get("/reports/profit-loss", handler.ProfitLoss)
	router.Get("/reports/currency-summary", handler.CurrencySummary)

	return &reportHandlerFixture{router: router, accounts: accounts}
}

func (f *reportHandlerFixture) recordItem(t *testing.T, body string) dto.ItemResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/items/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ItemResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestReportHandler_RecordItem(t *testing.T) {
	f := newReportHandlerFixture(t)

	resp := f.recordItem(t, `{
		"transaction_no": "INV-1",
		"product_id": "prod-a",
		"quantity": "2",
		"unit_price": "150",
		"cost_price": "100",
		"currency": "try"
	}`)

	if resp.ID == "" {
		t.Fatal("expected generated id")
	}
	if resp.Currency != "TRY" {
		t.Fatalf("expected currency normalized to TRY, got %s", resp.Currency)
	}
	if !resp.LineTotal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected line total 300, got %s", resp.LineTotal)
	}
	if !resp.LineProfit.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected line profit 100, got %s", resp.LineProfit)
	}
}

func TestReportHandler_RecordItem_InvalidQuantity(t *testing.T) {
	f := newReportHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/items/", strings.NewReader(`{
		"product_id": "prod-a",
		"quantity": "0",
		"unit_price": "150",
		"cost_price": "100",
		"currency": "TRY"
	}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReportHandler_ProfitLoss_GroupsByProduct(t *testing.T) {
	f := newReportHandlerFixture(t)

	f.recordItem(t, `{"product_id":"prod-a","quantity":"2","unit_price":"150","cost_price":"100","currency":"TRY"}`)
	f.recordItem(t, `{"product_id":"prod-b","quantity":"1","unit_price":"200","cost_price":"120","currency":"TRY"}`)

	req := httptest.NewRequest(http.MethodGet, "/reports/profit-loss?group_by=product", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ProfitLossResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Currency != domain.BaseCurrency {
		t.Fatalf("expected report in %s, got %s", domain.BaseCurrency, resp.Currency)
	}
	if len(resp.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp.Rows))
	}
	if resp.Rows[0].Key != "prod-a" || resp.Rows[1].Key != "prod-b" {
		t.Fatalf("expected rows sorted by key, got %s / %s", resp.Rows[0].Key, resp.Rows[1].Key)
	}
	if !resp.Total.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected total 500, got %s", resp.Total)
	}
	if !resp.Profit.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("expected profit 180, got %s", resp.Profit)
	}
	if resp.Incomplete {
		t.Fatal("expected complete report")
	}
}

func TestReportHandler_ProfitLoss_FlagsUnconvertibleLines(t *testing.T) {
	f := newReportHandlerFixture(t)

	f.recordItem(t, `{"product_id":"prod-a","quantity":"2","unit_price":"150","cost_price":"100","currency":"TRY"}`)
	f.recordItem(t, `{"product_id":"prod-usd","quantity":"1","unit_price":"10","cost_price":"5","currency":"USD"}`)

	req := httptest.NewRequest(http.MethodGet, "/reports/profit-loss", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ProfitLossResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.Incomplete {
		t.Fatal("expected report flagged incomplete")
	}
	if !resp.Total.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected only convertible lines summed, got %s", resp.Total)
	}

	for _, row := range resp.Rows {
		if row.Key == "prod-usd" && !row.Incomplete {
			t.Fatal("expected prod-usd row flagged incomplete")
		}
	}
}

func TestReportHandler_CurrencySummary(t *testing.T) {
	f := newReportHandlerFixture(t)

	ctx := context.Background()
	seed := []struct {
		id       string
		currency string
		balance  int64
	}{
		{"acc-try", "TRY", 1000},
		{"acc-usd", "USD", 50},
	}
	for _, s := range seed {
		err := f.accounts.Create(ctx, &domain.Account{
			ID:       s.id,
			Name:     s.id,
			Type:     domain.AccountTypeBank,
			Currency: s.currency,
			Balance:  decimal.NewFromInt(s.balance),
			Active:   true,
		})
		if err != nil {
			t.Fatalf("failed to seed account: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/reports/currency-summary", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.CurrencySummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(resp.Positions))
	}
	if resp.Positions[0].Currency != "TRY" || !resp.Positions[0].BaseValue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected TRY position: %+v", resp.Positions[0])
	}
	if resp.Positions[1].Currency != "USD" || !resp.Positions[1].Incomplete {
		t.Fatalf("expected USD position flagged incomplete: %+v", resp.Positions[1])
	}
	if !resp.BaseTotal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected base total 1000, got %s", resp.BaseTotal)
	}
}
