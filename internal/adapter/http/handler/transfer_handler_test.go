package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/adapter/http/dto"
	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
	"github.com/iho/kasa/internal/usecase/mocks"
)

type transferHandlerFixture struct {
	router   http.Handler
	accounts *mocks.MockAccountRepository
}

func newTransferHandlerFixture(t *testing.T) *transferHandlerFixture {
	t.Helper()

	accounts := mocks.NewMockAccountRepository()

	uc := usecase.NewTransferUseCase(
		mocks.NewMockTransactionManager(),
		accounts,
		mocks.NewMockTransferRepository(),
		mocks.NewMockBalanceEventRepository(),
		mocks.NewMockOutboxRepository(),
		mocks.NewMockAuditRepository(),
		mocks.NewMockRateSource(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockNumberGenerator(),
		mocks.NewMockRetrier(),
	)

	handler := NewTransferHandler(uc)

	router := chi.NewRouter()
	router.Post("/transfers", handler.Create)
	router.Get("/transfers/{id}", handler.Get)
	router.Get("/accounts/{id}/transfers", handler.ListByAccount)

	return &transferHandlerFixture{router: router, accounts: accounts}
}

func (f *transferHandlerFixture) seedAccount(t *testing.T, id, currency string, balance int64) {
	t.Helper()

	err := f.accounts.Create(context.Background(), &domain.Account{
		ID:       id,
		Name:     id,
		Type:     domain.AccountTypeBank,
		Currency: currency,
		Balance:  decimal.NewFromInt(balance),
		Active:   true,
	})
	if err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
}

func TestTransferHandler_Create_SameCurrency(t *testing.T) {
	f := newTransferHandlerFixture(t)
	f.seedAccount(t, "acc-1", "TRY", 5000)
	f.seedAccount(t, "acc-2", "TRY", 1000)

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		FromAmount:    decimal.NewFromInt(300),
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected rate 1 for same currency, got %s", resp.ExchangeRate)
	}
	if !resp.ToAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected to_amount 300, got %s", resp.ToAmount)
	}
	if len(resp.TransferNo) == 0 || resp.TransferNo[:3] != "TRF" {
		t.Fatalf("expected TRF document number, got %q", resp.TransferNo)
	}

	from, _ := f.accounts.GetByID(context.Background(), "acc-1")
	to, _ := f.accounts.GetByID(context.Background(), "acc-2")
	if !from.Balance.Equal(decimal.NewFromInt(4700)) || !to.Balance.Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("unexpected balances: from=%s to=%s", from.Balance, to.Balance)
	}
}

func TestTransferHandler_Create_CrossCurrencyWithoutRate(t *testing.T) {
	f := newTransferHandlerFixture(t)
	f.seedAccount(t, "acc-usd", "USD", 1000)
	f.seedAccount(t, "acc-eur", "EUR", 0)

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "acc-usd",
		ToAccountID:   "acc-eur",
		FromAmount:    decimal.NewFromInt(100),
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransferHandler_Create_SameAccount(t *testing.T) {
	f := newTransferHandlerFixture(t)
	f.seedAccount(t, "acc-1", "TRY", 1000)

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-1",
		FromAmount:    decimal.NewFromInt(10),
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Get_NotFound(t *testing.T) {
	f := newTransferHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/transfers/missing", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
