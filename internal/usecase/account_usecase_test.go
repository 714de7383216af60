package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
	"github.com/iho/kasa/internal/usecase/mocks"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	auditRepo := mocks.NewMockAuditRepository()
	uc := usecase.NewAccountUseCase(accRepo, auditRepo, mocks.NewMockIDGenerator())

	account, err := uc.CreateAccount(context.Background(), usecase.CreateAccountInput{
		CompanyID:      "company-1",
		Code:           "KASA-01",
		Name:           "Main cash desk",
		Type:           domain.AccountTypeCash,
		Currency:       "try",
		OpeningBalance: decimal.NewFromInt(2500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Currency != "TRY" {
		t.Errorf("expected normalized currency, got %s", account.Currency)
	}

	if !account.Active {
		t.Error("expected new account to be active")
	}

	if !account.Balance.Equal(decimal.NewFromInt(2500)) || !account.OpeningBalance.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("expected opening balance mirrored, got balance %s opening %s", account.Balance, account.OpeningBalance)
	}

	logs := auditRepo.Logs()
	if len(logs) != 1 || logs[0].Action != string(domain.AuditActionAccountCreate) {
		t.Errorf("expected account.create audit log, got %+v", logs)
	}
}

func TestAccountUseCase_CreateAccount_Invalid(t *testing.T) {
	uc := usecase.NewAccountUseCase(mocks.NewMockAccountRepository(), mocks.NewMockAuditRepository(), mocks.NewMockIDGenerator())

	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		errType error
	}{
		{
			name:    "empty name",
			input:   usecase.CreateAccountInput{Name: "  ", Type: domain.AccountTypeCash, Currency: "TRY"},
			errType: domain.ErrInvalidAccountName,
		},
		{
			name:    "unknown currency",
			input:   usecase.CreateAccountInput{Name: "x", Type: domain.AccountTypeCash, Currency: "ZZZ"},
			errType: domain.ErrInvalidCurrency,
		},
		{
			name:    "unknown type",
			input:   usecase.CreateAccountInput{Name: "x", Type: "savings", Currency: "TRY"},
			errType: domain.ErrInvalidAccountType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.CreateAccount(context.Background(), tt.input)
			if !errors.Is(err, tt.errType) {
				t.Errorf("expected %v, got %v", tt.errType, err)
			}
		})
	}
}

func TestAccountUseCase_SetActive(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	uc := usecase.NewAccountUseCase(accRepo, mocks.NewMockAuditRepository(), mocks.NewMockIDGenerator())

	ctx := context.Background()

	account, err := uc.CreateAccount(ctx, usecase.CreateAccountInput{
		Name:     "Bank EUR",
		Type:     domain.AccountTypeBank,
		Currency: "EUR",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := uc.SetActive(ctx, account.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, err := uc.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Active {
		t.Error("expected account inactive")
	}

	if err := uc.SetActive(ctx, "missing", false); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
