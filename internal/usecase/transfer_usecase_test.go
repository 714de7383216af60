package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
	"github.com/iho/kasa/internal/usecase/mocks"
)

type transferFixture struct {
	accRepo    *mocks.MockAccountRepository
	trRepo     *mocks.MockTransferRepository
	eventRepo  *mocks.MockBalanceEventRepository
	outboxRepo *mocks.MockOutboxRepository
	auditRepo  *mocks.MockAuditRepository
	rateSource *mocks.MockRateSource
	uc         *usecase.TransferUseCase
}

func newTransferFixture() *transferFixture {
	f := &transferFixture{
		accRepo:    mocks.NewMockAccountRepository(),
		trRepo:     mocks.NewMockTransferRepository(),
		eventRepo:  mocks.NewMockBalanceEventRepository(),
		outboxRepo: mocks.NewMockOutboxRepository(),
		auditRepo:  mocks.NewMockAuditRepository(),
		rateSource: mocks.NewMockRateSource(),
	}

	f.uc = usecase.NewTransferUseCase(
		mocks.NewMockTransactionManager(),
		f.accRepo,
		f.trRepo,
		f.eventRepo,
		f.outboxRepo,
		f.auditRepo,
		f.rateSource,
		mocks.NewMockIDGenerator(),
		mocks.NewMockNumberGenerator(),
		mocks.NewMockRetrier(),
	)

	return f
}

func (f *transferFixture) seedAccount(id, currency string, balance int64) {
	_ = f.accRepo.Create(context.Background(), &domain.Account{
		ID:       id,
		Currency: currency,
		Balance:  decimal.NewFromInt(balance),
		Active:   true,
	})
}

func TestTransferUseCase_CreateTransfer_SameCurrency(t *testing.T) {
	f := newTransferFixture()
	f.seedAccount("acc-1", "TRY", 5000)
	f.seedAccount("acc-2", "TRY", 1000)

	transfer, err := f.uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		FromAmount:    decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !transfer.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected rate 1, got %s", transfer.ExchangeRate)
	}

	if !transfer.ToAmount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected to amount 300, got %s", transfer.ToAmount)
	}

	from, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	to, _ := f.accRepo.GetByID(context.Background(), "acc-2")

	if !from.Balance.Equal(decimal.NewFromInt(4700)) {
		t.Errorf("expected source balance 4700, got %s", from.Balance)
	}

	if !to.Balance.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("expected destination balance 1300, got %s", to.Balance)
	}

	events := f.eventRepo.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 balance events, got %d", len(events))
	}

	if !events[0].Amount.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("expected debit event -300, got %s", events[0].Amount)
	}

	if !events[1].BalanceAfter.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("expected credit balance_after 1300, got %s", events[1].BalanceAfter)
	}
}

func TestTransferUseCase_CreateTransfer_ExplicitRate(t *testing.T) {
	f := newTransferFixture()
	f.seedAccount("acc-usd", "USD", 1000)
	f.seedAccount("acc-try", "TRY", 0)

	rate := decimal.NewFromInt(30)

	transfer, err := f.uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		FromAccountID: "acc-usd",
		ToAccountID:   "acc-try",
		FromAmount:    decimal.NewFromInt(100),
		ExchangeRate:  &rate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !transfer.ToAmount.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected to amount 3000, got %s", transfer.ToAmount)
	}

	from, _ := f.accRepo.GetByID(context.Background(), "acc-usd")
	to, _ := f.accRepo.GetByID(context.Background(), "acc-try")

	if !from.Balance.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected source balance 900, got %s", from.Balance)
	}

	if !to.Balance.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected destination balance 3000, got %s", to.Balance)
	}
}

func TestTransferUseCase_CreateTransfer_ExplicitToAmount(t *testing.T) {
	f := newTransferFixture()
	f.seedAccount("acc-usd", "USD", 1000)
	f.seedAccount("acc-eur", "EUR", 0)

	toAmount := decimal.NewFromInt(92)

	transfer, err := f.uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		FromAccountID: "acc-usd",
		ToAccountID:   "acc-eur",
		FromAmount:    decimal.NewFromInt(100),
		ToAmount:      &toAmount,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !transfer.ToAmount.Equal(toAmount) {
		t.Errorf("expected to amount 92, got %s", transfer.ToAmount)
	}

	expectedRate := decimal.RequireFromString("0.92")
	if !transfer.ExchangeRate.Equal(expectedRate) {
		t.Errorf("expected realized rate 0.92, got %s", transfer.ExchangeRate)
	}
}

func TestTransferUseCase_CreateTransfer_RateAndToAmountConflict(t *testing.T) {
	f := newTransferFixture()
	f.seedAccount("acc-usd", "USD", 1000)
	f.seedAccount("acc-try", "TRY", 0)

	rate := decimal.NewFromInt(30)
	toAmount := decimal.RequireFromString("2999.50")

	_, err := f.uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		FromAccountID: "acc-usd",
		ToAccountID:   "acc-try",
		FromAmount:    decimal.NewFromInt(100),
		ExchangeRate:  &rate,
		ToAmount:      &toAmount,
	})
	if !errors.Is(err, domain.ErrRateConflict) {
		t.Fatalf("expected ErrRateConflict, got %v", err)
	}

	from, _ := f.accRepo.GetByID(context.Background(), "acc-usd")
	if !from.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected source balance untouched, got %s", from.Balance)
	}

	if len(f.eventRepo.Events()) != 0 {
		t.Error("expected no balance events on rejected transfer")
	}
}

func TestTransferUseCase_CreateTransfer_DerivedCrossRate(t *testing.T) {
	f := newTransferFixture()
	f.seedAccount("acc-usd", "USD", 1000)
	f.seedAccount("acc-eur", "EUR", 0)

	f.rateSource.CrossRateFunc = func(ctx context.Context, from, to string, date *time.Time) (decimal.Decimal, error) {
		if from != "USD" || to != "EUR" {
			t.Errorf("unexpected cross rate request %s->%s", from, to)
		}
		if date == nil {
			t.Error("expected dated cross rate lookup")
		}
		return decimal.RequireFromString("0.90909091"), nil
	}

	transfer, err := f.uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		FromAccountID: "acc-usd",
		ToAccountID:   "acc-eur",
		FromAmount:    decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !transfer.ToAmount.Equal(decimal.RequireFromString("90.909091")) {
		t.Errorf("expected to amount 90.909091, got %s", transfer.ToAmount)
	}
}

func TestTransferUseCase_CreateTransfer_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *transferFixture)
		input     usecase.CreateTransferInput
		errorType error
	}{
		{
			name: "same account",
			setup: func(f *transferFixture) {
				f.seedAccount("acc-1", "TRY", 100)
			},
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-1",
				FromAmount:    decimal.NewFromInt(10),
			},
			errorType: domain.ErrSameAccount,
		},
		{
			name: "non-positive amount",
			setup: func(f *transferFixture) {
				f.seedAccount("acc-1", "TRY", 100)
				f.seedAccount("acc-2", "TRY", 100)
			},
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-2",
				FromAmount:    decimal.Zero,
			},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name: "missing account",
			setup: func(f *transferFixture) {
				f.seedAccount("acc-1", "TRY", 100)
			},
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-missing",
				FromAmount:    decimal.NewFromInt(10),
			},
			errorType: domain.ErrAccountNotFound,
		},
		{
			name: "inactive account",
			setup: func(f *transferFixture) {
				f.seedAccount("acc-1", "TRY", 100)
				_ = f.accRepo.Create(context.Background(), &domain.Account{
					ID: "acc-2", Currency: "TRY", Active: false,
				})
			},
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-2",
				FromAmount:    decimal.NewFromInt(10),
			},
			errorType: domain.ErrAccountInactive,
		},
		{
			name: "cross currency with no rate",
			setup: func(f *transferFixture) {
				f.seedAccount("acc-1", "USD", 100)
				f.seedAccount("acc-2", "EUR", 100)
			},
			input: usecase.CreateTransferInput{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-2",
				FromAmount:    decimal.NewFromInt(10),
			},
			errorType: domain.ErrRateUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransferFixture()
			tt.setup(f)

			_, err := f.uc.CreateTransfer(context.Background(), tt.input)
			if !errors.Is(err, tt.errorType) {
				t.Errorf("expected error %v, got %v", tt.errorType, err)
			}

			if len(f.eventRepo.Events()) != 0 {
				t.Error("expected no balance events on failed transfer")
			}
		})
	}
}

func TestTransferUseCase_CreateTransfer_NumbersAndOutbox(t *testing.T) {
	f := newTransferFixture()
	f.seedAccount("acc-1", "TRY", 500)
	f.seedAccount("acc-2", "TRY", 0)

	transfer, err := f.uc.CreateTransfer(context.Background(), usecase.CreateTransferInput{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		FromAmount:    decimal.NewFromInt(50),
		EventAt:       time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transfer.TransferNo != "TRF202603150001" {
		t.Errorf("expected transfer no TRF202603150001, got %s", transfer.TransferNo)
	}

	events := f.outboxRepo.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(events))
	}

	if events[0].EventType != domain.EventTypeTransferCreated {
		t.Errorf("expected transfer.created event, got %s", events[0].EventType)
	}
}
