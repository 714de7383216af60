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

type paymentFixture struct {
	accRepo    *mocks.MockAccountRepository
	payRepo    *mocks.MockPaymentRepository
	eventRepo  *mocks.MockBalanceEventRepository
	outboxRepo *mocks.MockOutboxRepository
	auditRepo  *mocks.MockAuditRepository
	rateSource *mocks.MockRateSource
	cache      *mocks.MockCache
	uc         *usecase.PaymentUseCase
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		accRepo:    mocks.NewMockAccountRepository(),
		payRepo:    mocks.NewMockPaymentRepository(),
		eventRepo:  mocks.NewMockBalanceEventRepository(),
		outboxRepo: mocks.NewMockOutboxRepository(),
		auditRepo:  mocks.NewMockAuditRepository(),
		rateSource: mocks.NewMockRateSource(),
		cache:      mocks.NewMockCache(),
	}

	f.uc = usecase.NewPaymentUseCase(
		mocks.NewMockTransactionManager(),
		f.accRepo,
		f.payRepo,
		f.eventRepo,
		f.outboxRepo,
		f.auditRepo,
		f.rateSource,
		mocks.NewMockIDGenerator(),
		mocks.NewMockNumberGenerator(),
		mocks.NewMockRetrier(),
		f.cache,
	)

	return f
}

func (f *paymentFixture) seedAccount(id, currency string, balance int64) {
	_ = f.accRepo.Create(context.Background(), &domain.Account{
		ID:       id,
		Currency: currency,
		Balance:  decimal.NewFromInt(balance),
		Active:   true,
	})
}

func incomingType() domain.PaymentType {
	return domain.PaymentType{Direction: domain.DirectionIncoming, Category: domain.CategoryPayment}
}

func outgoingType() domain.PaymentType {
	return domain.PaymentType{Direction: domain.DirectionOutgoing, Category: domain.CategoryPayment}
}

func TestPaymentUseCase_CreatePayment_Incoming(t *testing.T) {
	f := newPaymentFixture()
	f.seedAccount("acc-1", "TRY", 1000)

	payment, err := f.uc.CreatePayment(context.Background(), usecase.CreatePaymentInput{
		Type:        incomingType(),
		Amount:      decimal.NewFromInt(250),
		Currency:    "TRY",
		AccountID:   "acc-1",
		PaymentDate: time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.PaymentNo != "PMI202605020001" {
		t.Errorf("expected payment no PMI202605020001, got %s", payment.PaymentNo)
	}

	if !payment.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected base currency rate 1, got %s", payment.ExchangeRate)
	}

	acc, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !acc.Balance.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("expected balance 1250, got %s", acc.Balance)
	}

	events := f.eventRepo.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 balance event, got %d", len(events))
	}

	if !events[0].Amount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected event amount 250, got %s", events[0].Amount)
	}

	if !events[0].BalanceAfter.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("expected balance_after 1250, got %s", events[0].BalanceAfter)
	}
}

func TestPaymentUseCase_CreatePayment_OutgoingWithExplicitRate(t *testing.T) {
	f := newPaymentFixture()
	f.seedAccount("acc-usd", "USD", 500)

	rate := decimal.RequireFromString("32.5")

	payment, err := f.uc.CreatePayment(context.Background(), usecase.CreatePaymentInput{
		Type:         outgoingType(),
		Amount:       decimal.NewFromInt(100),
		Currency:     "USD",
		AccountID:    "acc-usd",
		ExchangeRate: &rate,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.PaymentNo[:3] != "PMO" {
		t.Errorf("expected PMO prefix, got %s", payment.PaymentNo)
	}

	if !payment.BaseAmount().Equal(decimal.NewFromInt(3250)) {
		t.Errorf("expected base amount 3250, got %s", payment.BaseAmount())
	}

	acc, _ := f.accRepo.GetByID(context.Background(), "acc-usd")
	if !acc.Balance.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected balance 400, got %s", acc.Balance)
	}
}

func TestPaymentUseCase_CreatePayment_ResolvedRate(t *testing.T) {
	f := newPaymentFixture()
	f.seedAccount("acc-usd", "USD", 0)

	f.rateSource.ResolveRateFunc = func(ctx context.Context, currency string, at time.Time) (decimal.Decimal, error) {
		if currency != "USD" {
			t.Errorf("unexpected currency %s", currency)
		}
		return decimal.NewFromInt(30), nil
	}

	payment, err := f.uc.CreatePayment(context.Background(), usecase.CreatePaymentInput{
		Type:      incomingType(),
		Amount:    decimal.NewFromInt(100),
		Currency:  "usd",
		AccountID: "acc-usd",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !payment.ExchangeRate.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected resolved rate 30, got %s", payment.ExchangeRate)
	}

	if payment.Currency != "USD" {
		t.Errorf("expected normalized currency USD, got %s", payment.Currency)
	}
}

func TestPaymentUseCase_CreatePayment_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *paymentFixture)
		input     usecase.CreatePaymentInput
		errorType error
	}{
		{
			name:  "non-positive amount",
			setup: func(f *paymentFixture) { f.seedAccount("acc-1", "TRY", 0) },
			input: usecase.CreatePaymentInput{
				Type: incomingType(), Amount: decimal.Zero, Currency: "TRY", AccountID: "acc-1",
			},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name:  "unknown currency",
			setup: func(f *paymentFixture) { f.seedAccount("acc-1", "TRY", 0) },
			input: usecase.CreatePaymentInput{
				Type: incomingType(), Amount: decimal.NewFromInt(10), Currency: "XXX", AccountID: "acc-1",
			},
			errorType: domain.ErrInvalidCurrency,
		},
		{
			name:  "invalid payment type",
			setup: func(f *paymentFixture) { f.seedAccount("acc-1", "TRY", 0) },
			input: usecase.CreatePaymentInput{
				Type: domain.PaymentType{}, Amount: decimal.NewFromInt(10), Currency: "TRY", AccountID: "acc-1",
			},
			errorType: domain.ErrInvalidPaymentType,
		},
		{
			name:  "currency mismatch",
			setup: func(f *paymentFixture) { f.seedAccount("acc-1", "TRY", 0) },
			input: usecase.CreatePaymentInput{
				Type: incomingType(), Amount: decimal.NewFromInt(10), Currency: "EUR", AccountID: "acc-1",
				ExchangeRate: func() *decimal.Decimal { d := decimal.NewFromInt(35); return &d }(),
			},
			errorType: domain.ErrCurrencyMismatch,
		},
		{
			name: "inactive account",
			setup: func(f *paymentFixture) {
				_ = f.accRepo.Create(context.Background(), &domain.Account{
					ID: "acc-1", Currency: "TRY", Active: false,
				})
			},
			input: usecase.CreatePaymentInput{
				Type: incomingType(), Amount: decimal.NewFromInt(10), Currency: "TRY", AccountID: "acc-1",
			},
			errorType: domain.ErrAccountInactive,
		},
		{
			name:  "no rate for foreign currency",
			setup: func(f *paymentFixture) { f.seedAccount("acc-1", "USD", 0) },
			input: usecase.CreatePaymentInput{
				Type: incomingType(), Amount: decimal.NewFromInt(10), Currency: "USD", AccountID: "acc-1",
			},
			errorType: domain.ErrRateUnavailable,
		},
		{
			name:  "missing account",
			setup: func(f *paymentFixture) {},
			input: usecase.CreatePaymentInput{
				Type: incomingType(), Amount: decimal.NewFromInt(10), Currency: "TRY", AccountID: "nope",
			},
			errorType: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			tt.setup(f)

			_, err := f.uc.CreatePayment(context.Background(), tt.input)
			if !errors.Is(err, tt.errorType) {
				t.Errorf("expected error %v, got %v", tt.errorType, err)
			}

			if len(f.eventRepo.Events()) != 0 {
				t.Error("expected no balance events on failed create")
			}
		})
	}
}

func TestPaymentUseCase_UpdatePayment_ReversesThenReapplies(t *testing.T) {
	f := newPaymentFixture()
	f.seedAccount("acc-1", "TRY", 1000)

	payment, err := f.uc.CreatePayment(context.Background(), usecase.CreatePaymentInput{
		Type:      incomingType(),
		Amount:    decimal.NewFromInt(100),
		Currency:  "TRY",
		AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.uc.UpdatePayment(context.Background(), payment.ID, usecase.UpdatePaymentInput{
		Type:        incomingType(),
		Amount:      decimal.NewFromInt(150),
		Currency:    "TRY",
		AccountID:   "acc-1",
		PaymentDate: payment.PaymentDate,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !updated.Amount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected amount 150, got %s", updated.Amount)
	}

	acc, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !acc.Balance.Equal(decimal.NewFromInt(1150)) {
		t.Errorf("expected balance 1150, got %s", acc.Balance)
	}

	events := f.eventRepo.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 balance events (create, reversal, reapply), got %d", len(events))
	}

	if !events[1].Amount.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("expected reversal amount -100, got %s", events[1].Amount)
	}

	if !events[2].Amount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected reapply amount 150, got %s", events[2].Amount)
	}
}

func TestPaymentUseCase_UpdatePayment_MovesAccount(t *testing.T) {
	f := newPaymentFixture()
	f.seedAccount("acc-1", "TRY", 1000)
	f.seedAccount("acc-2", "TRY", 500)

	payment, err := f.uc.CreatePayment(context.Background(), usecase.CreatePaymentInput{
		Type:      incomingType(),
		Amount:    decimal.NewFromInt(200),
		Currency:  "TRY",
		AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.uc.UpdatePayment(context.Background(), payment.ID, usecase.UpdatePaymentInput{
		Type:        incomingType(),
		Amount:      decimal.NewFromInt(200),
		Currency:    "TRY",
		AccountID:   "acc-2",
		PaymentDate: payment.PaymentDate,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	acc1, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	acc2, _ := f.accRepo.GetByID(context.Background(), "acc-2")

	if !acc1.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected original account back at 1000, got %s", acc1.Balance)
	}

	if !acc2.Balance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected new account at 700, got %s", acc2.Balance)
	}
}

func TestPaymentUseCase_UpdatePayment_IdentityIsNoOp(t *testing.T) {
	f := newPaymentFixture()
	f.seedAccount("acc-1", "TRY", 1000)

	payment, err := f.uc.CreatePayment(context.Background(), usecase.CreatePaymentInput{
		Type:      incomingType(),
		Amount:    decimal.NewFromInt(100),
		Currency:  "TRY",
		AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.uc.UpdatePayment(context.Background(), payment.ID, usecase.UpdatePaymentInput{
		Type:        payment.Type,
		Channel:     payment.Channel,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		AccountID:   payment.AccountID,
		ContactID:   payment.ContactID,
		Description: payment.Description,
		ReferenceNo: payment.ReferenceNo,
		PaymentDate: payment.PaymentDate,
	})
	if err != nil {
		t.Fatalf("identity update: %v", err)
	}

	if got := len(f.eventRepo.Events()); got != 1 {
		t.Errorf("expected only the create event, got %d events", got)
	}

	acc, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !acc.Balance.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("expected balance unchanged at 1100, got %s", acc.Balance)
	}
}

func TestPaymentUseCase_DeletePayment_RequiresConfirmation(t *testing.T) {
	f := newPaymentFixture()
	f.seedAccount("acc-1", "TRY", 1000)

	payment, err := f.uc.CreatePayment(context.Background(), usecase.CreatePaymentInput{
		Type:      incomingType(),
		Amount:    decimal.NewFromInt(300),
		Currency:  "TRY",
		AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.uc.DeletePayment(context.Background(), payment.ID, "bogus"); !errors.Is(err, domain.ErrInvalidConfirmation) {
		t.Fatalf("expected ErrInvalidConfirmation, got %v", err)
	}

	token, err := f.uc.RequestDelete(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("request delete: %v", err)
	}

	if err := f.uc.DeletePayment(context.Background(), payment.ID, token); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.uc.GetPayment(context.Background(), payment.ID); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Errorf("expected payment gone, got %v", err)
	}

	acc, _ := f.accRepo.GetByID(context.Background(), "acc-1")
	if !acc.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected balance restored to 1000, got %s", acc.Balance)
	}

	events := f.eventRepo.Events()
	if len(events) != 2 {
		t.Fatalf("expected create and reversal events, got %d", len(events))
	}

	if !events[1].Amount.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("expected reversal -300, got %s", events[1].Amount)
	}
}

func TestPaymentUseCase_CreatePayment_AuditsOutcome(t *testing.T) {
	f := newPaymentFixture()
	f.seedAccount("acc-1", "TRY", 0)

	_, err := f.uc.CreatePayment(context.Background(), usecase.CreatePaymentInput{
		Type:      incomingType(),
		Amount:    decimal.NewFromInt(10),
		Currency:  "TRY",
		AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs := f.auditRepo.Logs()
	if len(logs) != 1 {
		t.Fatalf("expected 1 audit log, got %d", len(logs))
	}

	if logs[0].Action != string(domain.AuditActionPaymentCreate) {
		t.Errorf("expected payment.create action, got %s", logs[0].Action)
	}

	if logs[0].Status != string(domain.AuditStatusSuccess) {
		t.Errorf("expected success status, got %s", logs[0].Status)
	}
}
