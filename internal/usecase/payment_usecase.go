package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
)

// PaymentUseCase handles directional payments against accounts. Every write
// goes through a single transaction that locks the account row, appends a
// balance event and an outbox event, and keeps the stored balance equal to
// the sum of applied effects. Updates and deletes reverse the original
// effect before applying the new one, so history stays append-only.
type PaymentUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	paymentRepo PaymentRepository
	eventRepo   BalanceEventRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	rateSource  RateSource
	idGen       IDGenerator
	numGen      NumberGenerator
	retrier     Retrier
	cache       Cache
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	paymentRepo PaymentRepository,
	eventRepo BalanceEventRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	rateSource RateSource,
	idGen IDGenerator,
	numGen NumberGenerator,
	retrier Retrier,
	cache Cache,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		rateSource:  rateSource,
		idGen:       idGen,
		numGen:      numGen,
		retrier:     retrier,
		cache:       cache,
	}
}

// CreatePaymentInput represents input for creating a payment.
type CreatePaymentInput struct {
	Type        domain.PaymentType
	Channel     string
	Amount      decimal.Decimal
	Currency    string
	AccountID   string
	ContactID   string
	Description string
	ReferenceNo string
	PaymentDate time.Time
	// ExchangeRate, when nil, is resolved from recorded rates for the
	// payment date.
	ExchangeRate *decimal.Decimal
}

// CreatePayment records a payment and applies its effect to the account
// balance atomically.
func (uc *PaymentUseCase) CreatePayment(ctx context.Context, input CreatePaymentInput) (*domain.Payment, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if !input.Type.Valid() {
		return nil, domain.ErrInvalidPaymentType
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}

	rate, err := uc.resolvePaymentRate(ctx, input.Currency, input.ExchangeRate, paymentDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:           uc.idGen.Generate(),
		Type:         input.Type,
		Channel:      input.Channel,
		Amount:       input.Amount,
		Currency:     normalizeCurrency(input.Currency),
		ExchangeRate: rate,
		AccountID:    input.AccountID,
		ContactID:    input.ContactID,
		Description:  input.Description,
		ReferenceNo:  input.ReferenceNo,
		PaymentDate:  paymentDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.createPaymentTx(ctx, payment)
	})

	uc.audit(ctx, domain.AuditActionPaymentCreate, domain.AggregateTypePayment, payment.ID, nil, payment, err)

	if err != nil {
		return nil, err
	}

	return payment, nil
}

func (uc *PaymentUseCase) createPaymentTx(ctx context.Context, payment *domain.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, payment.AccountID)
	if err != nil {
		return err
	}

	if !account.Active {
		return domain.ErrAccountInactive
	}

	if account.Currency != payment.Currency {
		return domain.ErrCurrencyMismatch
	}

	payment.PaymentNo, err = uc.numGen.Next(ctx, tx, paymentNoPrefix(payment.Type.Direction), payment.PaymentDate)
	if err != nil {
		return err
	}

	if err := uc.paymentRepo.Create(ctx, tx, payment); err != nil {
		return err
	}

	effect := payment.SignedEffect()
	newBalance := account.Balance.Add(effect)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, payment.CreatedAt); err != nil {
		return err
	}

	event := &domain.BalanceEvent{
		ID:            uc.idGen.Generate(),
		AccountID:     account.ID,
		ReferenceType: domain.ReferenceTypePayment,
		ReferenceID:   payment.ID,
		Amount:        effect,
		BalanceBefore: account.Balance,
		BalanceAfter:  newBalance,
		Description:   fmt.Sprintf("payment %s", payment.PaymentNo),
		CreatedAt:     payment.CreatedAt,
	}

	if err := uc.eventRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	outbox := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   payment.ID,
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventTypePaymentCreated,
		Payload: domain.MarshalState(domain.PaymentCreatedEvent{
			PaymentID:    payment.ID,
			PaymentNo:    payment.PaymentNo,
			AccountID:    payment.AccountID,
			Type:         payment.Type.String(),
			Amount:       payment.Amount.String(),
			Currency:     payment.Currency,
			ExchangeRate: payment.ExchangeRate.String(),
		}),
		CreatedAt: payment.CreatedAt,
	}

	if err := uc.outboxRepo.Create(ctx, tx, outbox); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdatePaymentInput represents input for updating a payment. All fields
// replace the stored ones.
type UpdatePaymentInput struct {
	Type         domain.PaymentType
	Channel      string
	Amount       decimal.Decimal
	Currency     string
	AccountID    string
	ContactID    string
	Description  string
	ReferenceNo  string
	PaymentDate  time.Time
	ExchangeRate *decimal.Decimal
}

// UpdatePayment replaces a payment. The original balance effect is reversed
// on the original account and the new effect applied on the (possibly
// different) new account, both inside one transaction. A no-op update that
// changes nothing returns the stored payment without touching balances.
func (uc *PaymentUseCase) UpdatePayment(ctx context.Context, id string, input UpdatePaymentInput) (*domain.Payment, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if !input.Type.Valid() {
		return nil, domain.ErrInvalidPaymentType
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}

	rate, err := uc.resolvePaymentRate(ctx, input.Currency, input.ExchangeRate, paymentDate)
	if err != nil {
		return nil, err
	}

	var updated *domain.Payment
	var before *domain.Payment

	err = uc.retrier.Retry(ctx, func() error {
		var txErr error
		updated, before, txErr = uc.updatePaymentTx(ctx, id, input, rate, paymentDate)
		return txErr
	})

	uc.audit(ctx, domain.AuditActionPaymentUpdate, domain.AggregateTypePayment, id, before, updated, err)

	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (uc *PaymentUseCase) updatePaymentTx(
	ctx context.Context,
	id string,
	input UpdatePaymentInput,
	rate decimal.Decimal,
	paymentDate time.Time,
) (*domain.Payment, *domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	existing, err := uc.paymentRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}

	before := *existing

	now := time.Now().UTC()
	updated := &domain.Payment{
		ID:           existing.ID,
		PaymentNo:    existing.PaymentNo,
		Type:         input.Type,
		Channel:      input.Channel,
		Amount:       input.Amount,
		Currency:     normalizeCurrency(input.Currency),
		ExchangeRate: rate,
		AccountID:    input.AccountID,
		ContactID:    input.ContactID,
		Description:  input.Description,
		ReferenceNo:  input.ReferenceNo,
		PaymentDate:  paymentDate,
		CreatedAt:    existing.CreatedAt,
		UpdatedAt:    now,
	}

	if err := updated.Validate(); err != nil {
		return nil, nil, err
	}

	if paymentUnchanged(existing, updated) {
		return existing, &before, nil
	}

	accounts, err := uc.lockAccounts(ctx, tx, existing.AccountID, updated.AccountID)
	if err != nil {
		return nil, nil, err
	}

	oldAccount := accounts[existing.AccountID]
	newAccount := accounts[updated.AccountID]

	if !newAccount.Active {
		return nil, nil, domain.ErrAccountInactive
	}

	if newAccount.Currency != updated.Currency {
		return nil, nil, domain.ErrCurrencyMismatch
	}

	// Reverse the original effect on the original account.
	reversal := existing.SignedEffect().Neg()
	oldBalance := oldAccount.Balance.Add(reversal)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, oldAccount.ID, oldBalance, now); err != nil {
		return nil, nil, err
	}

	reversalEvent := &domain.BalanceEvent{
		ID:            uc.idGen.Generate(),
		AccountID:     oldAccount.ID,
		ReferenceType: domain.ReferenceTypePayment,
		ReferenceID:   existing.ID,
		Amount:        reversal,
		BalanceBefore: oldAccount.Balance,
		BalanceAfter:  oldBalance,
		Description:   fmt.Sprintf("payment %s reversed", existing.PaymentNo),
		CreatedAt:     now,
	}

	if err := uc.eventRepo.Create(ctx, tx, reversalEvent); err != nil {
		return nil, nil, err
	}

	// Reapply with the new values. When both legs hit the same account the
	// reversal above already adjusted its in-memory balance.
	applyBase := newAccount.Balance
	if newAccount.ID == oldAccount.ID {
		applyBase = oldBalance
	}

	effect := updated.SignedEffect()
	newBalance := applyBase.Add(effect)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, newAccount.ID, newBalance, now); err != nil {
		return nil, nil, err
	}

	applyEvent := &domain.BalanceEvent{
		ID:            uc.idGen.Generate(),
		AccountID:     newAccount.ID,
		ReferenceType: domain.ReferenceTypePayment,
		ReferenceID:   updated.ID,
		Amount:        effect,
		BalanceBefore: applyBase,
		BalanceAfter:  newBalance,
		Description:   fmt.Sprintf("payment %s updated", updated.PaymentNo),
		CreatedAt:     now,
	}

	if err := uc.eventRepo.Create(ctx, tx, applyEvent); err != nil {
		return nil, nil, err
	}

	if err := uc.paymentRepo.Update(ctx, tx, updated); err != nil {
		return nil, nil, err
	}

	outbox := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   updated.ID,
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventTypePaymentUpdated,
		Payload: domain.MarshalState(domain.PaymentCreatedEvent{
			PaymentID:    updated.ID,
			PaymentNo:    updated.PaymentNo,
			AccountID:    updated.AccountID,
			Type:         updated.Type.String(),
			Amount:       updated.Amount.String(),
			Currency:     updated.Currency,
			ExchangeRate: updated.ExchangeRate.String(),
		}),
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, outbox); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return updated, &before, nil
}

// RequestDelete issues a short-lived confirmation token for deleting a
// payment. The caller must echo it back to DeletePayment; this makes
// deletion a deliberate two-step action.
func (uc *PaymentUseCase) RequestDelete(ctx context.Context, id string) (string, error) {
	if _, err := uc.paymentRepo.GetByID(ctx, id); err != nil {
		return "", err
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	if err := uc.cache.Set(ctx, deleteTokenKey(id), []byte(token), DeleteConfirmationTTL); err != nil {
		return "", err
	}

	return token, nil
}

// DeletePayment deletes a payment after validating the confirmation token,
// reversing its balance effect in the same transaction.
func (uc *PaymentUseCase) DeletePayment(ctx context.Context, id, token string) error {
	stored, err := uc.cache.Get(ctx, deleteTokenKey(id))
	if err != nil || stored == nil || string(stored) != token {
		return domain.ErrInvalidConfirmation
	}

	var before *domain.Payment

	err = uc.retrier.Retry(ctx, func() error {
		var txErr error
		before, txErr = uc.deletePaymentTx(ctx, id)
		return txErr
	})

	uc.audit(ctx, domain.AuditActionPaymentDelete, domain.AggregateTypePayment, id, before, nil, err)

	if err != nil {
		return err
	}

	_ = uc.cache.Delete(ctx, deleteTokenKey(id))

	return nil
}

func (uc *PaymentUseCase) deletePaymentTx(ctx context.Context, id string) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	payment, err := uc.paymentRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, payment.AccountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversal := payment.SignedEffect().Neg()
	newBalance := account.Balance.Add(reversal)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	event := &domain.BalanceEvent{
		ID:            uc.idGen.Generate(),
		AccountID:     account.ID,
		ReferenceType: domain.ReferenceTypePayment,
		ReferenceID:   payment.ID,
		Amount:        reversal,
		BalanceBefore: account.Balance,
		BalanceAfter:  newBalance,
		Description:   fmt.Sprintf("payment %s deleted", payment.PaymentNo),
		CreatedAt:     now,
	}

	if err := uc.eventRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.paymentRepo.Delete(ctx, tx, id); err != nil {
		return nil, err
	}

	outbox := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   payment.ID,
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventTypePaymentDeleted,
		Payload: domain.MarshalState(domain.PaymentDeletedEvent{
			PaymentID: payment.ID,
			PaymentNo: payment.PaymentNo,
			AccountID: payment.AccountID,
			Amount:    payment.Amount.String(),
			Currency:  payment.Currency,
		}),
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, outbox); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return payment, nil
}

// GetPayment returns a payment by ID.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return uc.paymentRepo.GetByID(ctx, id)
}

// ListPayments returns payments matching the filter.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, filter PaymentFilter) ([]*domain.Payment, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.paymentRepo.List(ctx, filter)
}

// GetBalanceHistory returns the balance events of an account, newest first.
func (uc *PaymentUseCase) GetBalanceHistory(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceEvent, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.eventRepo.GetByAccount(ctx, accountID, limit, offset)
}

// lockAccounts locks the given accounts in sorted ID order and returns them
// keyed by ID. Sorted order keeps concurrent writers from deadlocking.
func (uc *PaymentUseCase) lockAccounts(ctx context.Context, tx Transaction, ids ...string) (map[string]*domain.Account, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, unique)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(unique) {
		return nil, domain.ErrAccountNotFound
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, acc := range accounts {
		byID[acc.ID] = acc
	}

	return byID, nil
}

func (uc *PaymentUseCase) resolvePaymentRate(ctx context.Context, currency string, explicit *decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	if explicit != nil {
		if explicit.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, domain.ErrInvalidRate
		}

		return *explicit, nil
	}

	return uc.rateSource.ResolveRate(ctx, normalizeCurrency(currency), at)
}

// audit records the action outcome. Best effort: a failed audit write never
// fails the business operation.
func (uc *PaymentUseCase) audit(ctx context.Context, action domain.AuditAction, resourceType, resourceID string, before, after any, opErr error) {
	entry := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	if opErr != nil {
		entry.Status = string(domain.AuditStatusError)
		entry.ErrorMessage = opErr.Error()
	}

	_ = uc.auditRepo.Create(ctx, entry)
}

func paymentUnchanged(a, b *domain.Payment) bool {
	return a.Type == b.Type &&
		a.Channel == b.Channel &&
		a.Amount.Equal(b.Amount) &&
		a.Currency == b.Currency &&
		a.ExchangeRate.Equal(b.ExchangeRate) &&
		a.AccountID == b.AccountID &&
		a.ContactID == b.ContactID &&
		a.Description == b.Description &&
		a.ReferenceNo == b.ReferenceNo &&
		a.PaymentDate.Equal(b.PaymentDate)
}

func paymentNoPrefix(d domain.Direction) string {
	if d == domain.DirectionIncoming {
		return PaymentNoPrefixIncoming
	}

	return PaymentNoPrefixOutgoing
}

func deleteTokenKey(id string) string {
	return "payment:delete:" + id
}
