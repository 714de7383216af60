package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
)

// TransferUseCase moves money between two accounts, converting currency when
// the accounts differ. Both legs commit in one transaction with the account
// rows locked in sorted ID order.
type TransferUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	eventRepo    BalanceEventRepository
	outboxRepo   OutboxRepository
	auditRepo    AuditRepository
	rateSource   RateSource
	idGen        IDGenerator
	numGen       NumberGenerator
	retrier      Retrier
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	eventRepo BalanceEventRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	rateSource RateSource,
	idGen IDGenerator,
	numGen NumberGenerator,
	retrier Retrier,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		eventRepo:    eventRepo,
		outboxRepo:   outboxRepo,
		auditRepo:    auditRepo,
		rateSource:   rateSource,
		idGen:        idGen,
		numGen:       numGen,
		retrier:      retrier,
	}
}

// CreateTransferInput represents input for a transfer. Exactly one way to
// fix the destination amount: an explicit ExchangeRate, an explicit
// ToAmount, or neither (the rate is then resolved from recorded rates).
// Setting both is rejected with ErrRateConflict.
type CreateTransferInput struct {
	FromAccountID string
	ToAccountID   string
	FromAmount    decimal.Decimal
	ExchangeRate  *decimal.Decimal
	ToAmount      *decimal.Decimal
	Description   string
	ReferenceNo   string
	EventAt       time.Time
}

// CreateTransfer debits the source account and credits the destination
// atomically. Same-currency transfers always use rate 1; cross-currency
// transfers need an explicit rate, an explicit destination amount, or a
// derivable cross-rate, otherwise ErrRateUnavailable.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.FromAmount); err != nil {
		return nil, err
	}

	if input.ExchangeRate != nil && input.ToAmount != nil {
		return nil, domain.ErrRateConflict
	}

	if input.ExchangeRate != nil && input.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidRate
	}

	if input.ToAmount != nil && input.ToAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	eventAt := input.EventAt
	if eventAt.IsZero() {
		eventAt = time.Now().UTC()
	}

	var transfer *domain.Transfer

	err := uc.retrier.Retry(ctx, func() error {
		var txErr error
		transfer, txErr = uc.createTransferTx(ctx, input, eventAt)
		return txErr
	})

	var auditID string
	if transfer != nil {
		auditID = transfer.ID
	}
	uc.auditEntry(ctx, domain.AuditActionTransferCreate, auditID, transfer, err)

	if err != nil {
		return nil, err
	}

	return transfer, nil
}

func (uc *TransferUseCase) createTransferTx(ctx context.Context, input CreateTransferInput, eventAt time.Time) (*domain.Transfer, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, sortedPair(input.FromAccountID, input.ToAccountID))
	if err != nil {
		return nil, err
	}

	if len(accounts) != 2 {
		return nil, domain.ErrAccountNotFound
	}

	var from, to *domain.Account
	for _, acc := range accounts {
		switch acc.ID {
		case input.FromAccountID:
			from = acc
		case input.ToAccountID:
			to = acc
		}
	}

	if from == nil || to == nil {
		return nil, domain.ErrAccountNotFound
	}

	if !from.Active || !to.Active {
		return nil, domain.ErrAccountInactive
	}

	rate, toAmount, err := uc.resolveLegs(ctx, from, to, input, eventAt)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		ID:            uc.idGen.Generate(),
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		FromAmount:    input.FromAmount,
		ToAmount:      toAmount,
		ExchangeRate:  rate,
		Description:   input.Description,
		ReferenceNo:   input.ReferenceNo,
		CreatedAt:     now,
		EventAt:       eventAt,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	transfer.TransferNo, err = uc.numGen.Next(ctx, tx, TransferNoPrefix, eventAt)
	if err != nil {
		return nil, err
	}

	if err := uc.transferRepo.Create(ctx, tx, transfer); err != nil {
		return nil, err
	}

	fromBalance := from.ApplyDebit(transfer.FromAmount)
	if err := uc.accountRepo.UpdateBalance(ctx, tx, from.ID, fromBalance, now); err != nil {
		return nil, err
	}

	debitEvent := &domain.BalanceEvent{
		ID:            uc.idGen.Generate(),
		AccountID:     from.ID,
		ReferenceType: domain.ReferenceTypeTransfer,
		ReferenceID:   transfer.ID,
		Amount:        transfer.FromAmount.Neg(),
		BalanceBefore: from.Balance,
		BalanceAfter:  fromBalance,
		Description:   fmt.Sprintf("transfer %s out", transfer.TransferNo),
		CreatedAt:     now,
	}

	if err := uc.eventRepo.Create(ctx, tx, debitEvent); err != nil {
		return nil, err
	}

	toBalance := to.ApplyCredit(transfer.ToAmount)
	if err := uc.accountRepo.UpdateBalance(ctx, tx, to.ID, toBalance, now); err != nil {
		return nil, err
	}

	creditEvent := &domain.BalanceEvent{
		ID:            uc.idGen.Generate(),
		AccountID:     to.ID,
		ReferenceType: domain.ReferenceTypeTransfer,
		ReferenceID:   transfer.ID,
		Amount:        transfer.ToAmount,
		BalanceBefore: to.Balance,
		BalanceAfter:  toBalance,
		Description:   fmt.Sprintf("transfer %s in", transfer.TransferNo),
		CreatedAt:     now,
	}

	if err := uc.eventRepo.Create(ctx, tx, creditEvent); err != nil {
		return nil, err
	}

	outbox := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transfer.ID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCreated,
		Payload: domain.MarshalState(domain.TransferCreatedEvent{
			TransferID:    transfer.ID,
			TransferNo:    transfer.TransferNo,
			FromAccountID: transfer.FromAccountID,
			ToAccountID:   transfer.ToAccountID,
			FromAmount:    transfer.FromAmount.String(),
			ToAmount:      transfer.ToAmount.String(),
			ExchangeRate:  transfer.ExchangeRate.String(),
		}),
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, outbox); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return transfer, nil
}

// resolveLegs fixes the realized rate and the destination amount.
// Resolution order: explicit rate, explicit destination amount, same
// currency (rate 1), derived cross-rate. Nothing is ever defaulted to 1
// across different currencies.
func (uc *TransferUseCase) resolveLegs(
	ctx context.Context,
	from, to *domain.Account,
	input CreateTransferInput,
	eventAt time.Time,
) (decimal.Decimal, decimal.Decimal, error) {
	switch {
	case input.ExchangeRate != nil:
		rate := *input.ExchangeRate
		return rate, input.FromAmount.Mul(rate).Round(8), nil

	case input.ToAmount != nil:
		toAmount := *input.ToAmount
		return toAmount.DivRound(input.FromAmount, 8), toAmount, nil

	case from.Currency == to.Currency:
		return decimal.NewFromInt(1), input.FromAmount, nil

	default:
		rate, err := uc.rateSource.CrossRate(ctx, from.Currency, to.Currency, &eventAt)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}

		return rate, input.FromAmount.Mul(rate).Round(8), nil
	}
}

// GetTransfer returns a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfers returns transfers touching an account, newest first.
func (uc *TransferUseCase) ListTransfers(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.transferRepo.ListByAccount(ctx, accountID, limit, offset)
}

func (uc *TransferUseCase) auditEntry(ctx context.Context, action domain.AuditAction, resourceID string, after any, opErr error) {
	entry := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Action:       string(action),
		ResourceType: domain.AggregateTypeTransfer,
		ResourceID:   resourceID,
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

func sortedPair(a, b string) []string {
	if a < b {
		return []string{a, b}
	}

	return []string{b, a}
}
