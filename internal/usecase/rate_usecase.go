package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
)

const latestRateCacheTTL = 5 * time.Minute

// RateUseCase is the single source of truth for exchange rates and
// conversions. Rates are quoted per currency per calendar date against the
// base currency; cross-rates between two non-base currencies are derived
// through it. A missing rate is always an error, never a fabricated 1:1.
type RateUseCase struct {
	txManager  TransactionManager
	rateRepo   RateRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	cache      Cache
}

// NewRateUseCase creates a new RateUseCase. cache may be nil.
func NewRateUseCase(
	txManager TransactionManager,
	rateRepo RateRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
) *RateUseCase {
	return &RateUseCase{
		txManager:  txManager,
		rateRepo:   rateRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		cache:      cache,
	}
}

// RecordRateInput represents input for recording a rate.
type RecordRateInput struct {
	Currency string
	Date     time.Time
	Buying   decimal.Decimal
	Selling  decimal.Decimal
}

// RecordRate upserts the quote for (currency, date). Re-submitting the same
// key overwrites: the ingestion job may re-fetch source data.
func (uc *RateUseCase) RecordRate(ctx context.Context, input RecordRateInput) (*domain.ExchangeRate, error) {
	rate := &domain.ExchangeRate{
		Currency:  normalizeCurrency(input.Currency),
		Date:      domain.RateDate(input.Date),
		Buying:    input.Buying,
		Selling:   input.Selling,
		CreatedAt: time.Now().UTC(),
	}

	if err := rate.Validate(); err != nil {
		return nil, err
	}

	err := uc.recordRateTx(ctx, rate)
	uc.auditEntry(ctx, rate, err)

	if err != nil {
		return nil, err
	}

	uc.invalidateLatest(ctx, rate.Currency)

	return rate, nil
}

func (uc *RateUseCase) recordRateTx(ctx context.Context, rate *domain.ExchangeRate) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.rateRepo.Upsert(ctx, tx, rate); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   rate.Currency,
		AggregateType: domain.AggregateTypeRate,
		EventType:     domain.EventTypeRateRecorded,
		Payload: domain.MarshalState(domain.RateRecordedEvent{
			Currency: rate.Currency,
			Date:     rate.Date.Format("2006-01-02"),
			Buying:   rate.Buying.String(),
			Selling:  rate.Selling.String(),
		}),
		CreatedAt: rate.CreatedAt,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *RateUseCase) auditEntry(ctx context.Context, rate *domain.ExchangeRate, opErr error) {
	entry := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Action:       string(domain.AuditActionRateRecord),
		ResourceType: domain.AggregateTypeRate,
		ResourceID:   rate.Currency,
		AfterState:   domain.MarshalState(rate),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	if opErr != nil {
		entry.Status = string(domain.AuditStatusError)
		entry.ErrorMessage = opErr.Error()
	}

	_ = uc.auditRepo.Create(ctx, entry)
}

// GetRate returns the quote recorded for the exact calendar date.
func (uc *RateUseCase) GetRate(ctx context.Context, currency string, date time.Time) (*domain.ExchangeRate, error) {
	return uc.rateRepo.GetByDate(ctx, normalizeCurrency(currency), domain.RateDate(date))
}

// GetLatestRate returns the most recent quote at or before now.
func (uc *RateUseCase) GetLatestRate(ctx context.Context, currency string) (*domain.ExchangeRate, error) {
	currency = normalizeCurrency(currency)

	if cached := uc.cachedLatest(ctx, currency); cached != nil {
		return cached, nil
	}

	rate, err := uc.rateRepo.GetLatest(ctx, currency, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	uc.storeLatest(ctx, rate)

	return rate, nil
}

// CrossRate returns the from->to conversion rate derived through the base
// currency, using the buying side (the conservative conversion rate). With a
// date, both legs must exist for that exact date; without one, the latest
// known quotes are used. A missing leg yields ErrRateUnavailable.
func (uc *RateUseCase) CrossRate(ctx context.Context, from, to string, date *time.Time) (decimal.Decimal, error) {
	from = normalizeCurrency(from)
	to = normalizeCurrency(to)

	if from == to {
		return decimal.NewFromInt(1), nil
	}

	fromLeg, err := uc.baseLeg(ctx, from, date)
	if err != nil {
		return decimal.Zero, err
	}

	toLeg, err := uc.baseLeg(ctx, to, date)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.CrossRate(fromLeg, toLeg)
}

// ResolveRate returns the currency->base rate effective at the given time.
// For a non-base currency it prefers the quote on that calendar date and
// falls back to the latest quote at or before it.
func (uc *RateUseCase) ResolveRate(ctx context.Context, currency string, at time.Time) (decimal.Decimal, error) {
	currency = normalizeCurrency(currency)

	if currency == domain.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}

	rate, err := uc.rateRepo.GetByDate(ctx, currency, domain.RateDate(at))
	if errors.Is(err, domain.ErrRateNotFound) {
		rate, err = uc.rateRepo.GetLatest(ctx, currency, at)
	}

	if err != nil {
		if errors.Is(err, domain.ErrRateNotFound) {
			return decimal.Zero, domain.ErrRateUnavailable
		}

		return decimal.Zero, err
	}

	return rate.Buying, nil
}

// baseLeg returns the currency->base rate for one leg of a cross-rate.
func (uc *RateUseCase) baseLeg(ctx context.Context, currency string, date *time.Time) (decimal.Decimal, error) {
	if currency == domain.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}

	var (
		rate *domain.ExchangeRate
		err  error
	)

	if date != nil {
		rate, err = uc.rateRepo.GetByDate(ctx, currency, domain.RateDate(*date))
	} else {
		rate, err = uc.rateRepo.GetLatest(ctx, currency, time.Now().UTC())
	}

	if err != nil {
		if errors.Is(err, domain.ErrRateNotFound) {
			return decimal.Zero, domain.ErrRateUnavailable
		}

		return decimal.Zero, err
	}

	return rate.Buying, nil
}

func (uc *RateUseCase) cachedLatest(ctx context.Context, currency string) *domain.ExchangeRate {
	if uc.cache == nil {
		return nil
	}

	data, err := uc.cache.Get(ctx, latestRateCacheKey(currency))
	if err != nil || data == nil {
		return nil
	}

	var rate domain.ExchangeRate
	if err := json.Unmarshal(data, &rate); err != nil {
		return nil
	}

	return &rate
}

func (uc *RateUseCase) storeLatest(ctx context.Context, rate *domain.ExchangeRate) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(rate)
	if err != nil {
		return
	}

	_ = uc.cache.Set(ctx, latestRateCacheKey(rate.Currency), data, latestRateCacheTTL)
}

func (uc *RateUseCase) invalidateLatest(ctx context.Context, currency string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, latestRateCacheKey(currency))
}

func latestRateCacheKey(currency string) string {
	return "rate:latest:" + currency
}
