package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	SumBalancesByCurrency(ctx context.Context) (map[string]decimal.Decimal, error)
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	Direction domain.Direction
	Category  domain.Category
	Channel   string
	AccountID string
	ContactID string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Payment, error)
	Update(ctx context.Context, tx Transaction, payment *domain.Payment) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, filter PaymentFilter) ([]*domain.Payment, error)
}

// TransferRepository defines data access for transfers.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error)
}

// BalanceEventRepository defines data access for balance events.
type BalanceEventRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.BalanceEvent) error
	GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceEvent, error)
	GetByReference(ctx context.Context, referenceType, referenceID string) ([]*domain.BalanceEvent, error)
	SumEffects(ctx context.Context, accountID string) (decimal.Decimal, error)
	GetBalanceAtTime(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error)
}

// RateRepository defines data access for exchange rates.
type RateRepository interface {
	Upsert(ctx context.Context, tx Transaction, rate *domain.ExchangeRate) error
	GetByDate(ctx context.Context, currency string, date time.Time) (*domain.ExchangeRate, error)
	GetLatest(ctx context.Context, currency string, at time.Time) (*domain.ExchangeRate, error)
}

// ItemFilter narrows transaction line listings for profit reporting.
type ItemFilter struct {
	ProductID string
	ContactID string
	CompanyID string
	Currency  string
	StartDate *time.Time
	EndDate   *time.Time
}

// ItemRepository defines data access for persisted transaction lines.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.TransactionItem) error
	List(ctx context.Context, filter ItemFilter) ([]*domain.TransactionItem, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// NumberGenerator issues human-readable document numbers
// (prefix + yyyymmdd + daily sequence) inside the write transaction.
type NumberGenerator interface {
	Next(ctx context.Context, tx Transaction, prefix string, date time.Time) (string, error)
}

// Retrier re-runs an operation when it fails with a retryable error
// (lock contention, serialization failure).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// RateSource resolves conversion rates for other use cases.
type RateSource interface {
	// ResolveRate returns the currency->base rate effective at the given
	// time (1 for the base currency).
	ResolveRate(ctx context.Context, currency string, at time.Time) (decimal.Decimal, error)
	// CrossRate returns the from->to rate, derived through the base
	// currency. A nil date means "latest known".
	CrossRate(ctx context.Context, from, to string, date *time.Time) (decimal.Decimal, error)
}
