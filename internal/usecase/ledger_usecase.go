package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
)

// LedgerUseCase answers consistency questions: does every stored balance
// equal the sum of the balance events that produced it.
type LedgerUseCase struct {
	accountRepo AccountRepository
	eventRepo   BalanceEventRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accountRepo AccountRepository, eventRepo BalanceEventRepository) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo: accountRepo,
		eventRepo:   eventRepo,
	}
}

// Reconciliation compares an account's stored balance with its opening
// balance plus the sum of its balance events. Drift of zero means the
// stored balance is fully explained by recorded events.
type Reconciliation struct {
	AccountID     string
	StoredBalance decimal.Decimal
	EventSum      decimal.Decimal
	Drift         decimal.Decimal
	Consistent    bool
	CheckedAt     time.Time
}

// ReconcileAccount recomputes one account's balance from its events.
func (uc *LedgerUseCase) ReconcileAccount(ctx context.Context, accountID string) (*Reconciliation, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sum, err := uc.eventRepo.SumEffects(ctx, accountID)
	if err != nil {
		return nil, err
	}

	drift := account.Balance.Sub(account.OpeningBalance).Sub(sum)

	return &Reconciliation{
		AccountID:     accountID,
		StoredBalance: account.Balance,
		EventSum:      sum,
		Drift:         drift,
		Consistent:    drift.IsZero(),
		CheckedAt:     time.Now().UTC(),
	}, nil
}

// ConsistencyReport is the ledger-wide reconciliation result.
type ConsistencyReport struct {
	CheckedAccounts int
	Inconsistent    []Reconciliation
	CheckedAt       time.Time
}

// CheckConsistency reconciles every account and reports the drifting ones.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report := &ConsistencyReport{CheckedAt: time.Now().UTC()}

	const pageSize = 500
	offset := 0

	for {
		accounts, err := uc.accountRepo.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}

		if len(accounts) == 0 {
			break
		}

		for _, account := range accounts {
			rec, err := uc.ReconcileAccount(ctx, account.ID)
			if err != nil {
				return nil, err
			}

			report.CheckedAccounts++
			if !rec.Consistent {
				report.Inconsistent = append(report.Inconsistent, *rec)
			}
		}

		if len(accounts) < pageSize {
			break
		}

		offset += pageSize
	}

	return report, nil
}

// BalanceAt returns the account balance as of a point in time, derived from
// the event stream.
func (uc *LedgerUseCase) BalanceAt(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	return uc.eventRepo.GetBalanceAtTime(ctx, accountID, at)
}

// GetReference returns the balance events produced by one payment or
// transfer.
func (uc *LedgerUseCase) GetReference(ctx context.Context, referenceType, referenceID string) ([]*domain.BalanceEvent, error) {
	return uc.eventRepo.GetByReference(ctx, referenceType, referenceID)
}
