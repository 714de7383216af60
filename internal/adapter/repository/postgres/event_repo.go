package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
)

// BalanceEventRepository implements usecase.BalanceEventRepository over the
// append-only balance_events table.
type BalanceEventRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceEventRepository creates a new BalanceEventRepository.
func NewBalanceEventRepository(pool *pgxpool.Pool) *BalanceEventRepository {
	return &BalanceEventRepository{pool: pool}
}

const eventColumns = `id, account_id, reference_type, reference_id, amount,
	balance_before, balance_after, description, created_at`

// Create appends a balance event within a transaction.
func (r *BalanceEventRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.BalanceEvent) error {
	query := `
		INSERT INTO balance_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := txq(tx).Exec(ctx, query,
		event.ID,
		event.AccountID,
		event.ReferenceType,
		event.ReferenceID,
		decimalToNumeric(event.Amount),
		decimalToNumeric(event.BalanceBefore),
		decimalToNumeric(event.BalanceAfter),
		event.Description,
		timeToPgTimestamptz(event.CreatedAt),
	)

	return err
}

// GetByAccount retrieves events of an account, newest first.
func (r *BalanceEventRepository) GetByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.BalanceEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM balance_events
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByReference retrieves the events produced by one payment or transfer.
func (r *BalanceEventRepository) GetByReference(ctx context.Context, referenceType, referenceID string) ([]*domain.BalanceEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM balance_events
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, referenceType, referenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// SumEffects sums all event amounts of an account.
func (r *BalanceEventRepository) SumEffects(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM balance_events WHERE account_id = $1`,
		accountID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// GetBalanceAtTime derives the event-sourced balance as of a point in time.
func (r *BalanceEventRepository) GetBalanceAtTime(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM balance_events WHERE account_id = $1 AND created_at <= $2`,
		accountID, timeToPgTimestamptz(at),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func scanEvents(rows pgx.Rows) ([]*domain.BalanceEvent, error) {
	var events []*domain.BalanceEvent

	for rows.Next() {
		var (
			event   domain.BalanceEvent
			amount  pgtype.Numeric
			before  pgtype.Numeric
			after   pgtype.Numeric
			created pgtype.Timestamptz
		)

		err := rows.Scan(
			&event.ID,
			&event.AccountID,
			&event.ReferenceType,
			&event.ReferenceID,
			&amount,
			&before,
			&after,
			&event.Description,
			&created,
		)
		if err != nil {
			return nil, err
		}

		event.Amount = numericToDecimal(amount)
		event.BalanceBefore = numericToDecimal(before)
		event.BalanceAfter = numericToDecimal(after)
		event.CreatedAt = created.Time

		events = append(events, &event)
	}

	return events, rows.Err()
}
