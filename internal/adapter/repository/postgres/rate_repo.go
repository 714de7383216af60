package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
)

// RateRepository implements usecase.RateRepository. The table is keyed by
// (currency, rate_date); upserts overwrite so ingestion can re-fetch.
type RateRepository struct {
	pool *pgxpool.Pool
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}

const rateColumns = `currency, rate_date, buying, selling, created_at`

// Upsert writes the quote for (currency, date) within a transaction.
func (r *RateRepository) Upsert(ctx context.Context, tx usecase.Transaction, rate *domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (` + rateColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (currency, rate_date)
		DO UPDATE SET buying = EXCLUDED.buying, selling = EXCLUDED.selling, created_at = EXCLUDED.created_at
	`

	_, err := txq(tx).Exec(ctx, query,
		rate.Currency,
		rate.Date,
		decimalToNumeric(rate.Buying),
		decimalToNumeric(rate.Selling),
		timeToPgTimestamptz(rate.CreatedAt),
	)

	return err
}

// GetByDate retrieves the quote for the exact calendar date.
func (r *RateRepository) GetByDate(ctx context.Context, currency string, date time.Time) (*domain.ExchangeRate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+rateColumns+` FROM exchange_rates WHERE currency = $1 AND rate_date = $2`,
		currency, date,
	)

	return scanRate(row)
}

// GetLatest retrieves the most recent quote at or before the given time.
func (r *RateRepository) GetLatest(ctx context.Context, currency string, at time.Time) (*domain.ExchangeRate, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE currency = $1 AND rate_date <= $2
		ORDER BY rate_date DESC
		LIMIT 1
	`, currency, at)

	return scanRate(row)
}

func scanRate(row pgx.Row) (*domain.ExchangeRate, error) {
	var (
		rate    domain.ExchangeRate
		date    pgtype.Date
		buying  pgtype.Numeric
		selling pgtype.Numeric
		created pgtype.Timestamptz
	)

	err := row.Scan(&rate.Currency, &date, &buying, &selling, &created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRateNotFound
		}

		return nil, err
	}

	rate.Date = date.Time
	rate.Buying = numericToDecimal(buying)
	rate.Selling = numericToDecimal(selling)
	rate.CreatedAt = created.Time

	return &rate, nil
}
