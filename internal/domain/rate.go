package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the reference currency all exchange rates are quoted
// against: 1 unit of ExchangeRate.Currency = Buying/Selling units of TRY.
const BaseCurrency = "TRY"

// ExchangeRate holds one buying/selling quote per currency per calendar
// date. Keyed uniquely by (Currency, Date); re-submitting the same key
// overwrites (source data may be re-fetched). Past dates are otherwise
// immutable.
type ExchangeRate struct {
	Currency  string
	Date      time.Time
	Buying    decimal.Decimal
	Selling   decimal.Decimal
	CreatedAt time.Time
}

// Validate checks the quoted rates.
func (r *ExchangeRate) Validate() error {
	if err := ValidateCurrency(r.Currency); err != nil {
		return err
	}

	if r.Currency == BaseCurrency {
		return ErrInvalidRate
	}

	if r.Buying.LessThanOrEqual(decimal.Zero) || r.Selling.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRate
	}

	return nil
}

// CrossRate derives the from->to conversion rate through the base currency.
// Each leg is the buying rate of that currency against base; the base
// currency itself is a leg of 1. The result is fromLeg / toLeg.
func CrossRate(fromLeg, toLeg decimal.Decimal) (decimal.Decimal, error) {
	if fromLeg.LessThanOrEqual(decimal.Zero) || toLeg.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrRateUnavailable
	}

	return fromLeg.DivRound(toLeg, 8), nil
}

// RateDate normalizes a timestamp to its calendar date in UTC.
func RateDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
