package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer (virman) moves money between two accounts, possibly converting
// currency. FromAmount is debited from the source, ToAmount credited to the
// destination; ExchangeRate is the realized from->to rate, stored even when
// the caller supplied ToAmount directly.
type Transfer struct {
	ID            string
	TransferNo    string
	FromAccountID string
	ToAccountID   string
	FromAmount    decimal.Decimal
	ToAmount      decimal.Decimal
	ExchangeRate  decimal.Decimal
	Description   string
	ReferenceNo   string
	CreatedAt     time.Time
	EventAt       time.Time
}

// Validate validates transfer request.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	if t.FromAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRate
	}

	return nil
}
