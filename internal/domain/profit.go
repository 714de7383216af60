package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionItem is one line of a sale or purchase. Quantity is positive;
// UnitPrice and CostPrice are per unit in Currency. Profit figures are
// computed at write time and persisted, so historical profit stays stable
// when product default prices change later.
type TransactionItem struct {
	ID            string
	TransactionNo string
	ProductID     string
	ContactID     string
	CompanyID     string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	CostPrice     decimal.Decimal
	Currency      string
	Date          time.Time

	// Persisted at write time, never recomputed from later prices.
	LineTotal  decimal.Decimal
	LineCost   decimal.Decimal
	LineProfit decimal.Decimal
	MarginPct  decimal.Decimal
}

// LineProfit is the per-line profit breakdown.
type LineProfit struct {
	LineTotal  decimal.Decimal
	LineCost   decimal.Decimal
	LineProfit decimal.Decimal
	MarginPct  decimal.Decimal
}

// ComputeLineProfit computes the profit breakdown of one line.
// MarginPct is 0 when LineTotal is 0.
func ComputeLineProfit(item TransactionItem) LineProfit {
	lineTotal := item.Quantity.Mul(item.UnitPrice)
	lineCost := item.Quantity.Mul(item.CostPrice)
	lineProfit := lineTotal.Sub(lineCost)

	marginPct := decimal.Zero
	if !lineTotal.IsZero() {
		marginPct = lineProfit.DivRound(lineTotal, 8).Mul(decimal.NewFromInt(100))
	}

	return LineProfit{
		LineTotal:  lineTotal,
		LineCost:   lineCost,
		LineProfit: lineProfit,
		MarginPct:  marginPct,
	}
}

// Validate validates a transaction line.
func (i *TransactionItem) Validate() error {
	if i.Quantity.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return ValidateCurrency(i.Currency)
}
