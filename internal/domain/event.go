package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reference types linking a balance event to the movement that caused it.
const (
	ReferenceTypePayment  = "payment"
	ReferenceTypeTransfer = "transfer"
)

// BalanceEvent is an immutable snapshot of an account balance after a
// payment or transfer leg was applied. Append-only; never mutated or
// deleted, including when the causing payment is reversed (the reversal
// appends its own event).
type BalanceEvent struct {
	ID            string
	AccountID     string
	ReferenceType string
	ReferenceID   string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   string
	CreatedAt     time.Time
}
