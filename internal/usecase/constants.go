package usecase

import (
	"strings"
	"time"
)

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DeleteConfirmationTTL is how long a deletion confirmation token stays valid
	DeleteConfirmationTTL = 10 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// Document number prefixes
	PaymentNoPrefixIncoming = "PMI"
	PaymentNoPrefixOutgoing = "PMO"
	TransferNoPrefix        = "TRF"
)

// normalizeCurrency canonicalizes a currency code for lookups and storage.
func normalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}
