package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies where an account holds money.
type AccountType string

const (
	AccountTypeCash           AccountType = "cash"
	AccountTypeBank           AccountType = "bank"
	AccountTypeCrypto         AccountType = "crypto"
	AccountTypePaymentGateway AccountType = "payment_gateway"
)

// Account is a money-holding entity with a fixed currency. The balance is
// always denominated in Currency and is mutated only by the payment and
// transfer use cases. Balances may go negative: the ledger tracks real
// cash/float positions and does not enforce overdraft policy.
type Account struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Type      AccountType
	Currency  string
	Balance   decimal.Decimal
	// OpeningBalance is the seed balance at creation. Reconciliation
	// expects Balance == OpeningBalance + sum of balance events.
	OpeningBalance decimal.Decimal
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ApplyCredit returns the balance after adding amount.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// ApplyDebit returns the balance after subtracting amount.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ValidateType checks the account type tag.
func ValidateAccountType(t AccountType) error {
	switch t {
	case AccountTypeCash, AccountTypeBank, AccountTypeCrypto, AccountTypePaymentGateway:
		return nil
	}

	return ErrInvalidAccountType
}
