package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction says which way money moves relative to the account.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Category refines a payment beyond its direction.
type Category string

const (
	CategoryPayment          Category = "payment"
	CategoryIntraCompany     Category = "intra_company"
	CategoryInterCompany     Category = "inter_company"
	CategoryCurrencyExchange Category = "currency_exchange"
)

// PaymentType is the direction/category pair. The legacy wire format is a
// single string with eight variants; ParsePaymentType accepts those and
// String renders them back, so direction never has to be re-derived from
// string-set membership at call sites.
type PaymentType struct {
	Direction Direction
	Category  Category
}

var legacyPaymentTypes = map[string]PaymentType{
	"incoming":          {DirectionIncoming, CategoryPayment},
	"outgoing":          {DirectionOutgoing, CategoryPayment},
	"intra_company_in":  {DirectionIncoming, CategoryIntraCompany},
	"intra_company_out": {DirectionOutgoing, CategoryIntraCompany},
	"inter_company_in":  {DirectionIncoming, CategoryInterCompany},
	"inter_company_out": {DirectionOutgoing, CategoryInterCompany},
	"currency_purchase": {DirectionIncoming, CategoryCurrencyExchange},
	"currency_sale":     {DirectionOutgoing, CategoryCurrencyExchange},
}

// ParsePaymentType parses a legacy payment type string.
func ParsePaymentType(s string) (PaymentType, error) {
	pt, ok := legacyPaymentTypes[s]
	if !ok {
		return PaymentType{}, ErrInvalidPaymentType
	}

	return pt, nil
}

// String renders the legacy wire representation.
func (pt PaymentType) String() string {
	switch pt.Category {
	case CategoryPayment:
		return string(pt.Direction)
	case CategoryIntraCompany:
		if pt.Direction == DirectionIncoming {
			return "intra_company_in"
		}
		return "intra_company_out"
	case CategoryInterCompany:
		if pt.Direction == DirectionIncoming {
			return "inter_company_in"
		}
		return "inter_company_out"
	case CategoryCurrencyExchange:
		if pt.Direction == DirectionIncoming {
			return "currency_purchase"
		}
		return "currency_sale"
	}

	return ""
}

// Valid reports whether the pair is a known combination.
func (pt PaymentType) Valid() bool {
	_, ok := legacyPaymentTypes[pt.String()]
	return ok
}

// Payment records a directional money movement against one account and one
// counterparty. Amount is always positive; direction is carried by Type.
type Payment struct {
	ID           string
	PaymentNo    string
	Type         PaymentType
	Channel      string
	Amount       decimal.Decimal
	Currency     string
	ExchangeRate decimal.Decimal
	AccountID    string
	ContactID    string
	Description  string
	ReferenceNo  string
	PaymentDate  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SignedEffect is the delta this payment applies to its account balance.
func (p *Payment) SignedEffect() decimal.Decimal {
	if p.Type.Direction == DirectionIncoming {
		return p.Amount
	}

	return p.Amount.Neg()
}

// BaseAmount is the payment amount expressed in the base currency.
func (p *Payment) BaseAmount() decimal.Decimal {
	return p.Amount.Mul(p.ExchangeRate)
}

// Validate validates the payment fields that do not need repository access.
func (p *Payment) Validate() error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !p.Type.Valid() {
		return ErrInvalidPaymentType
	}

	if p.ExchangeRate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRate
	}

	return nil
}
