package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	CompanyID      string          `json:"company_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		CompanyID:      r.CompanyID,
		Code:           r.Code,
		Name:           r.Name,
		Type:           domain.AccountType(r.Type),
		Currency:       r.Currency,
		OpeningBalance: r.OpeningBalance,
	}
}

// SetAccountActiveRequest toggles the active flag on an account.
type SetAccountActiveRequest struct {
	Active bool `json:"active"`
}

// PaymentRequest represents a request to create or update a payment. The
// payment type travels in the legacy single-string form.
type PaymentRequest struct {
	Type         string           `json:"type"`
	Channel      string           `json:"channel"`
	Amount       decimal.Decimal  `json:"amount"`
	Currency     string           `json:"currency"`
	AccountID    string           `json:"account_id"`
	ContactID    string           `json:"contact_id"`
	Description  string           `json:"description,omitempty"`
	ReferenceNo  string           `json:"reference_no,omitempty"`
	PaymentDate  *time.Time       `json:"payment_date,omitempty"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate,omitempty"`
}

// ToCreateInput converts to use case input.
func (r *PaymentRequest) ToCreateInput() (usecase.CreatePaymentInput, error) {
	pt, err := domain.ParsePaymentType(r.Type)
	if err != nil {
		return usecase.CreatePaymentInput{}, err
	}

	input := usecase.CreatePaymentInput{
		Type:         pt,
		Channel:      r.Channel,
		Amount:       r.Amount,
		Currency:     r.Currency,
		AccountID:    r.AccountID,
		ContactID:    r.ContactID,
		Description:  r.Description,
		ReferenceNo:  r.ReferenceNo,
		ExchangeRate: r.ExchangeRate,
	}
	if r.PaymentDate != nil {
		input.PaymentDate = *r.PaymentDate
	}

	return input, nil
}

// ToUpdateInput converts to use case input.
func (r *PaymentRequest) ToUpdateInput() (usecase.UpdatePaymentInput, error) {
	pt, err := domain.ParsePaymentType(r.Type)
	if err != nil {
		return usecase.UpdatePaymentInput{}, err
	}

	input := usecase.UpdatePaymentInput{
		Type:         pt,
		Channel:      r.Channel,
		Amount:       r.Amount,
		Currency:     r.Currency,
		AccountID:    r.AccountID,
		ContactID:    r.ContactID,
		Description:  r.Description,
		ReferenceNo:  r.ReferenceNo,
		ExchangeRate: r.ExchangeRate,
	}
	if r.PaymentDate != nil {
		input.PaymentDate = *r.PaymentDate
	}

	return input, nil
}

// DeletePaymentRequest carries the confirmation token from RequestDelete.
type DeletePaymentRequest struct {
	ConfirmationToken string `json:"confirmation_token"`
}

// CreateTransferRequest represents a request to create a transfer. At most
// one of exchange_rate and to_amount may be set; with neither, the rate is
// resolved from recorded quotes.
type CreateTransferRequest struct {
	FromAccountID string           `json:"from_account_id"`
	ToAccountID   string           `json:"to_account_id"`
	FromAmount    decimal.Decimal  `json:"from_amount"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate,omitempty"`
	ToAmount      *decimal.Decimal `json:"to_amount,omitempty"`
	Description   string           `json:"description,omitempty"`
	ReferenceNo   string           `json:"reference_no,omitempty"`
	EventAt       *time.Time       `json:"event_at,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.CreateTransferInput {
	input := usecase.CreateTransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		FromAmount:    r.FromAmount,
		ExchangeRate:  r.ExchangeRate,
		ToAmount:      r.ToAmount,
		Description:   r.Description,
		ReferenceNo:   r.ReferenceNo,
	}
	if r.EventAt != nil {
		input.EventAt = *r.EventAt
	}

	return input
}

// RecordRateRequest represents a request to record an exchange rate quote.
type RecordRateRequest struct {
	Currency string          `json:"currency"`
	Date     time.Time       `json:"date"`
	Buying   decimal.Decimal `json:"buying"`
	Selling  decimal.Decimal `json:"selling"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordRateRequest) ToUseCaseInput() usecase.RecordRateInput {
	return usecase.RecordRateInput{
		Currency: r.Currency,
		Date:     r.Date,
		Buying:   r.Buying,
		Selling:  r.Selling,
	}
}

// RecordItemRequest represents one sale or purchase line.
type RecordItemRequest struct {
	TransactionNo string          `json:"transaction_no"`
	ProductID     string          `json:"product_id"`
	ContactID     string          `json:"contact_id"`
	CompanyID     string          `json:"company_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	Currency      string          `json:"currency"`
	Date          *time.Time      `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordItemRequest) ToUseCaseInput() usecase.RecordItemInput {
	input := usecase.RecordItemInput{
		TransactionNo: r.TransactionNo,
		ProductID:     r.ProductID,
		ContactID:     r.ContactID,
		CompanyID:     r.CompanyID,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		CostPrice:     r.CostPrice,
		Currency:      r.Currency,
	}
	if r.Date != nil {
		input.Date = *r.Date
	}

	return input
}
