package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
	"github.com/iho/kasa/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Currency       string          `json:"currency"`
	Balance        decimal.Decimal `json:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		CompanyID:      a.CompanyID,
		Code:           a.Code,
		Name:           a.Name,
		Type:           string(a.Type),
		Currency:       a.Currency,
		Balance:        a.Balance,
		OpeningBalance: a.OpeningBalance,
		Active:         a.Active,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// PaymentResponse represents a payment in API responses. Type carries the
// legacy string form; direction and category are broken out alongside it.
type PaymentResponse struct {
	ID           string          `json:"id"`
	PaymentNo    string          `json:"payment_no"`
	Type         string          `json:"type"`
	Direction    string          `json:"direction"`
	Category     string          `json:"category"`
	Channel      string          `json:"channel"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	AccountID    string          `json:"account_id"`
	ContactID    string          `json:"contact_id,omitempty"`
	Description  string          `json:"description,omitempty"`
	ReferenceNo  string          `json:"reference_no,omitempty"`
	PaymentDate  time.Time       `json:"payment_date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PaymentFromDomain converts domain payment to response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:           p.ID,
		PaymentNo:    p.PaymentNo,
		Type:         p.Type.String(),
		Direction:    string(p.Type.Direction),
		Category:     string(p.Type.Category),
		Channel:      p.Channel,
		Amount:       p.Amount,
		Currency:     p.Currency,
		ExchangeRate: p.ExchangeRate,
		BaseAmount:   p.BaseAmount(),
		AccountID:    p.AccountID,
		ContactID:    p.ContactID,
		Description:  p.Description,
		ReferenceNo:  p.ReferenceNo,
		PaymentDate:  p.PaymentDate,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// DeleteRequestedResponse returns the confirmation token for a pending
// payment deletion.
type DeleteRequestedResponse struct {
	PaymentID         string `json:"payment_id"`
	ConfirmationToken string `json:"confirmation_token"`
	ExpiresIn         string `json:"expires_in"`
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID            string          `json:"id"`
	TransferNo    string          `json:"transfer_no"`
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	FromAmount    decimal.Decimal `json:"from_amount"`
	ToAmount      decimal.Decimal `json:"to_amount"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	Description   string          `json:"description,omitempty"`
	ReferenceNo   string          `json:"reference_no,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	EventAt       time.Time       `json:"event_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:            t.ID,
		TransferNo:    t.TransferNo,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		FromAmount:    t.FromAmount,
		ToAmount:      t.ToAmount,
		ExchangeRate:  t.ExchangeRate,
		Description:   t.Description,
		ReferenceNo:   t.ReferenceNo,
		CreatedAt:     t.CreatedAt,
		EventAt:       t.EventAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// RateResponse represents an exchange rate quote in API responses.
type RateResponse struct {
	Currency  string          `json:"currency"`
	Date      string          `json:"date"`
	Buying    decimal.Decimal `json:"buying"`
	Selling   decimal.Decimal `json:"selling"`
	CreatedAt time.Time       `json:"created_at"`
}

// RateFromDomain converts domain rate to response.
func RateFromDomain(r *domain.ExchangeRate) *RateResponse {
	return &RateResponse{
		Currency:  r.Currency,
		Date:      r.Date.Format("2006-01-02"),
		Buying:    r.Buying,
		Selling:   r.Selling,
		CreatedAt: r.CreatedAt,
	}
}

// CrossRateResponse is a derived from->to conversion rate.
type CrossRateResponse struct {
	From string          `json:"from"`
	To   string          `json:"to"`
	Date string          `json:"date,omitempty"`
	Rate decimal.Decimal `json:"rate"`
}

// BalanceEventResponse represents a balance event in API responses.
type BalanceEventResponse struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BalanceEventFromDomain converts domain balance event to response.
func BalanceEventFromDomain(e *domain.BalanceEvent) *BalanceEventResponse {
	return &BalanceEventResponse{
		ID:            e.ID,
		AccountID:     e.AccountID,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
	}
}

// BalanceEventsFromDomain converts domain balance events to responses.
func BalanceEventsFromDomain(events []*domain.BalanceEvent) []*BalanceEventResponse {
	result := make([]*BalanceEventResponse, len(events))
	for i, e := range events {
		result[i] = BalanceEventFromDomain(e)
	}
	return result
}

// ItemResponse represents a transaction line in API responses.
type ItemResponse struct {
	ID            string          `json:"id"`
	TransactionNo string          `json:"transaction_no"`
	ProductID     string          `json:"product_id"`
	ContactID     string          `json:"contact_id"`
	CompanyID     string          `json:"company_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	Currency      string          `json:"currency"`
	Date          time.Time       `json:"date"`
	LineTotal     decimal.Decimal `json:"line_total"`
	LineCost      decimal.Decimal `json:"line_cost"`
	LineProfit    decimal.Decimal `json:"line_profit"`
	MarginPct     decimal.Decimal `json:"margin_pct"`
}

// ItemFromDomain converts domain transaction line to response.
func ItemFromDomain(i *domain.TransactionItem) *ItemResponse {
	return &ItemResponse{
		ID:            i.ID,
		TransactionNo: i.TransactionNo,
		ProductID:     i.ProductID,
		ContactID:     i.ContactID,
		CompanyID:     i.CompanyID,
		Quantity:      i.Quantity,
		UnitPrice:     i.UnitPrice,
		CostPrice:     i.CostPrice,
		Currency:      i.Currency,
		Date:          i.Date,
		LineTotal:     i.LineTotal,
		LineCost:      i.LineCost,
		LineProfit:    i.LineProfit,
		MarginPct:     i.MarginPct,
	}
}

// ProfitLossRowResponse is one group of the profit report.
type ProfitLossRowResponse struct {
	Key        string          `json:"key"`
	LineCount  int             `json:"line_count"`
	Total      decimal.Decimal `json:"total"`
	Cost       decimal.Decimal `json:"cost"`
	Profit     decimal.Decimal `json:"profit"`
	MarginPct  decimal.Decimal `json:"margin_pct"`
	Incomplete bool            `json:"incomplete,omitempty"`
}

// ProfitLossResponse is the aggregated profit view.
type ProfitLossResponse struct {
	Currency   string                  `json:"currency"`
	GroupBy    string                  `json:"group_by"`
	Rows       []ProfitLossRowResponse `json:"rows"`
	Total      decimal.Decimal         `json:"total"`
	Cost       decimal.Decimal         `json:"cost"`
	Profit     decimal.Decimal         `json:"profit"`
	MarginPct  decimal.Decimal         `json:"margin_pct"`
	Incomplete bool                    `json:"incomplete,omitempty"`
}

// ProfitLossFromReport converts the use case report to a response.
func ProfitLossFromReport(r *usecase.ProfitLossReport) *ProfitLossResponse {
	rows := make([]ProfitLossRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = ProfitLossRowResponse{
			Key:        row.Key,
			LineCount:  row.LineCount,
			Total:      row.Total,
			Cost:       row.Cost,
			Profit:     row.Profit,
			MarginPct:  row.MarginPct,
			Incomplete: row.Incomplete,
		}
	}

	return &ProfitLossResponse{
		Currency:   r.Currency,
		GroupBy:    r.GroupBy,
		Rows:       rows,
		Total:      r.Total,
		Cost:       r.Cost,
		Profit:     r.Profit,
		MarginPct:  r.MarginPct,
		Incomplete: r.Incomplete,
	}
}

// CurrencyPositionResponse is the aggregate balance held in one currency.
type CurrencyPositionResponse struct {
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	BaseValue  decimal.Decimal `json:"base_value"`
	Incomplete bool            `json:"incomplete,omitempty"`
}

// CurrencySummaryResponse is the whole-ledger position across currencies.
type CurrencySummaryResponse struct {
	Positions  []CurrencyPositionResponse `json:"positions"`
	BaseTotal  decimal.Decimal            `json:"base_total"`
	Incomplete bool                       `json:"incomplete,omitempty"`
}

// CurrencySummaryFromDomain converts the use case summary to a response.
func CurrencySummaryFromDomain(s *usecase.CurrencySummary) *CurrencySummaryResponse {
	positions := make([]CurrencyPositionResponse, len(s.Positions))
	for i, p := range s.Positions {
		positions[i] = CurrencyPositionResponse{
			Currency:   p.Currency,
			Balance:    p.Balance,
			BaseValue:  p.BaseValue,
			Incomplete: p.Incomplete,
		}
	}

	return &CurrencySummaryResponse{
		Positions:  positions,
		BaseTotal:  s.BaseTotal,
		Incomplete: s.Incomplete,
	}
}

// ReconciliationResponse is one account's reconciliation result.
type ReconciliationResponse struct {
	AccountID     string          `json:"account_id"`
	StoredBalance decimal.Decimal `json:"stored_balance"`
	EventSum      decimal.Decimal `json:"event_sum"`
	Drift         decimal.Decimal `json:"drift"`
	Consistent    bool            `json:"consistent"`
	CheckedAt     time.Time       `json:"checked_at"`
}

// ReconciliationFromDomain converts the use case result to a response.
func ReconciliationFromDomain(r *usecase.Reconciliation) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:     r.AccountID,
		StoredBalance: r.StoredBalance,
		EventSum:      r.EventSum,
		Drift:         r.Drift,
		Consistent:    r.Consistent,
		CheckedAt:     r.CheckedAt,
	}
}

// ConsistencyResponse is the ledger-wide reconciliation result.
type ConsistencyResponse struct {
	Consistent      bool                     `json:"consistent"`
	CheckedAccounts int                      `json:"checked_accounts"`
	Inconsistent    []ReconciliationResponse `json:"inconsistent,omitempty"`
	CheckedAt       time.Time                `json:"checked_at"`
}

// ConsistencyFromReport converts the use case report to a response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	inconsistent := make([]ReconciliationResponse, len(r.Inconsistent))
	for i := range r.Inconsistent {
		inconsistent[i] = *ReconciliationFromDomain(&r.Inconsistent[i])
	}

	return &ConsistencyResponse{
		Consistent:      len(r.Inconsistent) == 0,
		CheckedAccounts: r.CheckedAccounts,
		Inconsistent:    inconsistent,
		CheckedAt:       r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
