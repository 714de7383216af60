package domain

import "time"

// Event types
const (
	EventTypePaymentCreated  = "payment.created"
	EventTypePaymentUpdated  = "payment.updated"
	EventTypePaymentDeleted  = "payment.deleted"
	EventTypeTransferCreated = "transfer.created"
	EventTypeRateRecorded    = "rate.recorded"
)

// Aggregate types
const (
	AggregateTypePayment  = "payment"
	AggregateTypeTransfer = "transfer"
	AggregateTypeRate     = "exchange_rate"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// PaymentCreatedEvent payload
type PaymentCreatedEvent struct {
	PaymentID    string `json:"payment_id"`
	PaymentNo    string `json:"payment_no"`
	AccountID    string `json:"account_id"`
	Type         string `json:"type"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	ExchangeRate string `json:"exchange_rate"`
}

// PaymentDeletedEvent payload
type PaymentDeletedEvent struct {
	PaymentID string `json:"payment_id"`
	PaymentNo string `json:"payment_no"`
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// TransferCreatedEvent payload
type TransferCreatedEvent struct {
	TransferID    string `json:"transfer_id"`
	TransferNo    string `json:"transfer_no"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	FromAmount    string `json:"from_amount"`
	ToAmount      string `json:"to_amount"`
	ExchangeRate  string `json:"exchange_rate"`
}

// RateRecordedEvent payload
type RateRecordedEvent struct {
	Currency string `json:"currency"`
	Date     string `json:"date"`
	Buying   string `json:"buying"`
	Selling  string `json:"selling"`
}
