package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidAccountType = errors.New("invalid account type")

	// Payment errors
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrInvalidPaymentType = errors.New("invalid payment type")
	ErrCurrencyMismatch   = errors.New("payment currency does not match account currency")

	// Transfer errors
	ErrSameAccount      = errors.New("cannot transfer to same account")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrTransferNotFound = errors.New("transfer not found")
	ErrRateConflict     = errors.New("exchange rate and destination amount cannot both be set")

	// Exchange rate errors
	ErrRateNotFound    = errors.New("exchange rate not found")
	ErrRateUnavailable = errors.New("no exchange rate available for conversion")
	ErrInvalidRate     = errors.New("exchange rate must be positive")

	// Concurrency errors. Safe to retry; everything else requires caller correction.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")

	// Deletion confirmation errors
	ErrInvalidConfirmation = errors.New("invalid or expired deletion confirmation token")
)
