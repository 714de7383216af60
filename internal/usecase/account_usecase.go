package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/kasa/internal/domain"
)

// AccountUseCase manages money-holding accounts. Balances are never set
// here; they change only through payments and transfers.
type AccountUseCase struct {
	accountRepo AccountRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, auditRepo AuditRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	CompanyID string
	Code      string
	Name      string
	Type      domain.AccountType
	Currency  string
	// OpeningBalance seeds the account; subsequent changes go through
	// payments and transfers only.
	OpeningBalance decimal.Decimal
}

// CreateAccount creates a new active account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountType(input.Type); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		CompanyID:      input.CompanyID,
		Code:           input.Code,
		Name:           input.Name,
		Type:           input.Type,
		Currency:       normalizeCurrency(input.Currency),
		Balance:        input.OpeningBalance,
		OpeningBalance: input.OpeningBalance,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := uc.accountRepo.Create(ctx, account)

	entry := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Action:       string(domain.AuditActionAccountCreate),
		ResourceType: "account",
		ResourceID:   account.ID,
		AfterState:   domain.MarshalState(account),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}
	if err != nil {
		entry.Status = string(domain.AuditStatusError)
		entry.ErrorMessage = err.Error()
	}
	_ = uc.auditRepo.Create(ctx, entry)

	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount returns an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccounts returns accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// SetActive flips the active flag. Inactive accounts reject new payments
// and transfers but keep their history readable.
func (uc *AccountUseCase) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := uc.accountRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return uc.accountRepo.SetActive(ctx, id, active, time.Now().UTC())
}
