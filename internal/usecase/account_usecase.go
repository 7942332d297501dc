package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/memledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	metrics     MetricsRecorder
	logger      zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, metrics MetricsRecorder, logger zerolog.Logger) *AccountUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &AccountUseCase{
		accountRepo: accountRepo,
		metrics:     metrics,
		logger:      logger,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	AccountID string
	Balance   decimal.Decimal
}

// CreateAccount creates a new account with an opening balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if input.AccountID == "" {
		return nil, domain.ErrInvalidAccountID
	}

	if input.Balance.IsNegative() {
		return nil, domain.ErrNegativeBalance
	}

	account := domain.NewAccount(input.AccountID, input.Balance)
	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.metrics.AccountCreated()
	uc.logger.Info().
		Str("account_id", account.ID).
		Str("balance", account.Balance.String()).
		Msg("account created")

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ClearAccounts removes every account.
func (uc *AccountUseCase) ClearAccounts(ctx context.Context) error {
	uc.logger.Warn().Msg("clearing all accounts")
	return uc.accountRepo.Clear(ctx)
}
