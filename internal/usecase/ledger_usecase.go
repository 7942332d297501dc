package usecase

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerUseCase handles ledger-wide queries.
type LedgerUseCase struct {
	accountRepo AccountRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(accountRepo AccountRepository) *LedgerUseCase {
	return &LedgerUseCase{accountRepo: accountRepo}
}

// LedgerTotals is the sum of every balance in the ledger.
type LedgerTotals struct {
	TotalBalance decimal.Decimal
	Accounts     int
}

// GetTotals sums all balances. Transfers never change the result.
func (uc *LedgerUseCase) GetTotals(ctx context.Context) (*LedgerTotals, error) {
	total, count, err := uc.accountRepo.Total(ctx)
	if err != nil {
		return nil, err
	}

	return &LedgerTotals{TotalBalance: total, Accounts: count}, nil
}
