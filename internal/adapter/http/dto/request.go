package dto

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iho/memledger/internal/domain"
	"github.com/iho/memledger/internal/usecase"
)

// ErrMissingAmount is returned when a transfer request carries no amount.
var ErrMissingAmount = errors.New("amount is required")

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	AccountID string           `json:"account_id"`
	Balance   *decimal.Decimal `json:"balance"`
}

// ToUseCaseInput converts to use case input. A missing balance opens the
// account at zero.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	balance := decimal.Zero
	if r.Balance != nil {
		balance = *r.Balance
	}

	return usecase.CreateAccountInput{
		AccountID: r.AccountID,
		Balance:   balance,
	}
}

// TransferRequest represents a request to move money between accounts.
type TransferRequest struct {
	AccountFromID string           `json:"account_from_id"`
	AccountToID   string           `json:"account_to_id"`
	Amount        *decimal.Decimal `json:"amount"`
}

// ToDomain converts the request to a domain.Transfer.
func (r *TransferRequest) ToDomain() (domain.Transfer, error) {
	if r.Amount == nil {
		return domain.Transfer{}, ErrMissingAmount
	}

	return domain.Transfer{
		FromAccountID: r.AccountFromID,
		ToAccountID:   r.AccountToID,
		Amount:        *r.Amount,
	}, nil
}

// BatchTransferRequest represents several independent transfers.
type BatchTransferRequest struct {
	Transfers []TransferRequest `json:"transfers"`
}

// ToDomain converts every item, failing on the first invalid one.
func (r *BatchTransferRequest) ToDomain() ([]domain.Transfer, error) {
	transfers := make([]domain.Transfer, len(r.Transfers))
	for i := range r.Transfers {
		t, err := r.Transfers[i].ToDomain()
		if err != nil {
			return nil, err
		}
		transfers[i] = t
	}

	return transfers, nil
}
