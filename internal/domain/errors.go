package domain

import (
	"errors"
	"fmt"
)

var (
	// Account errors
	ErrDuplicateAccount = errors.New("account already exists")
	ErrAccountNotFound  = errors.New("account not found")
	ErrInvalidAccountID = errors.New("account id must not be empty")
	ErrNegativeBalance  = errors.New("initial balance must not be negative")

	// Transfer errors
	ErrSameAccount       = errors.New("cannot transfer amount to same account")
	ErrInsufficientFunds = errors.New("insufficient money to transfer")
	ErrNegativeAmount    = errors.New("cannot transfer negative amount")
)

// AccountNotFoundError reports a transfer that referenced an unknown account.
type AccountNotFoundError struct {
	AccountID string
}

// NewAccountNotFoundError creates an AccountNotFoundError for id.
func NewAccountNotFoundError(id string) *AccountNotFoundError {
	return &AccountNotFoundError{AccountID: id}
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s does not exist", e.AccountID)
}

func (e *AccountNotFoundError) Unwrap() error {
	return ErrAccountNotFound
}

// DuplicateAccountError wraps ErrDuplicateAccount with the conflicting id.
func DuplicateAccountError(id string) error {
	return fmt.Errorf("%w: account id %s already exists", ErrDuplicateAccount, id)
}
