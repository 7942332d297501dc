package domain

import (
	"github.com/shopspring/decimal"
)

// Transfer is a request to move money between two accounts.
type Transfer struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
}

// Transaction is a signed delta to add to an account balance.
type Transaction struct {
	AccountID string
	Amount    decimal.Decimal
}

// Transactions returns the debit and credit pair for an accepted transfer.
func (t Transfer) Transactions() []Transaction {
	return []Transaction{
		{AccountID: t.FromAccountID, Amount: t.Amount.Neg()},
		{AccountID: t.ToAccountID, Amount: t.Amount},
	}
}

// Rejection is the outcome of validating a transfer.
type Rejection int

const (
	Accept Rejection = iota
	RejectSameAccount
	RejectInsufficientFunds
	RejectNegativeAmount
)

// String returns a short label suitable for logs and metric labels.
func (r Rejection) String() string {
	switch r {
	case Accept:
		return "accepted"
	case RejectSameAccount:
		return "same_account"
	case RejectInsufficientFunds:
		return "insufficient_funds"
	case RejectNegativeAmount:
		return "negative_amount"
	default:
		return "unknown"
	}
}

// Err returns the error for the rejection, or nil for Accept.
func (r Rejection) Err() error {
	switch r {
	case RejectSameAccount:
		return ErrSameAccount
	case RejectInsufficientFunds:
		return ErrInsufficientFunds
	case RejectNegativeAmount:
		return ErrNegativeAmount
	default:
		return nil
	}
}

// ValidateTransfer decides whether amount may move from one account to the other.
// Rules are checked in order and the first match wins: same account,
// overdraft, then negative amount.
func ValidateTransfer(from, to Account, amount decimal.Decimal) Rejection {
	if from.ID == to.ID {
		return RejectSameAccount
	}

	if !from.CanDebit(amount) {
		return RejectInsufficientFunds
	}

	if amount.IsNegative() {
		return RejectNegativeAmount
	}

	return Accept
}
