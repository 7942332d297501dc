package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/memledger/internal/domain"
	"github.com/iho/memledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		AccountID: a.ID,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// TransferResponse echoes a transfer together with its outcome.
type TransferResponse struct {
	AccountFromID string          `json:"account_from_id"`
	AccountToID   string          `json:"account_to_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Error         string          `json:"error,omitempty"`
}

// Transfer statuses.
const (
	TransferStatusCompleted = "completed"
	TransferStatusRejected  = "rejected"
)

// TransferFromDomain converts a transfer and its error to a response.
func TransferFromDomain(t domain.Transfer, err error) TransferResponse {
	resp := TransferResponse{
		AccountFromID: t.FromAccountID,
		AccountToID:   t.ToAccountID,
		Amount:        t.Amount,
		Status:        TransferStatusCompleted,
	}
	if err != nil {
		resp.Status = TransferStatusRejected
		resp.Error = err.Error()
	}

	return resp
}

// BatchTransferResponse lists the outcome of every item in request order.
type BatchTransferResponse struct {
	Results   []TransferResponse `json:"results"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// BatchFromResults converts use case results to a response.
func BatchFromResults(results []usecase.TransferResult) BatchTransferResponse {
	resp := BatchTransferResponse{Results: make([]TransferResponse, len(results))}
	for i, r := range results {
		resp.Results[i] = TransferFromDomain(r.Transfer, r.Err)
		if r.Err != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}

	return resp
}

// LedgerTotalsResponse reports the sum of all balances.
type LedgerTotalsResponse struct {
	TotalBalance decimal.Decimal `json:"total_balance"`
	Accounts     int             `json:"accounts"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
