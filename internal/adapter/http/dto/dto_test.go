package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/memledger/internal/domain"
	"github.com/iho/memledger/internal/usecase"
)

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	var req CreateAccountRequest
	require.NoError(t, json.Unmarshal([]byte(`{"account_id":"A","balance":"1000.50"}`), &req))

	input := req.ToUseCaseInput()
	assert.Equal(t, "A", input.AccountID)
	assert.True(t, input.Balance.Equal(decimal.RequireFromString("1000.50")))

	var empty CreateAccountRequest
	require.NoError(t, json.Unmarshal([]byte(`{"account_id":"B"}`), &empty))
	assert.True(t, empty.ToUseCaseInput().Balance.IsZero())
}

func TestTransferRequest_ToDomain(t *testing.T) {
	var req TransferRequest
	require.NoError(t, json.Unmarshal([]byte(`{"account_from_id":"A","account_to_id":"B","amount":333}`), &req))

	transfer, err := req.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "A", transfer.FromAccountID)
	assert.Equal(t, "B", transfer.ToAccountID)
	assert.True(t, transfer.Amount.Equal(decimal.NewFromInt(333)))

	_, err = (&TransferRequest{AccountFromID: "A", AccountToID: "B"}).ToDomain()
	assert.ErrorIs(t, err, ErrMissingAmount)
}

func TestBatchTransferRequest_ToDomain(t *testing.T) {
	one := decimal.NewFromInt(1)
	req := BatchTransferRequest{Transfers: []TransferRequest{
		{AccountFromID: "A", AccountToID: "B", Amount: &one},
		{AccountFromID: "B", AccountToID: "A"},
	}}

	_, err := req.ToDomain()
	assert.ErrorIs(t, err, ErrMissingAmount)

	req.Transfers = req.Transfers[:1]
	transfers, err := req.ToDomain()
	require.NoError(t, err)
	assert.Len(t, transfers, 1)
}

func TestBatchFromResults(t *testing.T) {
	resp := BatchFromResults([]usecase.TransferResult{
		{Transfer: domain.Transfer{FromAccountID: "A", ToAccountID: "B", Amount: decimal.NewFromInt(5)}},
		{Transfer: domain.Transfer{FromAccountID: "A", ToAccountID: "A"}, Err: domain.ErrSameAccount},
		{Transfer: domain.Transfer{FromAccountID: "A", ToAccountID: "C"}, Err: errors.New("boom")},
	})

	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 2, resp.Failed)
	assert.Equal(t, TransferStatusCompleted, resp.Results[0].Status)
	assert.Empty(t, resp.Results[0].Error)
	assert.Equal(t, TransferStatusRejected, resp.Results[1].Status)
	assert.Equal(t, domain.ErrSameAccount.Error(), resp.Results[1].Error)
}

func TestAccountFromDomain(t *testing.T) {
	acc := domain.NewAccount("A", decimal.NewFromInt(10))

	resp := AccountFromDomain(acc)
	assert.Equal(t, "A", resp.AccountID)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, acc.CreatedAt, resp.CreatedAt)
}
