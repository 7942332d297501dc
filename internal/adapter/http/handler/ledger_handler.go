package handler

import (
	"context"
	"net/http"

	"github.com/iho/memledger/internal/adapter/http/dto"
	"github.com/iho/memledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	GetTotals(ctx context.Context) (*usecase.LedgerTotals, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Total reports the sum of all balances and the number of accounts.
func (h *LedgerHandler) Total(w http.ResponseWriter, r *http.Request) {
	totals, err := h.ledgerUC.GetTotals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute totals", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerTotalsResponse{
		TotalBalance: totals.TotalBalance,
		Accounts:     totals.Accounts,
	})
}
