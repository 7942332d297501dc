package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/memledger/internal/domain"
)

// TransferUseCase handles transfer business logic.
type TransferUseCase struct {
	accountRepo AccountRepository
	notifier    Notifier
	metrics     MetricsRecorder
	logger      zerolog.Logger
	strictDebit bool
}

// TransferOption configures a TransferUseCase.
type TransferOption func(*TransferUseCase)

// WithStrictDebit re-validates the transfer against the locked balances at
// commit time, so two concurrent debits cannot jointly overdraw an account.
func WithStrictDebit(enabled bool) TransferOption {
	return func(uc *TransferUseCase) {
		uc.strictDebit = enabled
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) TransferOption {
	return func(uc *TransferUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) TransferOption {
	return func(uc *TransferUseCase) {
		uc.logger = l
	}
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(accountRepo AccountRepository, notifier Notifier, opts ...TransferOption) *TransferUseCase {
	uc := &TransferUseCase{
		accountRepo: accountRepo,
		notifier:    notifier,
		metrics:     nopMetrics{},
		logger:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// TransferResult is the outcome of one item of a batch.
type TransferResult struct {
	Transfer domain.Transfer
	Err      error
}

// Transfer moves amount between two accounts.
func (uc *TransferUseCase) Transfer(ctx context.Context, transfer domain.Transfer) error {
	start := time.Now()

	// 1. Resolve both accounts, from first
	from, err := uc.lookup(ctx, transfer.FromAccountID)
	if err != nil {
		uc.reject(transfer, reasonAccountNotFound, err)
		return err
	}

	to, err := uc.lookup(ctx, transfer.ToAccountID)
	if err != nil {
		uc.reject(transfer, reasonAccountNotFound, err)
		return err
	}

	// 2. Validate against the snapshots
	uc.logger.Debug().
		Str("from_account_id", from.ID).
		Str("to_account_id", to.ID).
		Str("amount", transfer.Amount.String()).
		Msg("validating transfer")

	if r := domain.ValidateTransfer(*from, *to, transfer.Amount); r != domain.Accept {
		err := r.Err()
		uc.reject(transfer, r.String(), err)

		return err
	}

	// 3. Apply debit and credit as one batch
	committed, err := uc.commit(ctx, transfer)
	if err != nil {
		reason := reasonCommitFailed
		if errors.Is(err, domain.ErrAccountNotFound) {
			reason = reasonAccountNotFound
		}
		if errors.Is(err, domain.ErrInsufficientFunds) {
			reason = domain.RejectInsufficientFunds.String()
		}
		uc.reject(transfer, reason, err)

		return err
	}

	// 4. Tell both sides
	if committed {
		uc.notify(ctx, *from, domain.SentMessage(transfer.Amount, to.ID))
		uc.notify(ctx, *to, domain.ReceivedMessage(transfer.Amount, from.ID))
	}

	uc.metrics.TransferCommitted(transfer.Amount, time.Since(start))

	return nil
}

// TransferBatch runs each transfer in order. Items succeed or fail on their own.
func (uc *TransferUseCase) TransferBatch(ctx context.Context, transfers []domain.Transfer) []TransferResult {
	results := make([]TransferResult, len(transfers))
	for i, t := range transfers {
		results[i] = TransferResult{
			Transfer: t,
			Err:      uc.Transfer(ctx, t),
		}
	}

	return results
}

func (uc *TransferUseCase) lookup(ctx context.Context, id string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return nil, domain.NewAccountNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (uc *TransferUseCase) commit(ctx context.Context, transfer domain.Transfer) (bool, error) {
	txs := transfer.Transactions()

	uc.logger.Debug().
		Str("from_account_id", transfer.FromAccountID).
		Str("to_account_id", transfer.ToAccountID).
		Bool("strict", uc.strictDebit).
		Msg("applying transfer")

	if !uc.strictDebit {
		return uc.accountRepo.ApplyBatch(ctx, txs), nil
	}

	err := uc.accountRepo.ApplyBatchChecked(ctx, txs, func(accounts map[string]domain.Account) error {
		from, ok := accounts[transfer.FromAccountID]
		if !ok {
			return domain.NewAccountNotFoundError(transfer.FromAccountID)
		}

		to, ok := accounts[transfer.ToAccountID]
		if !ok {
			return domain.NewAccountNotFoundError(transfer.ToAccountID)
		}

		return domain.ValidateTransfer(from, to, transfer.Amount).Err()
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (uc *TransferUseCase) notify(ctx context.Context, account domain.Account, message string) {
	if uc.notifier == nil {
		return
	}

	if err := uc.notifier.NotifyAboutTransfer(ctx, account, message); err != nil {
		uc.logger.Warn().
			Err(err).
			Str("account_id", account.ID).
			Msg("transfer notification failed")
	}
}

func (uc *TransferUseCase) reject(transfer domain.Transfer, reason string, err error) {
	uc.metrics.TransferRejected(reason)
	uc.logger.Info().
		Err(err).
		Str("from_account_id", transfer.FromAccountID).
		Str("to_account_id", transfer.ToAccountID).
		Str("amount", transfer.Amount.String()).
		Str("reason", reason).
		Msg("transfer rejected")
}
