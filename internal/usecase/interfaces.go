package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/memledger/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// BalanceCheck inspects the current state of the accounts touched by a batch
// while they are locked. A non-nil error aborts the batch.
type BalanceCheck func(accounts map[string]domain.Account) error

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	Clear(ctx context.Context) error
	// ApplyBatch adds every delta to its account. Unknown accounts are skipped.
	ApplyBatch(ctx context.Context, txs []domain.Transaction) bool
	// ApplyBatchChecked runs check under the account locks and applies the
	// batch only if check returns nil.
	ApplyBatchChecked(ctx context.Context, txs []domain.Transaction, check BalanceCheck) error
	Total(ctx context.Context) (decimal.Decimal, int, error)
}

// Notifier delivers transfer notices to account holders.
type Notifier interface {
	NotifyAboutTransfer(ctx context.Context, account domain.Account, message string) error
}

// MetricsRecorder receives business events for instrumentation.
type MetricsRecorder interface {
	AccountCreated()
	TransferCommitted(amount decimal.Decimal, duration time.Duration)
	TransferRejected(reason string)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so the request can be retried.
	Release(ctx context.Context, key string) error
}

type nopMetrics struct{}

func (nopMetrics) AccountCreated() {}
func (nopMetrics) TransferCommitted(decimal.Decimal, time.Duration) {}
func (nopMetrics) TransferRejected(string) {}
