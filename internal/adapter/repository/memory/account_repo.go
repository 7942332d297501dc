package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"

	"github.com/iho/memledger/internal/domain"
	"github.com/iho/memledger/internal/usecase"
)

// DefaultShardCount is used when NewAccountRepository gets a non-positive count.
const DefaultShardCount = 32

type accountRecord struct {
	mu      sync.RWMutex
	account domain.Account
}

type shard struct {
	mu       sync.RWMutex
	accounts map[string]*accountRecord
}

// AccountRepository implements usecase.AccountRepository in memory.
//
// Accounts are spread over shards by id hash. A shard lock only guards
// membership; balances are guarded by a lock per account, so batches on
// disjoint accounts never wait for each other.
type AccountRepository struct {
	shards []*shard
}

var _ usecase.AccountRepository = (*AccountRepository)(nil)

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(shardCount int) *AccountRepository {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}

	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{accounts: make(map[string]*accountRecord)}
	}

	return &AccountRepository{shards: shards}
}

func (r *AccountRepository) shardFor(id string) *shard {
	return r.shards[xxhash.Sum64String(id)%uint64(len(r.shards))]
}

func (r *AccountRepository) record(id string) (*accountRecord, bool) {
	s := r.shardFor(id)
	s.mu.RLock()
	rec, ok := s.accounts[id]
	s.mu.RUnlock()

	return rec, ok
}

// Create inserts the account if no account with the same id exists.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	s := r.shardFor(account.ID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return domain.DuplicateAccountError(account.ID)
	}

	s.accounts[account.ID] = &accountRecord{account: *account}

	return nil
}

// GetByID returns a copy of the account.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	rec, ok := r.record(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	rec.mu.RLock()
	snapshot := rec.account
	rec.mu.RUnlock()

	return &snapshot, nil
}

// Clear removes every account.
func (r *AccountRepository) Clear(ctx context.Context) error {
	for _, s := range r.shards {
		s.mu.Lock()
		s.accounts = make(map[string]*accountRecord)
		s.mu.Unlock()
	}

	return nil
}

// ApplyBatch adds each delta to its account. Deltas for unknown accounts are
// skipped. Always returns true.
func (r *AccountRepository) ApplyBatch(ctx context.Context, txs []domain.Transaction) bool {
	_ = r.ApplyBatchChecked(ctx, txs, nil)
	return true
}

// ApplyBatchChecked locks every known account in the batch in id order, runs
// check on their current state and, if it passes, applies all deltas before
// releasing the locks.
func (r *AccountRepository) ApplyBatchChecked(ctx context.Context, txs []domain.Transaction, check usecase.BalanceCheck) error {
	records := r.lockBatch(txs)
	defer unlockAll(records)

	if check != nil {
		snapshot := make(map[string]domain.Account, len(records))
		for id, rec := range records {
			snapshot[id] = rec.account
		}

		if err := check(snapshot); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	for _, tx := range txs {
		rec, ok := records[tx.AccountID]
		if !ok {
			continue
		}

		rec.account.Balance = rec.account.Balance.Add(tx.Amount)
		rec.account.UpdatedAt = now
	}

	return nil
}

// Total sums every balance. All accounts are locked together so that no
// transfer is observed half applied.
func (r *AccountRepository) Total(ctx context.Context) (decimal.Decimal, int, error) {
	records := make(map[string]*accountRecord)
	for _, s := range r.shards {
		s.mu.RLock()
		for id, rec := range s.accounts {
			records[id] = rec
		}
		s.mu.RUnlock()
	}

	ids := sortedIDs(records)
	for _, id := range ids {
		records[id].mu.RLock()
	}

	total := decimal.Zero
	for _, id := range ids {
		total = total.Add(records[id].account.Balance)
	}

	for _, id := range ids {
		records[id].mu.RUnlock()
	}

	return total, len(ids), nil
}

// lockBatch resolves the accounts named in txs and write-locks them in
// sorted id order to avoid deadlocks between overlapping batches.
func (r *AccountRepository) lockBatch(txs []domain.Transaction) map[string]*accountRecord {
	records := make(map[string]*accountRecord, len(txs))
	for _, tx := range txs {
		if _, seen := records[tx.AccountID]; seen {
			continue
		}

		if rec, ok := r.record(tx.AccountID); ok {
			records[tx.AccountID] = rec
		}
	}

	for _, id := range sortedIDs(records) {
		records[id].mu.Lock()
	}

	return records
}

func unlockAll(records map[string]*accountRecord) {
	for _, rec := range records {
		rec.mu.Unlock()
	}
}

func sortedIDs(records map[string]*accountRecord) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}
