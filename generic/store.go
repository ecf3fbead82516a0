/*
store.go - Persistence interface for transaction history

PURPOSE:
  Accounts keep only their latest Transaction. A Journal keeps all of
  them, so farm activity costs can be audited after (or during) a run.
  Different implementations can use SQLite or in-memory storage.

APPEND-ONLY CONTRACT:
  - Append(): Single transaction write
  - AppendBatch(): Atomic multi-transaction write
  - NO Update() or Delete() methods exist

  Transaction IDs are unique. Writing an ID twice is rejected with
  ErrDuplicateTransaction.

WIRING:
  journal := store.NewMemory()
  recorder := generic.NewJournalRecorder(journal)
  account.Subscribe(recorder)

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory for tests and short runs
  - store/sqlite/sqlite.go: SQLite for persisted runs

SEE ALSO:
  - ledger.go: Listener interface the recorder implements
  - summary.go: Aggregates journal contents per activity
*/
package generic

import (
	"context"
	"log"
	"sync"
)

// =============================================================================
// JOURNAL - Interface for transaction persistence (append-only)
// =============================================================================

// Journal persists transactions. Append-only.
type Journal interface {
	// Append persists a transaction. Returns ErrDuplicateTransaction if the ID exists.
	Append(ctx context.Context, tx Transaction) error

	// AppendBatch persists multiple transactions atomically.
	// Either all succeed or none do.
	AppendBatch(ctx context.Context, txs []Transaction) error

	// Load returns all transactions for a resource, ordered by step then write order.
	Load(ctx context.Context, resourceID string) ([]Transaction, error)

	// LoadRange returns transactions for a resource with Step in [fromStep, toStep].
	LoadRange(ctx context.Context, resourceID string, fromStep, toStep int) ([]Transaction, error)

	// Exists checks if a transaction ID was already written.
	Exists(ctx context.Context, id TransactionID) (bool, error)
}

// =============================================================================
// JOURNAL RECORDER - Listener that writes every record to a Journal
// =============================================================================

// JournalRecorder appends every notified transaction to a Journal.
//
// Listeners cannot fail a step, so append errors are logged and the
// first one is kept for the caller to inspect with Err.
type JournalRecorder struct {
	Journal Journal
	Ctx     context.Context

	mu       sync.Mutex
	firstErr error
	count    int
}

// NewJournalRecorder creates a recorder writing to journal.
func NewJournalRecorder(journal Journal) *JournalRecorder {
	return &JournalRecorder{Journal: journal, Ctx: context.Background()}
}

func (r *JournalRecorder) OnTransaction(tx Transaction) {
	ctx := r.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	err := r.Journal.Append(ctx, tx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		log.Printf("[Journal] failed to record %s %s for %s: %v", tx.Type, tx.ID, tx.Resource, err)
		if r.firstErr == nil {
			r.firstErr = err
		}
		return
	}
	r.count++
}

// Err returns the first append error, if any.
func (r *JournalRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.firstErr
}

// Count returns how many transactions were written successfully.
func (r *JournalRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
