// Package store provides Journal implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/farm-resource-engine/generic"
)

// =============================================================================
// MEMORY JOURNAL - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	transactions map[string][]generic.Transaction
	ids          map[generic.TransactionID]bool
	written      []generic.Transaction // all resources, write order
}

func NewMemory() *Memory {
	return &Memory{
		transactions: make(map[string][]generic.Transaction),
		ids:          make(map[generic.TransactionID]bool),
	}
}

// Append adds a single transaction. Append-only.
func (m *Memory) Append(_ context.Context, tx generic.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.ID != "" && m.ids[tx.ID] {
		return generic.ErrDuplicateTransaction
	}
	m.appendLocked(tx)
	return nil
}

// AppendBatch adds multiple transactions atomically.
func (m *Memory) AppendBatch(_ context.Context, txs []generic.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check all IDs first (atomic check), including duplicates inside the batch
	seen := make(map[generic.TransactionID]bool, len(txs))
	for _, tx := range txs {
		if tx.ID == "" {
			continue
		}
		if m.ids[tx.ID] || seen[tx.ID] {
			return generic.ErrDuplicateTransaction
		}
		seen[tx.ID] = true
	}

	for _, tx := range txs {
		m.appendLocked(tx)
	}
	return nil
}

func (m *Memory) appendLocked(tx generic.Transaction) {
	k := key(tx.Resource)
	txs := m.transactions[k]

	// Binary search for insertion point keeps step order while preserving
	// write order within a step.
	i := sort.Search(len(txs), func(i int) bool {
		return txs[i].Step > tx.Step
	})

	txs = append(txs, generic.Transaction{})
	copy(txs[i+1:], txs[i:])
	txs[i] = tx
	m.transactions[k] = txs
	m.written = append(m.written, tx)

	if tx.ID != "" {
		m.ids[tx.ID] = true
	}
}

func (m *Memory) Load(_ context.Context, resourceID string) ([]generic.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.transactions[key(resourceID)]
	result := make([]generic.Transaction, len(src))
	copy(result, src)
	return result, nil
}

func (m *Memory) LoadRange(_ context.Context, resourceID string, fromStep, toStep int) ([]generic.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.Transaction
	for _, tx := range m.transactions[key(resourceID)] {
		if fromStep <= tx.Step && tx.Step <= toStep {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (m *Memory) Exists(_ context.Context, id generic.TransactionID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ids[id], nil
}

// Len returns the total number of stored transactions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, txs := range m.transactions {
		n += len(txs)
	}
	return n
}

// Reset drops everything (for tests and demo reloads).
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = make(map[string][]generic.Transaction)
	m.ids = make(map[generic.TransactionID]bool)
	m.written = nil
	return nil
}

// GetAllTransactions returns up to limit of the latest writes across all
// resources, newest first. A negative limit returns everything.
func (m *Memory) GetAllTransactions(_ context.Context, limit int) ([]generic.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit < 0 || limit > len(m.written) {
		limit = len(m.written)
	}
	result := make([]generic.Transaction, 0, limit)
	for i := len(m.written) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.written[i])
	}
	return result, nil
}

func key(resourceID string) string {
	return strings.ToLower(resourceID)
}
