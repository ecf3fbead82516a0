/*
Package sqlite provides a SQLite-backed implementation of generic.Journal.

PURPOSE:
  Persists every transaction recorded by the simulation's resource stores
  so a run can be audited after the process exits, or queried over HTTP
  while it is still running.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the transactions table
  - No DELETE statements on the transactions table (except Reset)
  - A transaction ID can only be written once

KEY TABLES:
  transactions: Immutable journal of every credit and debit

INDEXES:
  - idx_transactions_resource_step: Load/LoadRange (hot path)
  - idx_transactions_activity:      Per-activity summaries

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Reads from the API can run while
  the scheduler appends.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  journal, err := sqlite.New("./data/farm.db")
  if err != nil {
      log.Fatal(err)
  }
  defer journal.Close()

  sim.Resources.SubscribeAll(generic.NewJournalRecorder(journal))

SEE ALSO:
  - generic/store.go: Journal interface
  - generic/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/farm-resource-engine/generic"
)

// Store implements generic.Journal using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ generic.Journal = (*Store)(nil)

// New creates a new SQLite journal with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Transactions (append-only journal)
	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		resource TEXT NOT NULL COLLATE NOCASE,
		tx_type TEXT NOT NULL,
		credit TEXT NOT NULL,
		debit TEXT NOT NULL,
		unit TEXT NOT NULL,
		activity TEXT,
		reason TEXT,
		step INTEGER NOT NULL,
		at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_resource_step
		ON transactions(resource, step);
	CREATE INDEX IF NOT EXISTS idx_transactions_activity
		ON transactions(activity);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// JOURNAL (generic.Journal interface)
// =============================================================================

// Append adds a transaction to the journal.
func (s *Store) Append(ctx context.Context, tx generic.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendTx(ctx, s.db, tx)
}

func (s *Store) appendTx(ctx context.Context, db interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, tx generic.Transaction) error {
	query := `
		INSERT INTO transactions
		(id, resource, tx_type, credit, debit, unit, activity, reason, step, at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		string(tx.ID),
		tx.Resource,
		string(tx.Type),
		tx.Credit.String(),
		tx.Debit.String(),
		string(tx.Unit),
		nullString(tx.Activity),
		nullString(tx.Reason),
		tx.Step,
		tx.At.Time.Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339Nano),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", generic.ErrDuplicateTransaction, tx.ID)
		}
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}

// AppendBatch adds multiple transactions atomically.
func (s *Store) AppendBatch(ctx context.Context, txs []generic.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[generic.TransactionID]bool, len(txs))
	for _, tx := range txs {
		if seen[tx.ID] {
			return fmt.Errorf("%w: %s", generic.ErrDuplicateTransaction, tx.ID)
		}
		seen[tx.ID] = true
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, tx := range txs {
		if err := s.appendTx(ctx, sqlTx, tx); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

const selectColumns = `
	SELECT id, resource, tx_type, credit, debit, unit, activity, reason, step, at
	FROM transactions
`

// Load returns all transactions for a resource.
func (s *Store) Load(ctx context.Context, resourceID string) ([]generic.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectColumns + `
		WHERE resource = ?
		ORDER BY step ASC, seq ASC
	`

	return s.queryTransactions(ctx, query, resourceID)
}

// LoadRange returns transactions for a resource with step in [fromStep, toStep].
func (s *Store) LoadRange(ctx context.Context, resourceID string, fromStep, toStep int) ([]generic.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectColumns + `
		WHERE resource = ? AND step >= ? AND step <= ?
		ORDER BY step ASC, seq ASC
	`

	return s.queryTransactions(ctx, query, resourceID, fromStep, toStep)
}

// Exists checks if a transaction ID was already written.
func (s *Store) Exists(ctx context.Context, id generic.TransactionID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE id = ?",
		string(id),
	).Scan(&count)

	return count > 0, err
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]generic.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []generic.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (generic.Transaction, error) {
	var (
		tx       generic.Transaction
		id       string
		txType   string
		credit   string
		debit    string
		unit     string
		activity sql.NullString
		reason   sql.NullString
		at       string
	)

	err := rows.Scan(&id, &tx.Resource, &txType, &credit, &debit, &unit, &activity, &reason, &tx.Step, &at)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.ID = generic.TransactionID(id)
	tx.Type = generic.TransactionType(txType)
	tx.Credit = parseDecimal(credit)
	tx.Debit = parseDecimal(debit)
	tx.Unit = generic.Unit(unit)
	tx.Activity = activity.String
	tx.Reason = reason.String
	t, _ := time.Parse(time.RFC3339, at)
	tx.At = generic.TimePoint{Time: t}

	return tx, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM transactions")
	return err
}

// GetAllTransactions returns up to limit of the latest writes across all
// resources, newest first. A negative limit returns everything.
func (s *Store) GetAllTransactions(ctx context.Context, limit int) ([]generic.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectColumns + `
		ORDER BY seq DESC
		LIMIT ?
	`

	return s.queryTransactions(ctx, query, limit)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
