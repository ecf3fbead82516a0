/*
Package generic provides the core resource ledger discipline for the farm model.

PURPOSE:
  This package contains domain-agnostic types for tracking farm resources.
  Whether the store holds water, feed, money, biomass or manure, every
  resource type honours the same ledger discipline: signed credits and
  debits, a last-transaction snapshot, and synchronous change notification.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (e.g., 250 kg, 1200 L, $500)
  - Transaction: An immutable record of one signed change to a store
  - ResourceType: Identifies which resource a store tracks

DESIGN PRINCIPLES:
  1. Immutability: Transactions are never modified once emitted
  2. Precision: Uses decimal.Decimal so drained pools reach exactly zero
  3. Type Safety: Quantities are typed, there is no "any amount" entry point
  4. Auditability: Every credit/debit carries activity and reason

USAGE:
  feed := generic.NewAccount(generic.NewStringResource("feed"), generic.UnitKilograms)
  feed.Add(decimal.NewFromInt(500), "Purchase", "Hay delivery")

  req := &generic.Request{Required: decimal.NewFromInt(80), Activity: "Feeding"}
  feed.Remove(req) // req.Provided == 80

SEE ALSO:
  - ledger.go: Account, the ledger discipline every store embeds
  - store.go: Journal persistence for transaction history
  - summary.go: Activity-cost accounting over transactions
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitKilograms Unit = "kg"
	UnitTonnes    Unit = "t"
	UnitLitres    Unit = "L"
	UnitDollars   Unit = "$"
	UnitHead      Unit = "head"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TransactionID string

// ResourceType identifies what kind of resource a store is tracking.
// This is an interface so domain packages define their own concrete types.
//
// Domain packages implement this:
//
//	// In manure/types.go
//	type Resource string
//	func (r Resource) ResourceID() string     { return string(r) }
//	func (r Resource) ResourceDomain() string { return "products" }
type ResourceType interface {
	// ResourceID returns the unique identifier for this resource type.
	ResourceID() string

	// ResourceDomain returns which resource group this type belongs to
	// (products, water, feed, finance...).
	ResourceDomain() string
}

// StringResource is a simple string-based resource type.
// Used for resources defined only in configuration and when reading
// transactions back from a journal.
type StringResource struct {
	ID     string
	Domain string
}

func (r StringResource) ResourceID() string     { return r.ID }
func (r StringResource) ResourceDomain() string { return r.Domain }

// NewStringResource creates a StringResource with "general" domain.
func NewStringResource(id string) StringResource {
	return StringResource{ID: id, Domain: "general"}
}

// =============================================================================
// TRANSACTION - One signed change to a resource store
// =============================================================================

type TransactionType string

const (
	TxCredit TransactionType = "credit" // Resource added to the store
	TxDebit  TransactionType = "debit"  // Resource taken from the store
)

// Transaction records one change to a store's amount.
// Exactly one of Credit and Debit is set: Credit is positive, Debit is
// zero or negative. Type says which one.
type Transaction struct {
	ID       TransactionID
	Resource string // ResourceID of the store
	Type     TransactionType
	Credit   decimal.Decimal
	Debit    decimal.Decimal
	Unit     Unit
	Activity string
	Reason   string

	// Simulation time the change happened in
	Step int
	At   TimePoint
}

// Delta returns the signed change this transaction applied.
func (t Transaction) Delta() Amount {
	if t.Type == TxDebit {
		return Amount{Value: t.Debit, Unit: t.Unit}
	}
	return Amount{Value: t.Credit, Unit: t.Unit}
}

func (t Transaction) IsDebit() bool { return t.Type == TxDebit }
