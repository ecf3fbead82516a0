/*
ledger.go - Ledger discipline shared by every resource store

PURPOSE:
  Account is the transaction recorder every farm resource store embeds.
  It owns the collected/usable amount and is the ONLY thing allowed to
  change it. Every credit and debit produces exactly one Transaction and
  exactly one round of notifications.

STATE MACHINE:
  amount is a single non-negative scalar with three transitions:
  1. Add:    credit, amount += value       (record + notify)
  2. Remove: debit, amount -= min(amount, required) (record + notify)
  3. Set:    silent reset, no record        (initialisation/correction)

INVARIANTS:
  - amount never goes negative through Add/Remove
  - one record and one notification per successful Add/Remove
  - only the latest record is kept; history belongs to listeners

NOTIFICATION:
  Listeners are called synchronously, in subscription order, after the
  amount has changed. A JournalRecorder listener persists history.

EXAMPLE FLOW:
  1. Collection from paddock: Add +5 (activity "Grazing", reason "Paddock1")
  2. Spreading on crop:       Remove 3 -> debit -3
  3. Request 10 more:          Remove 10 -> Provided 2, debit -2, amount 0

SEE ALSO:
  - request.go: Request and Remover
  - store.go: Journal and JournalRecorder
  - manure/store.go: Decaying store built on Account
*/
package generic

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// LISTENER - Change notification
// =============================================================================

// Listener is notified after every credit or debit.
type Listener interface {
	OnTransaction(tx Transaction)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(tx Transaction)

func (f ListenerFunc) OnTransaction(tx Transaction) { f(tx) }

// =============================================================================
// ACCOUNT - Amount plus transaction recorder
// =============================================================================

// Account tracks the usable amount of one resource type.
//
// Account is not safe for concurrent use. The simulation is step
// synchronous; concurrent callers go through farm.Runner.
type Account struct {
	resource  ResourceType
	unit      Unit
	amount    decimal.Decimal
	last      *Transaction
	listeners []Listener

	// Clock stamps records with the current step. May be nil.
	Clock *Clock
}

// NewAccount creates an empty account for a resource type.
func NewAccount(resource ResourceType, unit Unit) *Account {
	return &Account{resource: resource, unit: unit}
}

// ResourceType returns the resource this account tracks.
func (a *Account) ResourceType() ResourceType { return a.resource }

// Unit returns the unit amounts are measured in.
func (a *Account) Unit() Unit { return a.unit }

// Amount returns the current usable amount.
func (a *Account) Amount() Amount {
	return Amount{Value: a.amount, Unit: a.unit}
}

// LastTransaction returns the most recent record, if any.
func (a *Account) LastTransaction() (Transaction, bool) {
	if a.last == nil {
		return Transaction{}, false
	}
	return *a.last, true
}

// SetClock makes records carry the clock's current step.
func (a *Account) SetClock(c *Clock) { a.Clock = c }

// Subscribe registers a listener. Listeners run in subscription order.
func (a *Account) Subscribe(l Listener) {
	a.listeners = append(a.listeners, l)
}

// Initialise resets the account to zero and forgets the last record.
// Listeners stay subscribed.
func (a *Account) Initialise() {
	a.amount = decimal.Zero
	a.last = nil
}

// Add credits value to the account. Values <= 0 are ignored.
func (a *Account) Add(value decimal.Decimal, activity, reason string) {
	if !value.IsPositive() {
		return
	}
	a.amount = a.amount.Add(value)

	tx := a.newTransaction(TxCredit, activity, reason)
	tx.Credit = value
	a.record(tx)
}

// Remove serves a request from the account. The amount removed is
// min(amount, req.Required) and is written to req.Provided.
// Requests for zero (or less) are ignored and leave Provided untouched.
func (a *Account) Remove(req *Request) {
	if req == nil || !req.Required.IsPositive() {
		return
	}
	removed := decimal.Min(a.amount, req.Required)
	a.amount = a.amount.Sub(removed)
	req.Provided = removed

	tx := a.newTransaction(TxDebit, req.Activity, req.Reason)
	tx.Debit = removed.Neg()
	a.record(tx)
}

// RemoveValue always fails: removal needs a Request so the provided
// quantity can be reported back.
func (a *Account) RemoveValue(value decimal.Decimal) error {
	return ErrNotSupported
}

// Set overwrites the amount without producing a record.
func (a *Account) Set(newAmount decimal.Decimal) {
	a.amount = newAmount
}

func (a *Account) newTransaction(txType TransactionType, activity, reason string) Transaction {
	return Transaction{
		ID:       TransactionID(uuid.NewString()),
		Resource: a.resource.ResourceID(),
		Type:     txType,
		Unit:     a.unit,
		Activity: activity,
		Reason:   reason,
		Step:     a.Clock.Step(),
		At:       a.Clock.Now(),
	}
}

func (a *Account) record(tx Transaction) {
	a.last = &tx
	for _, l := range a.listeners {
		l.OnTransaction(tx)
	}
}
