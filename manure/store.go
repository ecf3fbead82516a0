/*
store.go - Decaying, age-structured resource store

PURPOSE:
  Store is the manure-type resource: an Account holding collected stock
  plus any number of named uncollected stores of aging pools.

LIFECYCLE (one simulation step):
  1. AgeResources: every pool ages, decays and dries; old pools go
  2. Farm activities deposit fresh material and collect from stores
  3. Collected stock is used through Remove like any other resource

  Aging must run for all stores before any collection in the same step.
  farm.Simulation guarantees that ordering.

INVARIANTS:
  - At most one zero-age pool per uncollected store
  - Collection never moves more than limiter x store total
  - No pool ever holds a negative quantity
  - Stores are never deleted, even when all their pools are gone

COLLECTION ORDER:
  Pools are drained freshest first by default. Params.CollectionOrder
  switches to oldest first. Either way the order is applied explicitly
  at collection time, not taken from insertion order.

EXAMPLE:
  s := manure.NewStore(manure.ResourceManure, generic.UnitKilograms, params)
  s.Deposit("Paddock1", decimal.NewFromInt(10))
  s.AgeResources()
  s.Collect("Paddock1", decimal.NewFromFloat(0.5), "Grazing")

SEE ALSO:
  - pool.go: Pool and Uncollected
  - generic/ledger.go: Add/Remove/Set discipline
*/
package manure

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/farm-resource-engine/generic"
)

var one = decimal.NewFromInt(1)

// Store is a decaying resource store. The embedded Account holds the
// collected amount and records every change to it.
type Store struct {
	*generic.Account

	Params Params

	stores map[string]*Uncollected
	names  []string // lower-cased keys in creation order
}

// NewStore creates an empty store with the given parameters.
func NewStore(resource generic.ResourceType, unit generic.Unit, params Params) *Store {
	s := &Store{
		Account: generic.NewAccount(resource, unit),
		Params:  params,
	}
	s.resetStores()
	return s
}

// Initialise resets the collected amount and discards all uncollected stores.
func (s *Store) Initialise() {
	s.Account.Initialise()
	s.resetStores()
}

func (s *Store) resetStores() {
	s.stores = make(map[string]*Uncollected)
	s.names = nil
}

// =============================================================================
// DEPOSIT
// =============================================================================

// Deposit adds fresh material to the named store's zero-age pool,
// creating the store and the pool when needed. amount is not validated.
func (s *Store) Deposit(storeName string, amount decimal.Decimal) {
	u := s.lookup(storeName)
	if u == nil {
		u = &Uncollected{Name: storeName}
		k := strings.ToLower(storeName)
		s.stores[k] = u
		s.names = append(s.names, k)
	}
	pool := u.fresh(s.Params.ProportionMoistureFresh)
	pool.Quantity = pool.Quantity.Add(amount)
}

// =============================================================================
// AGING
// =============================================================================

// AgeResources runs one step of aging and decay over every store.
func (s *Store) AgeResources() {
	for _, k := range s.names {
		s.stores[k].age(s.Params.DecayRate, s.Params.MoistureDecayRate, s.Params.MaximumAge)
	}
}

// =============================================================================
// COLLECTION
// =============================================================================

// Collect moves up to limiter x (store total) from the named store into
// the collected amount, crediting it to activity. The limiter is clamped
// to [0, 1]. Unknown stores are ignored. Returns the amount moved.
func (s *Store) Collect(storeName string, limiter decimal.Decimal, activity string) decimal.Decimal {
	u := s.lookup(storeName)
	if u == nil {
		return decimal.Zero
	}

	limiter = decimal.Max(decimal.Min(limiter, one), decimal.Zero)
	possible := u.Total().Mul(limiter)

	u.order(s.Params.CollectionOrder)
	moved := u.withdraw(possible)

	reason := storeName
	if reason == "" {
		reason = GeneralStore
	}
	s.Add(moved, activity, reason)
	return moved
}

// =============================================================================
// QUERIES
// =============================================================================

// Uncollected returns the named store, or nil. The result is live; callers
// must not modify it.
func (s *Store) Uncollected(storeName string) *Uncollected {
	return s.lookup(storeName)
}

// Stores returns all uncollected stores in creation order.
func (s *Store) Stores() []*Uncollected {
	result := make([]*Uncollected, 0, len(s.names))
	for _, k := range s.names {
		result = append(result, s.stores[k])
	}
	return result
}

// TotalUncollected returns the dry weight held across all stores.
func (s *Store) TotalUncollected() decimal.Decimal {
	total := decimal.Zero
	for _, k := range s.names {
		total = total.Add(s.stores[k].Total())
	}
	return total
}

func (s *Store) lookup(storeName string) *Uncollected {
	return s.stores[strings.ToLower(storeName)]
}
