// Package manure implements the decaying, age-structured resource store.
//
// Manure is deposited into named uncollected stores (paddocks, yards) as
// age-tagged pools. Every simulation step the pools age, lose dry matter and
// dry out; pools past the maximum age are discarded. Collection moves
// material from a store's pools into the collected amount, which follows
// the generic ledger discipline.
package manure

import (
	"github.com/shopspring/decimal"

	"github.com/warp/farm-resource-engine/generic"
)

// =============================================================================
// MANURE RESOURCE TYPE
// =============================================================================

// Resource is the concrete resource type for decaying product stores.
// Implements generic.ResourceType interface.
type Resource string

func (r Resource) ResourceID() string     { return string(r) }
func (r Resource) ResourceDomain() string { return "products" }

// Compile-time check that Resource implements generic.ResourceType
var _ generic.ResourceType = Resource("")

const ResourceManure Resource = "manure"

// GeneralStore is the reason recorded when collecting from the unnamed store.
const GeneralStore = "General"

// =============================================================================
// PARAMETERS
// =============================================================================

// CollectionOrder decides which pools collection drains first.
type CollectionOrder string

const (
	FreshestFirst CollectionOrder = "freshest_first" // age ascending
	OldestFirst   CollectionOrder = "oldest_first"   // age descending
)

// Params are the per-step decay parameters of a store. Values are
// assumed validated by whoever loaded them.
type Params struct {
	DecayRate               decimal.Decimal // proportion of dry matter kept each step
	MoistureDecayRate       decimal.Decimal // proportion of moisture kept each step
	ProportionMoistureFresh decimal.Decimal // moisture of newly deposited material
	MaximumAge              int             // pools older than this are discarded
	CollectionOrder         CollectionOrder // empty means FreshestFirst
}

// DefaultParams keeps everything and never discards.
func DefaultParams() Params {
	return Params{
		DecayRate:         decimal.NewFromInt(1),
		MoistureDecayRate: decimal.NewFromInt(1),
		MaximumAge:        12,
		CollectionOrder:   FreshestFirst,
	}
}
