package manure

import (
	"sort"

	"github.com/shopspring/decimal"
)

// minimumMoisture is the floor used when converting dry weight to wet weight.
var minimumMoisture = decimal.NewFromFloat(0.05)

// Pool is one age-tagged batch of uncollected material.
type Pool struct {
	Age                int
	Quantity           decimal.Decimal // dry weight
	ProportionMoisture decimal.Decimal
}

// WetWeight returns the weight of the pool including its moisture.
// Moisture never counts for less than 5%.
func (p *Pool) WetWeight() decimal.Decimal {
	moisture := decimal.Max(p.ProportionMoisture, minimumMoisture)
	return p.Quantity.Mul(decimal.NewFromInt(1).Add(moisture))
}

// Uncollected is a named location holding pools in insertion order.
type Uncollected struct {
	Name  string
	Pools []*Pool
}

// Total returns the dry weight of all pools.
func (u *Uncollected) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range u.Pools {
		total = total.Add(p.Quantity)
	}
	return total
}

// WetWeight returns the wet weight of all pools.
func (u *Uncollected) WetWeight() decimal.Decimal {
	total := decimal.Zero
	for _, p := range u.Pools {
		total = total.Add(p.WetWeight())
	}
	return total
}

// fresh returns the zero-age pool, creating it with the given moisture.
func (u *Uncollected) fresh(moisture decimal.Decimal) *Pool {
	for _, p := range u.Pools {
		if p.Age == 0 {
			return p
		}
	}
	p := &Pool{Age: 0, Quantity: decimal.Zero, ProportionMoisture: moisture}
	u.Pools = append(u.Pools, p)
	return p
}

// age applies one step of aging and decay, then drops pools past maxAge.
func (u *Uncollected) age(decay, moistureDecay decimal.Decimal, maxAge int) {
	kept := u.Pools[:0]
	for _, p := range u.Pools {
		p.Age++
		p.Quantity = p.Quantity.Mul(decay)
		p.ProportionMoisture = p.ProportionMoisture.Mul(moistureDecay)
		if p.Age <= maxAge {
			kept = append(kept, p)
		}
	}
	clearTail(u.Pools, len(kept))
	u.Pools = kept
}

// order sorts pools for collection. The sort is stable so pools of equal
// age keep insertion order.
func (u *Uncollected) order(o CollectionOrder) {
	switch o {
	case OldestFirst:
		sort.SliceStable(u.Pools, func(i, j int) bool { return u.Pools[i].Age > u.Pools[j].Age })
	default:
		sort.SliceStable(u.Pools, func(i, j int) bool { return u.Pools[i].Age < u.Pools[j].Age })
	}
}

// withdraw takes up to want from the pools in their current order. When
// anything was asked for, every pool left at exactly zero is dropped,
// including decayed pools the walk never reached. Returns the amount taken.
func (u *Uncollected) withdraw(want decimal.Decimal) decimal.Decimal {
	moved := decimal.Zero
	for _, p := range u.Pools {
		if !moved.LessThan(want) {
			break
		}
		take := decimal.Min(want.Sub(moved), p.Quantity)
		moved = moved.Add(take)
		p.Quantity = p.Quantity.Sub(take)
	}
	if want.IsPositive() {
		u.pruneEmpty()
	}
	return moved
}

// pruneEmpty drops pools holding exactly zero.
func (u *Uncollected) pruneEmpty() {
	kept := u.Pools[:0]
	for _, p := range u.Pools {
		if !p.Quantity.IsZero() {
			kept = append(kept, p)
		}
	}
	clearTail(u.Pools, len(kept))
	u.Pools = kept
}

// clearTail nils out dropped pointers so pruned pools can be collected.
func clearTail(pools []*Pool, from int) {
	for i := from; i < len(pools); i++ {
		pools[i] = nil
	}
}
