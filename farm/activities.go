package farm

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"github.com/warp/farm-resource-engine/generic"
	"github.com/warp/farm-resource-engine/manure"
)

// =============================================================================
// DEPOSIT - Fresh material arriving in an uncollected store
// =============================================================================

// Deposit adds Amount of fresh material to a store location every step,
// e.g. a herd defecating in the yards.
type Deposit struct {
	Label  string
	Store  *manure.Store
	Target string // uncollected store name
	Amount decimal.Decimal
}

func (d *Deposit) Name() string { return d.Label }

func (d *Deposit) Run(_ context.Context, _ StepInfo) error {
	d.Store.Deposit(d.Target, d.Amount)
	return nil
}

// =============================================================================
// COLLECT - Harvest uncollected material under a supply limiter
// =============================================================================

// Collect gathers material from a store location every step. Limiter is
// the share of the location's total that can be collected given the
// labour and machinery available.
type Collect struct {
	Label   string
	Store   *manure.Store
	Target  string
	Limiter decimal.Decimal
}

func (c *Collect) Name() string { return c.Label }

func (c *Collect) Run(_ context.Context, _ StepInfo) error {
	c.Store.Collect(c.Target, c.Limiter, c.Label)
	return nil
}

// =============================================================================
// CONSUME - Use collected stock
// =============================================================================

// Consume removes Amount from a resource every step. Shortfalls are
// expected and only logged.
type Consume struct {
	Label    string
	Resource generic.Remover
	Amount   decimal.Decimal
	Reason   string

	// LastShortfall is the unmet part of the most recent request.
	LastShortfall decimal.Decimal
}

func (c *Consume) Name() string { return c.Label }

func (c *Consume) Run(_ context.Context, info StepInfo) error {
	req := &generic.Request{Required: c.Amount, Activity: c.Label, Reason: c.Reason}
	c.Resource.Remove(req)
	c.LastShortfall = req.Shortfall()
	if c.LastShortfall.IsPositive() {
		log.Printf("[Simulation] step %d: %s short by %s", info.Step, c.Label, c.LastShortfall)
	}
	return nil
}
