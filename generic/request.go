/*
request.go - Structured removal requests

PURPOSE:
  A Request is the only valid way to take resource out of a store. The
  caller states what it needs and who is asking; the store writes back
  what it could actually provide.

SHORTFALL:
  Stores never go negative. If Required exceeds what is held, the store
  provides everything it has and the caller detects the gap:

    req := &generic.Request{Required: decimal.NewFromInt(10), Activity: "Feeding"}
    feed.Remove(req)
    if req.Shortfall().IsPositive() {
        // not enough feed this step
    }

SEE ALSO:
  - ledger.go: Account.Remove
*/
package generic

import "github.com/shopspring/decimal"

// Request asks a store for a quantity of resource.
type Request struct {
	Required decimal.Decimal
	Activity string
	Reason   string

	// Provided is written by the store.
	Provided decimal.Decimal
}

// Shortfall returns how much of the request could not be met.
func (r *Request) Shortfall() decimal.Decimal {
	gap := r.Required.Sub(r.Provided)
	if gap.IsNegative() {
		return decimal.Zero
	}
	return gap
}

// Remover is anything a Request can be served from.
type Remover interface {
	Remove(req *Request)
}
