/*
summary.go - Activity-cost accounting over transactions

PURPOSE:
  Turns a list of transactions (from a Journal) into totals that answer
  "what did each farm activity put in or take out of this resource?"

SUMMARY COMPONENTS:
  Credits:  Sum of all credits (positive)
  Debits:   Sum of all debits (zero or negative)
  Net:      Credits + Debits
  ByActivity: The same three numbers per activity name

EXAMPLE:
  Manure collected by "Grazing" (+5, +4) and used by "Spreading" (-6):

    Credits 9, Debits -6, Net 3
    Grazing:   Credits 9, Debits 0,  Net 9
    Spreading: Credits 0, Debits -6, Net -6

SEE ALSO:
  - store.go: Journal that provides the transactions
*/
package generic

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SUMMARY
// =============================================================================

// Totals is a credit/debit pair.
type Totals struct {
	Credits      decimal.Decimal
	Debits       decimal.Decimal
	Transactions int
}

// Net returns credits plus debits.
func (t Totals) Net() decimal.Decimal {
	return t.Credits.Add(t.Debits)
}

func (t *Totals) add(tx Transaction) {
	delta := tx.Delta().Value
	if tx.IsDebit() {
		t.Debits = t.Debits.Add(delta)
	} else {
		t.Credits = t.Credits.Add(delta)
	}
	t.Transactions++
}

// Summary aggregates the transactions of one resource.
type Summary struct {
	Resource   string
	Unit       Unit
	Totals     Totals
	ByActivity map[string]Totals
	FirstStep  int
	LastStep   int
}

// Summarize totals transactions overall and per activity.
// Transactions are expected to belong to one resource; the first one
// decides Resource and Unit.
func Summarize(txs []Transaction) Summary {
	s := Summary{ByActivity: make(map[string]Totals)}
	for i, tx := range txs {
		if i == 0 {
			s.Resource = tx.Resource
			s.Unit = tx.Unit
			s.FirstStep = tx.Step
			s.LastStep = tx.Step
		}
		if tx.Step < s.FirstStep {
			s.FirstStep = tx.Step
		}
		if tx.Step > s.LastStep {
			s.LastStep = tx.Step
		}

		s.Totals.add(tx)
		activity := s.ByActivity[tx.Activity]
		activity.add(tx)
		s.ByActivity[tx.Activity] = activity
	}
	return s
}

// Activities returns activity names in sorted order.
func (s Summary) Activities() []string {
	names := make([]string, 0, len(s.ByActivity))
	for name := range s.ByActivity {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
