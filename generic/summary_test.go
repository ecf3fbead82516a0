package generic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/farm-resource-engine/generic"
)

func TestSummarize_PerActivity(t *testing.T) {
	// GIVEN: Manure collected by two activities and spread once
	acc := generic.NewAccount(generic.NewStringResource("manure"), generic.UnitKilograms)
	rec := &recorder{}
	acc.Subscribe(rec)
	clock := generic.NewClock(generic.TimePoint{})
	acc.SetClock(clock)

	acc.Add(dec("5"), "Grazing", "Paddock1")
	clock.Advance()
	acc.Add(dec("2.5"), "Yard scraping", "Yards")
	acc.Remove(&generic.Request{Required: dec("4"), Activity: "Spreading"})
	clock.Advance()
	acc.Add(dec("1"), "Grazing", "Paddock2")

	// WHEN: Summarising
	s := generic.Summarize(rec.txs)

	// THEN: Totals and per-activity breakdown
	assert.Equal(t, "manure", s.Resource)
	assert.Equal(t, generic.UnitKilograms, s.Unit)
	assertDecimal(t, "8.5", s.Totals.Credits)
	assertDecimal(t, "-4", s.Totals.Debits)
	assertDecimal(t, "4.5", s.Totals.Net())
	assert.Equal(t, 4, s.Totals.Transactions)
	assert.Equal(t, 0, s.FirstStep)
	assert.Equal(t, 2, s.LastStep)

	assert.Equal(t, []string{"Grazing", "Spreading", "Yard scraping"}, s.Activities())
	grazing := s.ByActivity["Grazing"]
	assertDecimal(t, "6", grazing.Credits)
	assert.Equal(t, 2, grazing.Transactions)
	spreading := s.ByActivity["Spreading"]
	assertDecimal(t, "-4", spreading.Net())

	// AND: Net matches the account
	assertDecimal(t, acc.Amount().Value.String(), s.Totals.Net())
}

func TestSummarize_Empty(t *testing.T) {
	s := generic.Summarize(nil)

	assert.Empty(t, s.Resource)
	assert.Equal(t, 0, s.Totals.Transactions)
	assertDecimal(t, "0", s.Totals.Net())
	require.NotNil(t, s.ByActivity)
	assert.Empty(t, s.Activities())
}
