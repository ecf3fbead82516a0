/*
scenarios_test.go - Unit tests for demo farms

PURPOSE:
	Tests that every listed scenario has a definition that parses, runs a
	year of steps without error, and keeps the ledger invariants:
	- No negative amounts
	- Every record is either a positive credit or a non-positive debit
*/
package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/farm-resource-engine/farm"
	"github.com/warp/farm-resource-engine/generic"
	"github.com/warp/farm-resource-engine/generic/store"
	"github.com/warp/farm-resource-engine/manure"
)

func TestScenarios_AllListedHaveDefinitions(t *testing.T) {
	require.Len(t, scenarioFarms, len(scenarios))
	for _, s := range scenarios {
		_, ok := scenarioFarms[s.ID]
		assert.True(t, ok, "scenario %s has no farm definition", s.ID)
	}
}

func TestScenarios_RunAYear(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			// GIVEN: The scenario installed with a memory journal
			journal := store.NewMemory()
			handler := NewHandler(farm.NewRunner(nil), journal)
			ctx := context.Background()
			require.NoError(t, handler.InstallScenario(ctx, s.ID))

			// WHEN: Running twelve monthly steps
			require.NoError(t, handler.Runner.StepN(ctx, 12))

			// THEN: Ledger invariants hold for every resource
			handler.Runner.Do(func(sim *farm.Simulation) error {
				assert.Equal(t, 12, sim.Clock.Step())
				for _, res := range sim.Resources.List() {
					id := res.ResourceType().ResourceID()
					assert.False(t, res.Amount().Value.IsNegative(), "%s amount", id)

					txs, err := journal.Load(ctx, id)
					require.NoError(t, err)
					for _, tx := range txs {
						switch tx.Type {
						case generic.TxCredit:
							assert.True(t, tx.Credit.IsPositive(), "%s credit %s", id, tx.Credit)
							assert.True(t, tx.Debit.IsZero())
						case generic.TxDebit:
							assert.False(t, tx.Debit.IsPositive(), "%s debit %s", id, tx.Debit)
							assert.True(t, tx.Credit.IsZero())
						}
					}
				}
				return nil
			})
		})
	}
}

func TestScenario_GrazingPaddocks_PoolsExpireAtMaximumAge(t *testing.T) {
	// GIVEN: Paddock2 is grazed every step and never harvested; maximum age 4
	handler := NewHandler(farm.NewRunner(nil), store.NewMemory())
	ctx := context.Background()
	require.NoError(t, handler.InstallScenario(ctx, "grazing-paddocks"))

	// WHEN: Running well past the maximum age
	require.NoError(t, handler.Runner.StepN(ctx, 10))

	// THEN: Paddock2 holds exactly ages 0..4, one pool each
	handler.Runner.Do(func(sim *farm.Simulation) error {
		res, err := sim.Resources.Get("manure")
		require.NoError(t, err)
		paddock := res.(*manure.Store).Uncollected("Paddock2")
		require.NotNil(t, paddock)
		require.Len(t, paddock.Pools, 5)

		seen := make(map[int]bool)
		for _, p := range paddock.Pools {
			assert.LessOrEqual(t, p.Age, 4)
			assert.False(t, seen[p.Age], "duplicate age %d", p.Age)
			seen[p.Age] = true
		}
		return nil
	})
}
