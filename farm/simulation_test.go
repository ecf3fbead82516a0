package farm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/farm-resource-engine/farm"
	"github.com/warp/farm-resource-engine/generic"
	"github.com/warp/farm-resource-engine/manure"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func newSim() *farm.Simulation {
	return farm.NewSimulation(generic.NewClock(generic.NewTimePoint(2024, time.January, 1)))
}

func newManure(decay string) *manure.Store {
	p := manure.DefaultParams()
	p.DecayRate = dec(decay)
	return manure.NewStore(manure.ResourceManure, generic.UnitKilograms, p)
}

// =============================================================================
// PHASES
// =============================================================================

func TestSimulation_PhaseOrder(t *testing.T) {
	// GIVEN: Hooks in every phase that record when they run
	sim := newSim()
	var calls []string
	hook := func(name string) farm.Hook {
		return func(_ context.Context, info farm.StepInfo) error {
			calls = append(calls, name)
			return nil
		}
	}
	require.NoError(t, sim.On(farm.PhaseActivities, "act", hook("act")))
	require.NoError(t, sim.On(farm.PhaseAgeResources, "age", hook("age")))
	require.NoError(t, sim.On(farm.PhaseInitialise, "init", hook("init")))

	// WHEN: Running two steps
	require.NoError(t, sim.Run(context.Background(), 2))

	// THEN: Initialise once, then age before activities every step
	assert.Equal(t, []string{"init", "age", "act", "age", "act"}, calls)
	assert.Equal(t, 2, sim.Clock.Step())
	assert.Equal(t, "2024-03-01", sim.Clock.Now().String())
}

func TestSimulation_UnknownPhase(t *testing.T) {
	sim := newSim()

	err := sim.On("grow", "crop", func(context.Context, farm.StepInfo) error { return nil })

	assert.ErrorIs(t, err, generic.ErrUnknownPhase)
}

func TestSimulation_AddResourceRegistersHooks(t *testing.T) {
	sim := newSim()
	store := newManure("1")
	water := generic.NewAccount(generic.NewStringResource("water"), generic.UnitLitres)

	require.NoError(t, sim.AddResource(store))
	require.NoError(t, sim.AddResource(water))

	assert.Equal(t, []string{"manure", "water"}, sim.Hooks(farm.PhaseInitialise))
	assert.Equal(t, []string{"manure"}, sim.Hooks(farm.PhaseAgeResources))
	assert.ErrorIs(t, sim.AddResource(newManure("1")), generic.ErrDuplicateResource)
}

func TestSimulation_AgingRunsBeforeCollection(t *testing.T) {
	// GIVEN: A store with 10 deposited before the run and 50% decay
	sim := newSim()
	store := newManure("0.5")
	require.NoError(t, sim.AddResource(store))
	require.NoError(t, sim.Initialise(context.Background()))
	store.Deposit("Yards", dec("10"))

	sim.AddActivity(&farm.Collect{Label: "Scraping", Store: store, Target: "Yards", Limiter: dec("1")})

	// WHEN: One step
	require.NoError(t, sim.Step(context.Background()))

	// THEN: Collection saw the decayed quantity
	assertDecimal(t, "5", store.Amount().Value)
	tx, ok := store.LastTransaction()
	require.True(t, ok)
	assert.Equal(t, 0, tx.Step)
	assert.Equal(t, "Scraping", tx.Activity)
}

func TestSimulation_HookErrorAbortsStep(t *testing.T) {
	sim := newSim()
	boom := errors.New("boom")
	var after bool
	require.NoError(t, sim.On(farm.PhaseActivities, "broken", func(context.Context, farm.StepInfo) error { return boom }))
	require.NoError(t, sim.On(farm.PhaseActivities, "after", func(context.Context, farm.StepInfo) error {
		after = true
		return nil
	}))

	err := sim.Step(context.Background())

	var hookErr *farm.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, farm.PhaseActivities, hookErr.Phase)
	assert.Equal(t, "broken", hookErr.Hook)
	assert.Equal(t, 0, hookErr.Step)
	assert.ErrorIs(t, err, boom)
	assert.False(t, after)
	assert.Equal(t, 0, sim.Clock.Step(), "clock does not advance")
}

func TestSimulation_RunStopsOnCancelledContext(t *testing.T) {
	sim := newSim()
	ctx, cancel := context.WithCancel(context.Background())
	steps := 0
	require.NoError(t, sim.On(farm.PhaseActivities, "count", func(context.Context, farm.StepInfo) error {
		steps++
		if steps == 3 {
			cancel()
		}
		return nil
	}))

	err := sim.Run(ctx, 10)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, steps)
	assert.Equal(t, 3, sim.Clock.Step())
}

func TestSimulation_InitialiseResets(t *testing.T) {
	sim := newSim()
	water := generic.NewAccount(generic.NewStringResource("water"), generic.UnitLitres)
	require.NoError(t, sim.AddResource(water))
	sim.AddActivity(&farm.Deposit{Label: "noop", Store: newManure("1"), Target: "X", Amount: dec("1")})
	require.NoError(t, sim.On(farm.PhaseActivities, "rain", func(context.Context, farm.StepInfo) error {
		water.Add(dec("3"), "Rain", "")
		return nil
	}))
	require.NoError(t, sim.Run(context.Background(), 2))
	assertDecimal(t, "6", water.Amount().Value)

	require.NoError(t, sim.Initialise(context.Background()))

	assertDecimal(t, "0", water.Amount().Value)
	assert.Equal(t, 0, sim.Clock.Step())
}

// =============================================================================
// ACTIVITIES
// =============================================================================

func TestConsume_RecordsShortfall(t *testing.T) {
	sim := newSim()
	feed := generic.NewAccount(generic.NewStringResource("feed"), generic.UnitKilograms)
	require.NoError(t, sim.AddResource(feed))
	require.NoError(t, sim.On(farm.PhaseInitialise, "stock", func(context.Context, farm.StepInfo) error {
		feed.Set(dec("5"))
		return nil
	}))
	consume := &farm.Consume{Label: "Feeding", Resource: feed, Amount: dec("3"), Reason: "Calves"}
	sim.AddActivity(consume)

	require.NoError(t, sim.Step(context.Background()))
	assertDecimal(t, "0", consume.LastShortfall)

	require.NoError(t, sim.Step(context.Background()))
	assertDecimal(t, "1", consume.LastShortfall)
	assertDecimal(t, "0", feed.Amount().Value)

	tx, ok := feed.LastTransaction()
	require.True(t, ok)
	assert.Equal(t, 1, tx.Step)
	assert.Equal(t, "Calves", tx.Reason)
	assertDecimal(t, "-2", tx.Debit)
}

func TestDeposit_AddsEveryStep(t *testing.T) {
	sim := newSim()
	store := newManure("1")
	require.NoError(t, sim.AddResource(store))
	sim.AddActivity(&farm.Deposit{Label: "Herd", Store: store, Target: "Yards", Amount: dec("2")})

	require.NoError(t, sim.Run(context.Background(), 3))

	u := store.Uncollected("Yards")
	require.NotNil(t, u)
	assert.Len(t, u.Pools, 3)
	assertDecimal(t, "6", u.Total())
}

func TestSimulation_RunsWithoutClock(t *testing.T) {
	// GIVEN: A simulation built without a calendar
	sim := farm.NewSimulation(nil)
	water := generic.NewAccount(generic.NewStringResource("water"), generic.UnitLitres)
	require.NoError(t, sim.AddResource(water))
	require.NoError(t, sim.On(farm.PhaseActivities, "rain", func(context.Context, farm.StepInfo) error {
		water.Add(dec("2"), "Rain", "")
		return nil
	}))

	// WHEN: Initialising and running
	require.NoError(t, sim.Initialise(context.Background()))
	require.NoError(t, sim.Run(context.Background(), 2))

	// THEN: Steps run and every record sits at step 0
	assertDecimal(t, "4", water.Amount().Value)
	assert.Equal(t, 0, sim.Clock.Step())
	tx, ok := water.LastTransaction()
	require.True(t, ok)
	assert.Equal(t, 0, tx.Step)
	assert.True(t, tx.At.Time.IsZero())
}
