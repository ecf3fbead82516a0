/*
journal_test.go - Journal listing and journal resets

Tests for:
- GET /api/transactions across resources
- Journal reset and farm install happening under the runner lock
*/
package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/farm-resource-engine/farm"
	"github.com/warp/farm-resource-engine/generic"
	"github.com/warp/farm-resource-engine/generic/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// contendedJournal requests a step from another goroutine while it is being
// reset, and records whether that step got in before the reset finished.
type contendedJournal struct {
	*store.Memory
	runner *farm.Runner

	armed              bool
	stepped            chan error
	steppedDuringReset bool
}

func (j *contendedJournal) Reset(ctx context.Context) error {
	if j.armed {
		j.armed = false
		j.stepped = make(chan error, 1)
		go func() {
			j.stepped <- j.runner.StepN(context.Background(), 1)
		}()
		select {
		case err := <-j.stepped:
			j.steppedDuringReset = true
			j.stepped <- err
		case <-time.After(50 * time.Millisecond):
		}
	}
	return j.Memory.Reset(ctx)
}

func setupContended(t *testing.T) (*Handler, *contendedJournal) {
	runner := farm.NewRunner(nil)
	journal := &contendedJournal{Memory: store.NewMemory(), runner: runner}
	handler := NewHandler(runner, journal)
	require.NoError(t, handler.InstallScenario(context.Background(), "tight-feed"))
	require.NoError(t, runner.StepN(context.Background(), 2))
	return handler, journal
}

// listOnlyJournal hides everything but the Journal interface.
type listOnlyJournal struct {
	generic.Journal
}

// =============================================================================
// JOURNAL LISTING
// =============================================================================

func TestListTransactions_NewestFirstAcrossResources(t *testing.T) {
	// GIVEN: Dairy yards after one step (scraped, spread, silage fed)
	router, _ := setupTestServer(t, "dairy-yards")
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/simulation/step", "").Code)

	// WHEN: Listing the latest writes
	rec := do(t, router, http.MethodGet, "/api/transactions", "")

	// THEN: Both resources appear, newest first
	require.Equal(t, http.StatusOK, rec.Code)
	txs := decode[[]TransactionDTO](t, rec)
	require.Len(t, txs, 3)
	assert.Equal(t, "Silage feed-out", txs[0].Activity)
	assert.Equal(t, "silage", txs[0].Resource)
	assert.Equal(t, "Effluent spreading", txs[1].Activity)
	assert.Equal(t, "Yard scraping", txs[2].Activity)
	assert.Equal(t, "manure", txs[2].Resource)
	assert.Equal(t, "2024-07-01", txs[0].At)

	// AND: limit caps the result
	rec = do(t, router, http.MethodGet, "/api/transactions?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]TransactionDTO](t, rec), 1)
}

func TestListTransactions_BadLimit(t *testing.T) {
	router, _ := setupTestServer(t, "tight-feed")

	for _, q := range []string{"0", "-1", "1001", "many"} {
		rec := do(t, router, http.MethodGet, "/api/transactions?limit="+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", q)
	}
}

func TestListTransactions_JournalCannotList(t *testing.T) {
	handler := NewHandler(farm.NewRunner(nil), listOnlyJournal{store.NewMemory()})
	require.NoError(t, handler.InstallScenario(context.Background(), "tight-feed"))

	rec := do(t, NewRouter(handler), http.MethodGet, "/api/transactions", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTransactions_NoJournal(t *testing.T) {
	handler := NewHandler(farm.NewRunner(nil), nil)
	require.NoError(t, handler.InstallScenario(context.Background(), "tight-feed"))

	rec := do(t, NewRouter(handler), http.MethodGet, "/api/transactions", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// =============================================================================
// RESETS UNDER THE RUNNER LOCK
// =============================================================================

func TestInstallScenario_StepWaitsForJournalReset(t *testing.T) {
	// GIVEN: Tight feed two steps in, with a step requested mid-reset
	handler, journal := setupContended(t)
	journal.armed = true

	// WHEN: Reloading the scenario
	require.NoError(t, handler.InstallScenario(context.Background(), "tight-feed"))
	require.NoError(t, <-journal.stepped)

	// THEN: The step waited and ran on the new farm only
	assert.False(t, journal.steppedDuringReset)
	txs, err := journal.Load(context.Background(), "hay")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 0, txs[0].Step)
	assertDecimal(t, "-400", txs[0].Debit)
	handler.Runner.Do(func(sim *farm.Simulation) error {
		assert.Equal(t, 1, sim.Clock.Step())
		return nil
	})
}

func TestResetSimulation_StepWaitsForJournalReset(t *testing.T) {
	handler, journal := setupContended(t)
	router := NewRouter(handler)
	journal.armed = true

	rec := do(t, router, http.MethodPost, "/api/simulation/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, <-journal.stepped)

	assert.False(t, journal.steppedDuringReset)
	txs, err := journal.Load(context.Background(), "hay")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 0, txs[0].Step)
	assertDecimal(t, "-400", txs[0].Debit)
}
