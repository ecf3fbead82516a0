/*
scenarios.go - Demo farm loaders for testing and demonstrations

PURPOSE:

	Provides built-in farm definitions that replace the running simulation
	with a realistic setup. Each scenario is a YAML farm definition parsed
	by factory.FarmFactory, so it exercises the same path as the farm file
	given at startup.

AVAILABLE SCENARIOS:

	dairy-yards:      Yard manure collected freshest first, feed consumed
	grazing-paddocks: Paddock manure decaying fast, collected oldest first
	tight-feed:       Feed stock that runs short, to watch shortfalls

HOW SCENARIOS WORK:
 1. Parse the definition via factory
 2. Subscribe the journal to every resource
 3. Under the runner lock: reset the journal, initialise, swap in

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "dairy-yards"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add its YAML to 'scenarioFarms'

NOTE:

	Scenarios reset the journal. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Install, shared with cmd/server startup
  - factory/farm.go: YAML schema
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "dairy-yards",
		Name:        "Dairy Yards",
		Description: "Yard manure deposited each step and scraped freshest first; silage fed out",
	},
	{
		ID:          "grazing-paddocks",
		Name:        "Grazing Paddocks",
		Description: "Paddock manure decaying and drying fast, collected oldest first",
	},
	{
		ID:          "tight-feed",
		Name:        "Tight Feed",
		Description: "Feed stock smaller than demand, showing shortfalls and zero debits",
	},
}

var scenarioFarms = map[string]string{
	"dairy-yards": `
start: 2024-07-01
resources:
  - id: manure
    kind: decaying
    unit: kg
    decay_rate: 0.95
    moisture_decay_rate: 0.9
    proportion_moisture_fresh: 0.85
    maximum_age: 6
    collection_order: freshest_first
  - id: silage
    kind: simple
    domain: feed
    unit: kg
    initial: 20000
activities:
  - name: Milking herd yards
    type: deposit
    resource: manure
    store: Yards
    amount: 1800
  - name: Yard scraping
    type: collect
    resource: manure
    store: Yards
    limiter: 0.8
  - name: Effluent spreading
    type: consume
    resource: manure
    amount: 1200
    reason: Effluent block
  - name: Silage feed-out
    type: consume
    resource: silage
    amount: 1500
    reason: Milking herd
`,
	"grazing-paddocks": `
start: 2024-01-01
resources:
  - id: manure
    kind: decaying
    unit: kg
    decay_rate: 0.7
    moisture_decay_rate: 0.5
    proportion_moisture_fresh: 0.8
    maximum_age: 4
    collection_order: oldest_first
activities:
  - name: Paddock grazing
    type: deposit
    resource: manure
    store: Paddock1
    amount: 600
  - name: Paddock grazing
    type: deposit
    resource: manure
    store: Paddock2
    amount: 400
  - name: Pasture harrowing
    type: collect
    resource: manure
    store: Paddock1
    limiter: 0.25
`,
	"tight-feed": `
start: 2024-01-01
resources:
  - id: hay
    kind: simple
    domain: feed
    unit: kg
    initial: 1000
activities:
  - name: Winter feeding
    type: consume
    resource: hay
    amount: 400
    reason: Weaners
`,
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario replaces the running simulation with a demo farm.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, ok := scenarioFarms[req.ScenarioID]; !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	if err := h.InstallScenario(r.Context(), req.ScenarioID); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// InstallScenario installs a built-in demo farm, clearing the journal.
func (h *Handler) InstallScenario(ctx context.Context, id string) error {
	def, ok := scenarioFarms[id]
	if !ok {
		return fmt.Errorf("unknown scenario %q", id)
	}

	sim, err := h.Farms.Parse([]byte(def))
	if err != nil {
		return err
	}
	return h.install(ctx, sim, id)
}
