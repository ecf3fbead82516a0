/*
handlers.go - HTTP API handlers for the farm simulation

PURPOSE:
  Exposes a running farm simulation via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the simulation
  (through farm.Runner) and the transaction journal.

ENDPOINTS:
  Resources:
    GET    /api/resources                     List resource stores
    GET    /api/resources/{id}                One resource store
    GET    /api/resources/{id}/stores         Uncollected stores and pools
    GET    /api/resources/{id}/transactions   Journal (?from=&to= steps)
    GET    /api/resources/{id}/summary        Activity-cost summary

  Journal:
    GET    /api/transactions?limit=           Latest writes, all resources

  Simulation:
    GET    /api/simulation                    Clock status and phases
    POST   /api/simulation/step?n=            Advance n steps
    POST   /api/simulation/reset              Re-initialise

  Scenarios:
    GET    /api/scenarios                     List demo farms
    POST   /api/scenarios/load                Load a demo farm

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Runner: serialised simulation access (shared with the cron schedule)
  - Journal: transaction history
  - Farms: YAML farm definitions for scenarios

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, operation not supported by the resource
  - 404: Resource not found
  - 500: Hook or journal failures
  - 503: No journal configured

SEE ALSO:
  - dto.go: Response data structures
  - scenarios.go: Demo farm definitions
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/farm-resource-engine/factory"
	"github.com/warp/farm-resource-engine/farm"
	"github.com/warp/farm-resource-engine/generic"
	"github.com/warp/farm-resource-engine/manure"
)

const (
	// MaxStepsPerRequest bounds POST /api/simulation/step.
	MaxStepsPerRequest = 1200

	// DefaultJournalLimit and MaxJournalLimit bound GET /api/transactions.
	DefaultJournalLimit = 100
	MaxJournalLimit     = 1000
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Runner  *farm.Runner
	Journal generic.Journal
	Farms   *factory.FarmFactory

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler. journal may be nil.
func NewHandler(runner *farm.Runner, journal generic.Journal) *Handler {
	return &Handler{
		Runner:  runner,
		Journal: journal,
		Farms:   factory.NewFarmFactory(),
	}
}

// Install records sim's transactions in the journal and makes it the
// simulation the API serves. The journal reset, initialise phase and swap
// happen under the runner lock, so no scheduled step on the old farm
// lands in between.
func (h *Handler) Install(ctx context.Context, sim *farm.Simulation) error {
	return h.install(ctx, sim, "")
}

func (h *Handler) install(ctx context.Context, sim *farm.Simulation, scenario string) error {
	if h.Journal != nil {
		sim.Resources.SubscribeAll(generic.NewJournalRecorder(h.Journal))
	}
	return h.Runner.Swap(func(*farm.Simulation) (*farm.Simulation, error) {
		if err := h.resetJournal(ctx); err != nil {
			return nil, fmt.Errorf("reset journal: %w", err)
		}
		if err := sim.Initialise(ctx); err != nil {
			return nil, err
		}
		h.currentScenario = scenario
		return sim, nil
	})
}

// =============================================================================
// RESOURCE HANDLERS
// =============================================================================

// ListResources returns all resource stores in registration order.
// GET /api/resources
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	var dtos []ResourceDTO
	h.Runner.Do(func(sim *farm.Simulation) error {
		resources := sim.Resources.List()
		dtos = make([]ResourceDTO, len(resources))
		for i, res := range resources {
			dtos[i] = toResourceDTO(res)
		}
		return nil
	})
	writeJSON(w, http.StatusOK, dtos)
}

// GetResource returns one resource store.
// GET /api/resources/{id}
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto ResourceDTO
	err := h.Runner.Do(func(sim *farm.Simulation) error {
		res, err := sim.Resources.Get(id)
		if err != nil {
			return err
		}
		dto = toResourceDTO(res)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetStores returns the uncollected stores of a decaying resource.
// GET /api/resources/{id}/stores
func (h *Handler) GetStores(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dtos []StoreDTO
	err := h.Runner.Do(func(sim *farm.Simulation) error {
		res, err := sim.Resources.Get(id)
		if err != nil {
			return err
		}
		ms, ok := res.(*manure.Store)
		if !ok {
			return fmt.Errorf("%w: %s has no uncollected stores", generic.ErrNotSupported, id)
		}
		stores := ms.Stores()
		dtos = make([]StoreDTO, len(stores))
		for i, u := range stores {
			dtos[i] = toStoreDTO(u)
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTransactions returns the journal of a resource.
// GET /api/resources/{id}/transactions?from=0&to=12
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.loadTransactions(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// GetSummary returns credits and debits per activity for a resource.
// GET /api/resources/{id}/summary?from=0&to=12
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.loadTransactions(w, r)
	if !ok {
		return
	}
	summary := generic.Summarize(txs)
	if summary.Resource == "" {
		summary.Resource = chi.URLParam(r, "id")
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

func (h *Handler) loadTransactions(w http.ResponseWriter, r *http.Request) ([]generic.Transaction, bool) {
	if h.Journal == nil {
		writeError(w, http.StatusServiceUnavailable, "No transaction journal configured", nil)
		return nil, false
	}

	id := chi.URLParam(r, "id")
	err := h.Runner.Do(func(sim *farm.Simulation) error {
		_, err := sim.Resources.Get(id)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}

	from, err := queryInt(r, "from", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from step", err)
		return nil, false
	}
	to, err := queryInt(r, "to", math.MaxInt32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to step", err)
		return nil, false
	}
	if from > to {
		writeError(w, http.StatusBadRequest, "from must not be after to", nil)
		return nil, false
	}

	var txs []generic.Transaction
	if r.URL.Query().Has("from") || r.URL.Query().Has("to") {
		txs, err = h.Journal.LoadRange(r.Context(), id, from, to)
	} else {
		txs, err = h.Journal.Load(r.Context(), id)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return nil, false
	}
	return txs, true
}

// ListTransactions returns the latest journal writes across all resources,
// newest first.
// GET /api/transactions?limit=100
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		writeError(w, http.StatusServiceUnavailable, "No transaction journal configured", nil)
		return
	}
	limit, err := queryInt(r, "limit", DefaultJournalLimit)
	if err != nil || limit < 1 || limit > MaxJournalLimit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", MaxJournalLimit), err)
		return
	}

	lister, ok := h.Journal.(interface {
		GetAllTransactions(ctx context.Context, limit int) ([]generic.Transaction, error)
	})
	if !ok {
		writeDomainError(w, fmt.Errorf("list journal: %w", generic.ErrNotSupported))
		return
	}
	txs, err := lister.GetAllTransactions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// =============================================================================
// SIMULATION HANDLERS
// =============================================================================

// GetSimulation returns the clock status.
// GET /api/simulation
func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	var dto SimulationDTO
	h.Runner.Do(func(sim *farm.Simulation) error {
		dto = h.simulationDTO(sim)
		return nil
	})
	writeJSON(w, http.StatusOK, dto)
}

// StepSimulation advances the simulation.
// POST /api/simulation/step?n=3
func (h *Handler) StepSimulation(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "n", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid step count", err)
		return
	}
	if n < 1 || n > MaxStepsPerRequest {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Step count must be between 1 and %d", MaxStepsPerRequest), nil)
		return
	}

	var dto SimulationDTO
	err = h.Runner.Do(func(sim *farm.Simulation) error {
		err := sim.Run(r.Context(), n)
		dto = h.simulationDTO(sim)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// ResetSimulation re-runs the initialise phase and clears the journal.
// POST /api/simulation/reset
func (h *Handler) ResetSimulation(w http.ResponseWriter, r *http.Request) {
	var dto SimulationDTO
	err := h.Runner.Do(func(sim *farm.Simulation) error {
		if err := h.resetJournal(r.Context()); err != nil {
			return fmt.Errorf("reset journal: %w", err)
		}
		err := sim.Initialise(r.Context())
		dto = h.simulationDTO(sim)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) simulationDTO(sim *farm.Simulation) SimulationDTO {
	phases := make(map[string][]string)
	for _, p := range []farm.Phase{farm.PhaseInitialise, farm.PhaseAgeResources, farm.PhaseActivities} {
		phases[string(p)] = sim.Hooks(p)
	}
	return SimulationDTO{
		Step:      sim.Clock.Step(),
		Date:      sim.Clock.Now().String(),
		Resources: len(sim.Resources.List()),
		Phases:    phases,
		Scenario:  h.currentScenario,
	}
}

// resetJournal clears journals that support it.
func (h *Handler) resetJournal(ctx context.Context) error {
	resetter, ok := h.Journal.(interface {
		Reset(ctx context.Context) error
	})
	if !ok {
		return nil
	}
	return resetter.Reset(ctx)
}

// =============================================================================
// HELPERS
// =============================================================================

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var hookErr *farm.HookError
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Resource not found", err)
	case errors.Is(err, generic.ErrNotSupported):
		writeError(w, http.StatusBadRequest, "Operation not supported", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled", err)
	case errors.As(err, &hookErr):
		writeError(w, http.StatusInternalServerError, "Simulation step failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
