/*
Package farm runs resource stores through simulation steps.

PURPOSE:
  The core stores know nothing about time. Simulation owns the clock, the
  resource registry and an explicit, ordered set of hooks per phase, and
  invokes them in a fixed order.

PHASES:
  initialise     once, before the first step (stores reset to zero)
  age_resources  every step, first: decay and aging across all stores
  activities     every step, after aging: deposits, collections, usage

  Within a phase hooks run in registration order. A hook error aborts the
  rest of the step and the clock does not advance.

USAGE:
  sim := farm.NewSimulation(generic.NewClock(start))
  store := manure.NewStore(manure.ResourceManure, generic.UnitKilograms, params)
  sim.AddResource(store) // registers Initialise and AgeResources hooks
  sim.AddActivity(&farm.Collect{...})

  sim.Initialise(ctx)
  sim.Run(ctx, 12)

SEE ALSO:
  - activities.go: Farm activities that call into the stores
  - runner.go: Thread-safe wrapper with cron-driven stepping
*/
package farm

import (
	"context"
	"fmt"
	"log"

	"github.com/warp/farm-resource-engine/generic"
)

// =============================================================================
// PHASES
// =============================================================================

type Phase string

const (
	PhaseInitialise   Phase = "initialise"
	PhaseAgeResources Phase = "age_resources"
	PhaseActivities   Phase = "activities"
)

// StepPhases are the phases run by every Step, in order.
var StepPhases = []Phase{PhaseAgeResources, PhaseActivities}

// StepInfo tells a hook where in the simulation it runs.
type StepInfo struct {
	Step int
	At   generic.TimePoint
}

// Hook is one unit of work run in a phase.
type Hook func(ctx context.Context, info StepInfo) error

type namedHook struct {
	name string
	fn   Hook
}

// HookError wraps a hook failure with where it happened.
type HookError struct {
	Phase Phase
	Hook  string
	Step  int
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("step %d: %s hook %q: %v", e.Step, e.Phase, e.Hook, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// Ager is implemented by stores that change every step on their own.
type Ager interface {
	AgeResources()
}

// Activity is farm logic run once per step in the activities phase.
type Activity interface {
	Name() string
	Run(ctx context.Context, info StepInfo) error
}

// =============================================================================
// SIMULATION
// =============================================================================

type Simulation struct {
	Clock     *generic.Clock
	Resources *generic.Registry

	hooks       map[Phase][]namedHook
	initialised bool
}

// NewSimulation creates a simulation with an empty registry. clock may be
// nil, in which case every record is stamped step 0.
func NewSimulation(clock *generic.Clock) *Simulation {
	return &Simulation{
		Clock:     clock,
		Resources: generic.NewRegistry(),
		hooks:     make(map[Phase][]namedHook),
	}
}

// On registers a hook for a phase.
func (s *Simulation) On(phase Phase, name string, fn Hook) error {
	switch phase {
	case PhaseInitialise, PhaseAgeResources, PhaseActivities:
	default:
		return fmt.Errorf("%w: %s", generic.ErrUnknownPhase, phase)
	}
	s.hooks[phase] = append(s.hooks[phase], namedHook{name: name, fn: fn})
	return nil
}

// AddResource registers a store, stamps its records with the simulation
// clock and hooks its Initialise (and AgeResources, for Agers).
func (s *Simulation) AddResource(res generic.Resource) error {
	if err := s.Resources.Register(res); err != nil {
		return err
	}
	if c, ok := res.(interface{ SetClock(*generic.Clock) }); ok {
		c.SetClock(s.Clock)
	}

	id := res.ResourceType().ResourceID()
	s.hooks[PhaseInitialise] = append(s.hooks[PhaseInitialise], namedHook{
		name: id,
		fn: func(context.Context, StepInfo) error {
			res.Initialise()
			return nil
		},
	})
	if ager, ok := res.(Ager); ok {
		s.hooks[PhaseAgeResources] = append(s.hooks[PhaseAgeResources], namedHook{
			name: id,
			fn: func(context.Context, StepInfo) error {
				ager.AgeResources()
				return nil
			},
		})
	}
	return nil
}

// AddActivity registers an activity in the activities phase.
func (s *Simulation) AddActivity(a Activity) {
	s.hooks[PhaseActivities] = append(s.hooks[PhaseActivities], namedHook{name: a.Name(), fn: a.Run})
}

// Hooks returns hook names of a phase in run order.
func (s *Simulation) Hooks(phase Phase) []string {
	names := make([]string, 0, len(s.hooks[phase]))
	for _, h := range s.hooks[phase] {
		names = append(names, h.name)
	}
	return names
}

// Initialise resets the clock and runs the initialise phase.
func (s *Simulation) Initialise(ctx context.Context) error {
	s.Clock.Reset()
	if err := s.runPhase(ctx, PhaseInitialise); err != nil {
		return err
	}
	s.initialised = true
	log.Printf("[Simulation] Initialised %d resources at %s", len(s.Resources.List()), s.Clock.Now())
	return nil
}

// Step runs one simulation step and advances the clock.
// Initialise runs first if it hasn't yet.
func (s *Simulation) Step(ctx context.Context) error {
	if !s.initialised {
		if err := s.Initialise(ctx); err != nil {
			return err
		}
	}
	for _, phase := range StepPhases {
		if err := s.runPhase(ctx, phase); err != nil {
			return err
		}
	}
	s.Clock.Advance()
	return nil
}

// Run performs n steps, stopping early if ctx is done.
func (s *Simulation) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) runPhase(ctx context.Context, phase Phase) error {
	info := StepInfo{Step: s.Clock.Step(), At: s.Clock.Now()}
	for _, h := range s.hooks[phase] {
		if err := h.fn(ctx, info); err != nil {
			return &HookError{Phase: phase, Hook: h.name, Step: info.Step, Err: err}
		}
	}
	return nil
}
