/*
Package factory provides YAML to Go farm model conversion.

PURPOSE:
  Converts a YAML farm definition into a ready-to-run farm.Simulation:
  resource stores with their parameters, initial amounts, and the
  activities that run every step. Parameters are validated here so the
  core stores can trust what they receive.

YAML SCHEMA:
  start: 2024-01-01
  step_months: 1
  resources:
    - id: manure
      kind: decaying
      unit: kg
      decay_rate: 0.9
      moisture_decay_rate: 0.8
      proportion_moisture_fresh: 0.6
      maximum_age: 12
      collection_order: freshest_first
    - id: feed
      kind: simple
      domain: feed
      unit: kg
      initial: 2000
  activities:
    - name: Yard deposition
      type: deposit
      resource: manure
      store: Yards
      amount: 120
    - name: Yard cleaning
      type: collect
      resource: manure
      store: Yards
      limiter: 0.75
    - name: Supplementary feeding
      type: consume
      resource: feed
      amount: 150
      reason: Weaners

KINDS:
  decaying: manure.Store (age-structured uncollected pools + collected stock)
  simple:   generic.Account (water, feed, money...)

ACTIVITY TYPES:
  deposit: needs a decaying resource, store, amount
  collect: needs a decaying resource, store, limiter
  consume: any resource, amount

USAGE:
  f := factory.NewFarmFactory()
  sim, err := f.Load("farm.yaml")

SEE ALSO:
  - farm/simulation.go: What gets built
  - manure/types.go: Params
*/
package factory

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/farm-resource-engine/farm"
	"github.com/warp/farm-resource-engine/generic"
	"github.com/warp/farm-resource-engine/manure"
)

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

// FarmYAML is the YAML representation of a farm.
type FarmYAML struct {
	Start      string         `yaml:"start"` // 2006-01-02, defaults to 2000-01-01
	StepMonths int            `yaml:"step_months,omitempty"`
	Resources  []ResourceYAML `yaml:"resources"`
	Activities []ActivityYAML `yaml:"activities,omitempty"`
}

// ResourceYAML represents one resource store.
type ResourceYAML struct {
	ID      string  `yaml:"id"`
	Kind    string  `yaml:"kind"` // decaying, simple
	Domain  string  `yaml:"domain,omitempty"`
	Unit    string  `yaml:"unit"`
	Initial float64 `yaml:"initial,omitempty"`

	// decaying only
	DecayRate               *float64 `yaml:"decay_rate,omitempty"`
	MoistureDecayRate       *float64 `yaml:"moisture_decay_rate,omitempty"`
	ProportionMoistureFresh *float64 `yaml:"proportion_moisture_fresh,omitempty"`
	MaximumAge              *int     `yaml:"maximum_age,omitempty"`
	CollectionOrder         string   `yaml:"collection_order,omitempty"`
}

// ActivityYAML represents one per-step farm activity.
type ActivityYAML struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"` // deposit, collect, consume
	Resource string  `yaml:"resource"`
	Store    string  `yaml:"store,omitempty"`
	Amount   float64 `yaml:"amount,omitempty"`
	Limiter  float64 `yaml:"limiter,omitempty"`
	Reason   string  `yaml:"reason,omitempty"`
}

const (
	KindDecaying = "decaying"
	KindSimple   = "simple"

	ActivityDeposit = "deposit"
	ActivityCollect = "collect"
	ActivityConsume = "consume"
)

var defaultStart = generic.NewTimePoint(2000, time.January, 1)

// =============================================================================
// FARM FACTORY
// =============================================================================

// FarmFactory converts YAML farm definitions to simulations.
type FarmFactory struct{}

// NewFarmFactory creates a new farm factory.
func NewFarmFactory() *FarmFactory {
	return &FarmFactory{}
}

// Load reads and parses a farm definition file.
func (f *FarmFactory) Load(path string) (*farm.Simulation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read farm definition: %w", err)
	}
	return f.Parse(data)
}

// Parse parses YAML into a simulation.
func (f *FarmFactory) Parse(data []byte) (*farm.Simulation, error) {
	var fy FarmYAML
	if err := yaml.Unmarshal(data, &fy); err != nil {
		return nil, fmt.Errorf("failed to parse farm YAML: %w", err)
	}
	return f.FromYAML(fy)
}

// FromYAML builds a simulation from a parsed definition.
func (f *FarmFactory) FromYAML(fy FarmYAML) (*farm.Simulation, error) {
	start := defaultStart
	if fy.Start != "" {
		t, err := time.Parse("2006-01-02", fy.Start)
		if err != nil {
			return nil, &generic.DefinitionError{Field: "start", Reason: err.Error()}
		}
		start = generic.TimePoint{Time: t}
	}
	clock := generic.NewClock(start)
	if fy.StepMonths < 0 {
		return nil, &generic.DefinitionError{Field: "step_months", Reason: "must not be negative"}
	}
	if fy.StepMonths > 0 {
		clock.StepMonths = fy.StepMonths
	}

	sim := farm.NewSimulation(clock)
	decaying := make(map[string]*manure.Store)

	for i, ry := range fy.Resources {
		res, err := f.buildResource(ry, fmt.Sprintf("resources[%d]", i))
		if err != nil {
			return nil, err
		}
		if err := sim.AddResource(res); err != nil {
			return nil, fmt.Errorf("resources[%d]: %w", i, err)
		}
		if ms, ok := res.(*manure.Store); ok {
			decaying[strings.ToLower(ry.ID)] = ms
		}
		if ry.Initial != 0 {
			if err := f.addInitial(sim, res, ry, fmt.Sprintf("resources[%d]", i)); err != nil {
				return nil, err
			}
		}
	}

	for i, ay := range fy.Activities {
		act, err := f.buildActivity(sim, decaying, ay, fmt.Sprintf("activities[%d]", i))
		if err != nil {
			return nil, err
		}
		sim.AddActivity(act)
	}

	return sim, nil
}

func (f *FarmFactory) buildResource(ry ResourceYAML, field string) (generic.Resource, error) {
	if ry.ID == "" {
		return nil, &generic.DefinitionError{Field: field + ".id", Reason: "is required"}
	}
	if ry.Initial < 0 {
		return nil, &generic.DefinitionError{Field: field + ".initial", Reason: "must not be negative"}
	}
	unit := parseUnit(ry.Unit)

	switch strings.ToLower(ry.Kind) {
	case KindDecaying:
		params, err := parseParams(ry, field)
		if err != nil {
			return nil, err
		}
		var rt generic.ResourceType = manure.Resource(ry.ID)
		if ry.Domain != "" {
			rt = generic.StringResource{ID: ry.ID, Domain: ry.Domain}
		}
		return manure.NewStore(rt, unit, params), nil

	case KindSimple, "":
		rt := generic.NewStringResource(ry.ID)
		if ry.Domain != "" {
			rt.Domain = ry.Domain
		}
		return generic.NewAccount(rt, unit), nil

	default:
		return nil, &generic.DefinitionError{Field: field + ".kind", Reason: fmt.Sprintf("unknown kind %q", ry.Kind)}
	}
}

// addInitial sets the starting amount after the store has been reset.
func (f *FarmFactory) addInitial(sim *farm.Simulation, res generic.Resource, ry ResourceYAML, field string) error {
	setter, ok := res.(interface{ Set(decimal.Decimal) })
	if !ok {
		return &generic.DefinitionError{Field: field + ".initial", Reason: "resource cannot be set"}
	}
	initial := decimal.NewFromFloat(ry.Initial)
	return sim.On(farm.PhaseInitialise, ry.ID+" initial amount", func(_ context.Context, _ farm.StepInfo) error {
		setter.Set(initial)
		return nil
	})
}

func (f *FarmFactory) buildActivity(sim *farm.Simulation, decaying map[string]*manure.Store, ay ActivityYAML, field string) (farm.Activity, error) {
	if ay.Name == "" {
		return nil, &generic.DefinitionError{Field: field + ".name", Reason: "is required"}
	}
	res, err := sim.Resources.Get(ay.Resource)
	if err != nil {
		return nil, &generic.DefinitionError{Field: field + ".resource", Reason: err.Error()}
	}

	switch strings.ToLower(ay.Type) {
	case ActivityDeposit, ActivityCollect:
		store, ok := decaying[strings.ToLower(ay.Resource)]
		if !ok {
			return nil, &generic.DefinitionError{Field: field + ".resource", Reason: fmt.Sprintf("%s is not a decaying resource", ay.Resource)}
		}
		if strings.ToLower(ay.Type) == ActivityDeposit {
			if ay.Amount < 0 {
				return nil, &generic.DefinitionError{Field: field + ".amount", Reason: "must not be negative"}
			}
			return &farm.Deposit{Label: ay.Name, Store: store, Target: ay.Store, Amount: decimal.NewFromFloat(ay.Amount)}, nil
		}
		if ay.Limiter < 0 || ay.Limiter > 1 {
			return nil, &generic.DefinitionError{Field: field + ".limiter", Reason: "must be a proportion in the range 0 to 1"}
		}
		return &farm.Collect{Label: ay.Name, Store: store, Target: ay.Store, Limiter: decimal.NewFromFloat(ay.Limiter)}, nil

	case ActivityConsume:
		remover, ok := res.(generic.Remover)
		if !ok {
			return nil, &generic.DefinitionError{Field: field + ".resource", Reason: fmt.Sprintf("%s does not support removal", ay.Resource)}
		}
		if ay.Amount < 0 {
			return nil, &generic.DefinitionError{Field: field + ".amount", Reason: "must not be negative"}
		}
		return &farm.Consume{Label: ay.Name, Resource: remover, Amount: decimal.NewFromFloat(ay.Amount), Reason: ay.Reason}, nil

	default:
		return nil, &generic.DefinitionError{Field: field + ".type", Reason: fmt.Sprintf("unknown activity type %q", ay.Type)}
	}
}

// =============================================================================
// PARSE HELPERS
// =============================================================================

func parseParams(ry ResourceYAML, field string) (manure.Params, error) {
	params := manure.DefaultParams()

	rates := []struct {
		name  string
		value *float64
		dst   *decimal.Decimal
	}{
		{"decay_rate", ry.DecayRate, &params.DecayRate},
		{"moisture_decay_rate", ry.MoistureDecayRate, &params.MoistureDecayRate},
		{"proportion_moisture_fresh", ry.ProportionMoistureFresh, &params.ProportionMoistureFresh},
	}
	for _, r := range rates {
		if r.value == nil {
			continue
		}
		if *r.value < 0 || *r.value > 1 {
			return params, &generic.DefinitionError{Field: field + "." + r.name, Reason: "must be a proportion in the range 0 to 1"}
		}
		*r.dst = decimal.NewFromFloat(*r.value)
	}

	if ry.MaximumAge != nil {
		if *ry.MaximumAge < 0 {
			return params, &generic.DefinitionError{Field: field + ".maximum_age", Reason: "must not be negative"}
		}
		params.MaximumAge = *ry.MaximumAge
	}

	switch manure.CollectionOrder(strings.ToLower(ry.CollectionOrder)) {
	case "", manure.FreshestFirst:
		params.CollectionOrder = manure.FreshestFirst
	case manure.OldestFirst:
		params.CollectionOrder = manure.OldestFirst
	default:
		return params, &generic.DefinitionError{Field: field + ".collection_order", Reason: fmt.Sprintf("unknown order %q", ry.CollectionOrder)}
	}
	return params, nil
}

func parseUnit(s string) generic.Unit {
	switch strings.ToLower(s) {
	case "kg", "kilograms", "":
		return generic.UnitKilograms
	case "t", "tonnes":
		return generic.UnitTonnes
	case "l", "litres", "liters":
		return generic.UnitLitres
	case "$", "dollars":
		return generic.UnitDollars
	case "head":
		return generic.UnitHead
	default:
		return generic.Unit(s)
	}
}
