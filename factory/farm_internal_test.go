package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/farm-resource-engine/farm"
	"github.com/warp/farm-resource-engine/generic"
)

// readOnlyResource hides the account's Set method.
type readOnlyResource struct {
	generic.Resource
}

func TestAddInitial_UnsettableResourceNamesField(t *testing.T) {
	// GIVEN: A resource that cannot take a starting amount
	sim := farm.NewSimulation(generic.NewClock(defaultStart))
	res := readOnlyResource{generic.NewAccount(generic.NewStringResource("hay"), generic.UnitKilograms)}

	// WHEN: Registering an initial amount for it
	err := NewFarmFactory().addInitial(sim, res, ResourceYAML{ID: "hay", Initial: 5}, "resources[2]")

	// THEN: The error points at the definition path
	var defErr *generic.DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "resources[2].initial", defErr.Field)
	assert.Empty(t, sim.Hooks(farm.PhaseInitialise))
}
