package generic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/farm-resource-engine/generic"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := generic.NewRegistry()
	water := generic.NewAccount(generic.NewStringResource("Water"), generic.UnitLitres)
	require.NoError(t, reg.Register(water))

	got, err := reg.Get("water")
	require.NoError(t, err)
	assert.Same(t, water, got)
	assert.Nil(t, reg.Lookup("feed"))
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	reg := generic.NewRegistry()
	require.NoError(t, reg.Register(generic.NewAccount(generic.NewStringResource("feed"), generic.UnitKilograms)))

	err := reg.Register(generic.NewAccount(generic.NewStringResource("FEED"), generic.UnitKilograms))

	assert.ErrorIs(t, err, generic.ErrDuplicateResource)
	assert.Len(t, reg.List(), 1)
}

func TestRegistry_GetMissing(t *testing.T) {
	_, err := generic.NewRegistry().Get("straw")

	assert.ErrorIs(t, err, generic.ErrResourceNotFound)
	assert.True(t, generic.IsNotFound(err))
}

func TestRegistry_ListKeepsRegistrationOrder(t *testing.T) {
	reg := generic.NewRegistry()
	money := generic.StringResource{ID: "money", Domain: "finance"}
	for _, rt := range []generic.ResourceType{
		generic.NewStringResource("water"),
		money,
		generic.NewStringResource("feed"),
	} {
		require.NoError(t, reg.Register(generic.NewAccount(rt, generic.UnitKilograms)))
	}

	var ids []string
	for _, res := range reg.List() {
		ids = append(ids, res.ResourceType().ResourceID())
	}
	assert.Equal(t, []string{"water", "money", "feed"}, ids)

	finance := reg.ListByDomain("finance")
	require.Len(t, finance, 1)
	assert.Equal(t, "money", finance[0].ResourceType().ResourceID())
	assert.Len(t, reg.ListByDomain("general"), 2)
}

func TestRegistry_SubscribeAll(t *testing.T) {
	reg := generic.NewRegistry()
	water := generic.NewAccount(generic.NewStringResource("water"), generic.UnitLitres)
	feed := generic.NewAccount(generic.NewStringResource("feed"), generic.UnitKilograms)
	require.NoError(t, reg.Register(water))
	require.NoError(t, reg.Register(feed))

	rec := &recorder{}
	reg.SubscribeAll(rec)

	water.Add(dec("1"), "Pumping", "")
	feed.Add(dec("2"), "Harvest", "")

	require.Len(t, rec.txs, 2)
	assert.Equal(t, "water", rec.txs[0].Resource)
	assert.Equal(t, "feed", rec.txs[1].Resource)
}
