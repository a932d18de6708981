package storage_test

import (
	"reflect"
	"testing"

	"github.com/veldt-dev/veldt/assert"
	"github.com/veldt-dev/veldt/component"
	"github.com/veldt-dev/veldt/storage"
	"github.com/veldt-dev/veldt/types"
)

type Stun struct {
	TicksLeft int
}

func (Stun) Name() string { return "stun" }

func stunMap(t *testing.T) *storage.Map {
	t.Helper()
	registry := component.NewRegistry()
	meta, err := component.NewComponentMetadata[Stun](component.WithSparseStorage[Stun]())
	assert.NilError(t, err)
	meta, err = registry.RegisterComponent(meta)
	assert.NilError(t, err)
	return storage.NewStorage(0).Map(meta)
}

func TestReinsertAfterRemoveYieldsFreshValue(t *testing.T) {
	m := stunMap(t)
	e := types.Entity{Index: 3, Generation: 1}

	m.Insert(e, reflect.ValueOf(Stun{TicksLeft: 5}), 1)
	removed, ok := m.Remove(e)
	assert.True(t, ok)
	assert.Equal(t, Stun{TicksLeft: 5}, removed)
	assert.False(t, m.Contains(e))

	m.Insert(e, reflect.ValueOf(Stun{TicksLeft: 2}), 2)
	v, ok := m.Value(e)
	assert.True(t, ok)
	assert.Equal(t, Stun{TicksLeft: 2}, v.Interface())
	tick, ok := m.ChangedTick(e)
	assert.True(t, ok)
	assert.Equal(t, types.Tick(2), tick)
}

func TestRemoveFixesUpMovedSlot(t *testing.T) {
	m := stunMap(t)
	a := types.Entity{Index: 0, Generation: 1}
	b := types.Entity{Index: 1, Generation: 1}
	c := types.Entity{Index: 2, Generation: 1}

	m.Insert(a, reflect.ValueOf(Stun{TicksLeft: 10}), 1)
	m.Insert(b, reflect.ValueOf(Stun{TicksLeft: 20}), 1)
	m.Insert(c, reflect.ValueOf(Stun{TicksLeft: 30}), 1)

	// Removing the first entry swap-moves the last entry's slot.
	_, ok := m.Remove(a)
	assert.True(t, ok)
	assert.Equal(t, 2, m.Len())

	v, ok := m.Value(c)
	assert.True(t, ok)
	assert.Equal(t, Stun{TicksLeft: 30}, v.Interface())
	v, ok = m.Value(b)
	assert.True(t, ok)
	assert.Equal(t, Stun{TicksLeft: 20}, v.Interface())
}

func TestStaleGenerationDoesNotAliasRecycledIndex(t *testing.T) {
	m := stunMap(t)
	old := types.Entity{Index: 5, Generation: 1}
	reused := types.Entity{Index: 5, Generation: 2}

	m.Insert(old, reflect.ValueOf(Stun{TicksLeft: 1}), 1)
	_, ok := m.Remove(old)
	assert.True(t, ok)

	m.Insert(reused, reflect.ValueOf(Stun{TicksLeft: 9}), 2)
	_, ok = m.Value(old)
	assert.False(t, ok, "stale handle must not see the recycled index's value")
	v, ok := m.Value(reused)
	assert.True(t, ok)
	assert.Equal(t, Stun{TicksLeft: 9}, v.Interface())
}

func TestInsertOverwritesExistingValue(t *testing.T) {
	m := stunMap(t)
	e := types.Entity{Index: 0, Generation: 1}

	m.Insert(e, reflect.ValueOf(Stun{TicksLeft: 1}), 1)
	m.Insert(e, reflect.ValueOf(Stun{TicksLeft: 8}), 3)
	assert.Equal(t, 1, m.Len())

	v, _ := m.Value(e)
	assert.Equal(t, Stun{TicksLeft: 8}, v.Interface())
	tick, _ := m.ChangedTick(e)
	assert.Equal(t, types.Tick(3), tick)
}

func TestAbsentIsANormalNegative(t *testing.T) {
	m := stunMap(t)
	e := types.Entity{Index: 42, Generation: 1}

	assert.False(t, m.Contains(e))
	_, ok := m.Get(e)
	assert.False(t, ok)
	_, ok = m.Remove(e)
	assert.False(t, ok)
	assert.False(t, m.RemoveAndDrop(e))
}
