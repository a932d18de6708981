package storage_test

import (
	"reflect"
	"testing"

	"github.com/veldt-dev/veldt/assert"
	"github.com/veldt-dev/veldt/component"
	"github.com/veldt-dev/veldt/storage"
	"github.com/veldt-dev/veldt/types"
)

type Position struct {
	X, Y float64
}

func (Position) Name() string { return "position" }

type Velocity struct {
	DX, DY float64
}

func (Velocity) Name() string { return "velocity" }

func registered(t *testing.T) (*component.Registry, types.ComponentMetadata, types.ComponentMetadata) {
	t.Helper()
	registry := component.NewRegistry()
	posMeta, err := component.NewComponentMetadata[Position]()
	assert.NilError(t, err)
	posMeta, err = registry.RegisterComponent(posMeta)
	assert.NilError(t, err)
	velMeta, err := component.NewComponentMetadata[Velocity]()
	assert.NilError(t, err)
	velMeta, err = registry.RegisterComponent(velMeta)
	assert.NilError(t, err)
	return registry, posMeta, velMeta
}

func pushRow(t *testing.T, table *storage.Table, e types.Entity, values map[types.ComponentID]any) types.Row {
	t.Helper()
	return table.PushRow(e, func(id types.ComponentID) (reflect.Value, bool) {
		v, ok := values[id]
		if !ok {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(v), true
	}, 1)
}

func TestSwapRemoveMiddleRowReportsMovedEntity(t *testing.T) {
	_, posMeta, velMeta := registered(t)
	store := storage.NewStorage(0)
	table := store.NewTable([]types.ComponentMetadata{posMeta, velMeta})

	entities := []types.Entity{
		{Index: 0, Generation: 1},
		{Index: 1, Generation: 1},
		{Index: 2, Generation: 1},
	}
	for i, e := range entities {
		row := pushRow(t, table, e, map[types.ComponentID]any{
			posMeta.ID(): Position{X: float64(i), Y: float64(i)},
			velMeta.ID(): Velocity{DX: float64(i * 10)},
		})
		assert.Equal(t, types.Row(i), row)
	}

	moved, hasMoved := table.SwapRemoveRow(1, true)
	assert.True(t, hasMoved)
	assert.Equal(t, entities[2], moved.Entity)
	assert.Equal(t, types.Row(1), moved.Row)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, entities[2], table.Entity(1))
	assert.Equal(t, entities[0], table.Entity(0))

	// The moved row carried its values with it.
	col, ok := table.Column(posMeta.ID())
	assert.True(t, ok)
	assert.Equal(t, Position{X: 2, Y: 2}, col.Value(1).Interface())
	assert.Equal(t, Position{X: 0, Y: 0}, col.Value(0).Interface())
}

func TestSwapRemoveLastRowReportsNothing(t *testing.T) {
	_, posMeta, velMeta := registered(t)
	store := storage.NewStorage(0)
	table := store.NewTable([]types.ComponentMetadata{posMeta, velMeta})

	pushRow(t, table, types.Entity{Index: 0, Generation: 1}, map[types.ComponentID]any{
		posMeta.ID(): Position{},
		velMeta.ID(): Velocity{},
	})
	_, hasMoved := table.SwapRemoveRow(0, true)
	assert.False(t, hasMoved)
	assert.Equal(t, 0, table.Len())
}

func TestColumnGrowthPreservesValues(t *testing.T) {
	_, posMeta, velMeta := registered(t)
	store := storage.NewStorage(2)
	table := store.NewTable([]types.ComponentMetadata{posMeta, velMeta})

	const rows = 100
	for i := 0; i < rows; i++ {
		pushRow(t, table, types.Entity{Index: uint32(i), Generation: 1}, map[types.ComponentID]any{
			posMeta.ID(): Position{X: float64(i)},
			velMeta.ID(): Velocity{DY: float64(-i)},
		})
	}
	assert.Equal(t, rows, table.Len())

	posCol, _ := table.Column(posMeta.ID())
	velCol, _ := table.Column(velMeta.ID())
	for i := 0; i < rows; i++ {
		assert.Equal(t, Position{X: float64(i)}, posCol.Value(types.Row(i)).Interface())
		assert.Equal(t, Velocity{DY: float64(-i)}, velCol.Value(types.Row(i)).Interface())
	}
}

func TestPushRowPanicsOnMissingValue(t *testing.T) {
	_, posMeta, velMeta := registered(t)
	store := storage.NewStorage(0)
	table := store.NewTable([]types.ComponentMetadata{posMeta, velMeta})

	defer func() {
		assert.NotNil(t, recover(), "push with a missing column value must panic")
	}()
	pushRow(t, table, types.Entity{Index: 0, Generation: 1}, map[types.ComponentID]any{
		posMeta.ID(): Position{},
	})
}

func TestChangedTickFollowsWrites(t *testing.T) {
	_, posMeta, velMeta := registered(t)
	store := storage.NewStorage(0)
	table := store.NewTable([]types.ComponentMetadata{posMeta, velMeta})

	pushRow(t, table, types.Entity{Index: 0, Generation: 1}, map[types.ComponentID]any{
		posMeta.ID(): Position{},
		velMeta.ID(): Velocity{},
	})
	col, _ := table.Column(posMeta.ID())
	assert.Equal(t, types.Tick(1), col.ChangedTick(0))

	col.Set(0, reflect.ValueOf(Position{X: 9}), 7)
	assert.Equal(t, types.Tick(7), col.ChangedTick(0))
	assert.Equal(t, Position{X: 9}, col.Value(0).Interface())
}
