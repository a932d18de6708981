package storage

import (
	"reflect"
	"unsafe"

	"github.com/veldt-dev/veldt/types"
)

const absent = int32(-1)

// Map is the sparse-set storage for one sparse component: a dense value
// column, a parallel dense list of owning entities, and a sparse index
// from entity index to dense slot. Membership is a normal, expected
// negative case, so lookups report absence rather than failing.
type Map struct {
	comp     types.ComponentID
	column   *Column
	entities []types.Entity
	sparse   []int32 // entity index -> dense slot, absent if none
}

func newMap(meta types.ComponentMetadata, capacity int) *Map {
	return &Map{
		comp:   meta.ID(),
		column: newColumn(meta, capacity),
	}
}

func (m *Map) Component() types.ComponentID {
	return m.comp
}

func (m *Map) Len() int {
	return len(m.entities)
}

// Entities returns the owning entities in dense (insertion) order.
func (m *Map) Entities() []types.Entity {
	return m.entities
}

func (m *Map) slot(e types.Entity) (types.Row, bool) {
	if int(e.Index) >= len(m.sparse) {
		return 0, false
	}
	s := m.sparse[e.Index]
	// The generation check guards against a recycled index inheriting the
	// previous owner's value.
	if s == absent || m.entities[s] != e {
		return 0, false
	}
	return types.Row(s), true
}

func (m *Map) Contains(e types.Entity) bool {
	_, ok := m.slot(e)
	return ok
}

// Insert sets the component value for e, overwriting (and dropping) any
// value already present. Amortized O(1).
func (m *Map) Insert(e types.Entity, v reflect.Value, tick types.Tick) {
	if s, ok := m.slot(e); ok {
		m.column.Set(s, v, tick)
		return
	}
	m.ensure(e.Index)
	row := m.column.Push(v, tick)
	m.entities = append(m.entities, e)
	m.sparse[e.Index] = int32(row)
}

// Remove extracts and returns the value for e. The dense arrays are
// swap-remove compacted and the sparse index of whichever entity's value
// moved is updated. Reports false if e has no value.
func (m *Map) Remove(e types.Entity) (any, bool) {
	s, ok := m.slot(e)
	if !ok {
		return nil, false
	}
	// Copy the value out before the slot is reused; ownership moves to the
	// caller, so the drop capability is not invoked.
	val := m.column.Value(s).Interface()
	m.removeSlot(e, s, false)
	return val, true
}

// RemoveAndDrop discards the value for e via the drop capability. Used on
// despawn, where no caller takes ownership.
func (m *Map) RemoveAndDrop(e types.Entity) bool {
	s, ok := m.slot(e)
	if !ok {
		return false
	}
	m.removeSlot(e, s, true)
	return true
}

func (m *Map) removeSlot(e types.Entity, s types.Row, dropVal bool) {
	last := len(m.entities) - 1
	m.column.swapRemove(s, dropVal)
	if int(s) != last {
		movedEnt := m.entities[last]
		m.entities[s] = movedEnt
		m.sparse[movedEnt.Index] = int32(s)
	}
	m.entities = m.entities[:last]
	m.sparse[e.Index] = absent
}

// Get returns the address of e's value, or nil absence. O(1).
func (m *Map) Get(e types.Entity) (unsafe.Pointer, bool) {
	s, ok := m.slot(e)
	if !ok {
		return nil, false
	}
	return m.column.Ptr(s), true
}

// Value returns e's value as an addressable reflect value.
func (m *Map) Value(e types.Entity) (reflect.Value, bool) {
	s, ok := m.slot(e)
	if !ok {
		return reflect.Value{}, false
	}
	return m.column.Value(s), true
}

// MarkChanged records a write to e's value at the given tick.
func (m *Map) MarkChanged(e types.Entity, tick types.Tick) {
	if s, ok := m.slot(e); ok {
		m.column.MarkChanged(s, tick)
	}
}

// ChangedTick returns the tick at which e's value was last written.
func (m *Map) ChangedTick(e types.Entity) (types.Tick, bool) {
	s, ok := m.slot(e)
	if !ok {
		return 0, false
	}
	return m.column.ChangedTick(s), true
}

func (m *Map) ensure(idx uint32) {
	for int(idx) >= len(m.sparse) {
		m.sparse = append(m.sparse, absent)
	}
}
