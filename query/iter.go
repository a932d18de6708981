package query

import (
	"reflect"

	"github.com/veldt-dev/veldt/archetype"
	"github.com/veldt-dev/veldt/storage"
	"github.com/veldt-dev/veldt/types"
)

// Iter is a cursor over the entities of one matched archetype. Column
// lookups are cached per archetype, so row advancement is cheap.
type Iter struct {
	query    *Query
	arch     *archetype.Archetype
	table    *storage.Table
	entities []types.Entity
	row      types.Row
	comps    []types.Component
	cols     map[types.ComponentID]*storage.Column
}

func (it *Iter) enter(archID types.ArchetypeID) {
	arches := it.query.reader.Archetypes()
	it.arch = arches.Archetype(archID)
	it.table = nil
	if it.arch.TableID() != types.NoTable {
		it.table = it.query.reader.Store().Table(it.arch.TableID())
	}
	it.entities = arches.Entities(archID)
	it.row = 0
	it.comps = nil
	it.cols = nil
}

// Entity returns the entity under the cursor.
func (it *Iter) Entity() types.Entity {
	return it.entities[it.row]
}

// ArchetypeID returns the archetype the cursor is positioned in.
func (it *Iter) ArchetypeID() types.ArchetypeID {
	return it.arch.ID()
}

// Components returns the components of the archetype under the cursor.
func (it *Iter) Components() []types.Component {
	if it.comps == nil {
		metas := it.query.reader.Components().Metas(it.arch.Components())
		it.comps = types.ConvertComponentMetadatasToComponents(metas)
	}
	return it.comps
}

// LastRun returns the tick of the query's previous run.
func (it *Iter) LastRun() types.Tick {
	return it.query.lastRun
}

// ChangedSince returns true if the component on the entity under the
// cursor was written at or after the given tick. A component the entity
// does not currently carry reports false.
func (it *Iter) ChangedSince(c types.Component, since types.Tick) bool {
	meta, err := it.query.reader.Components().ComponentByName(c.Name())
	if err != nil {
		return false
	}
	if meta.Kind() == types.StorageSparse {
		m, ok := it.query.reader.Store().MapByID(meta.ID())
		if !ok {
			return false
		}
		tick, ok := m.ChangedTick(it.Entity())
		return ok && tick >= since
	}
	col := it.column(meta.ID())
	if col == nil {
		return false
	}
	return col.ChangedTick(it.row) >= since
}

func (it *Iter) column(id types.ComponentID) *storage.Column {
	if col, ok := it.cols[id]; ok {
		return col
	}
	var col *storage.Column
	if it.table != nil {
		if c, ok := it.table.Column(id); ok {
			col = c
		}
	}
	if it.cols == nil {
		it.cols = make(map[types.ComponentID]*storage.Column)
	}
	it.cols[id] = col
	return col
}

// Fetch returns a read-only pointer to the entity's T, or false when the
// entity does not currently carry one. Sparse components resolve through
// their map, so a recently detached component yields nothing even though
// the archetype still lists it.
func Fetch[T types.Component](it *Iter) (*T, bool) {
	meta, ok := it.query.reader.Components().ComponentByType(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return nil, false
	}
	if meta.Kind() == types.StorageSparse {
		m, ok := it.query.reader.Store().MapByID(meta.ID())
		if !ok {
			return nil, false
		}
		p, ok := m.Get(it.Entity())
		if !ok {
			return nil, false
		}
		return (*T)(p), true
	}
	col := it.column(meta.ID())
	if col == nil {
		return nil, false
	}
	return (*T)(col.Ptr(it.row)), true
}

// FetchMut is Fetch plus a change record: the component's changed tick is
// set to the current tick before the pointer is returned.
func FetchMut[T types.Component](it *Iter) (*T, bool) {
	meta, ok := it.query.reader.Components().ComponentByType(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return nil, false
	}
	tick := it.query.reader.CurrentTick()
	if meta.Kind() == types.StorageSparse {
		m, ok := it.query.reader.Store().MapByID(meta.ID())
		if !ok {
			return nil, false
		}
		p, ok := m.Get(it.Entity())
		if !ok {
			return nil, false
		}
		m.MarkChanged(it.Entity(), tick)
		return (*T)(p), true
	}
	col := it.column(meta.ID())
	if col == nil {
		return nil, false
	}
	col.MarkChanged(it.row, tick)
	return (*T)(col.Ptr(it.row)), true
}
