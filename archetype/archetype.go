// Package archetype maintains the canonical shape -> id mapping, the
// add/remove transition graph, and the columnar migration that moves an
// entity's dense row between tables on a structural change.
package archetype

import (
	"github.com/veldt-dev/veldt/types"
)

// Archetype is one storage shape: a canonical component-id set, the dense
// table it owns (none if the set is entirely sparse), the sparse
// components attached to entities spawned with this shape, and the cached
// transition edges. Archetypes are created lazily on first use of a shape
// and are never destroyed, even when emptied: unbounded id growth is
// traded for stable identity and edge-cache reuse.
type Archetype struct {
	id      types.ArchetypeID
	tableID types.TableID
	dense   []types.ComponentID // sorted
	sparse  []types.ComponentID // sorted
	mask    Mask
	// Entities of a table-less shape. Tabled archetypes delegate the
	// entity list to their table so the table row is the one row.
	entities []types.Entity

	addEdges    map[types.ComponentID]types.ArchetypeID
	removeEdges map[types.ComponentID]types.ArchetypeID
}

func (a *Archetype) ID() types.ArchetypeID {
	return a.id
}

// TableID returns the dense table owned by this archetype, or NoTable.
func (a *Archetype) TableID() types.TableID {
	return a.tableID
}

func (a *Archetype) DenseComponents() []types.ComponentID {
	return a.dense
}

func (a *Archetype) SparseComponents() []types.ComponentID {
	return a.sparse
}

// Components returns the full canonical set, dense then sparse.
func (a *Archetype) Components() []types.ComponentID {
	out := make([]types.ComponentID, 0, len(a.dense)+len(a.sparse))
	out = append(out, a.dense...)
	return append(out, a.sparse...)
}

func (a *Archetype) Contains(id types.ComponentID) bool {
	return a.mask.Has(id)
}

// StorageKind reports where rows of this shape live.
func (a *Archetype) StorageKind() types.StorageKind {
	if a.tableID == types.NoTable {
		return types.StorageSparse
	}
	return types.StorageDense
}

// PushEntity appends e to a table-less archetype's entity list.
func (a *Archetype) PushEntity(e types.Entity) types.Row {
	a.entities = append(a.entities, e)
	return types.Row(len(a.entities) - 1)
}

// SwapRemoveEntity removes the given slot from a table-less archetype's
// entity list, reporting the entity moved into the vacated slot.
func (a *Archetype) SwapRemoveEntity(row types.Row) (types.MovedEntity, bool) {
	last := len(a.entities) - 1
	if int(row) == last {
		a.entities = a.entities[:last]
		return types.MovedEntity{}, false
	}
	moved := a.entities[last]
	a.entities[row] = moved
	a.entities = a.entities[:last]
	return types.MovedEntity{Entity: moved, Row: row}, true
}

// ListEntities returns the entity list of a table-less archetype.
func (a *Archetype) ListEntities() []types.Entity {
	return a.entities
}
