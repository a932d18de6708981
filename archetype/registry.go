package archetype

import (
	"reflect"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/veldt-dev/veldt/component"
	"github.com/veldt-dev/veldt/filter"
	"github.com/veldt-dev/veldt/storage"
	"github.com/veldt-dev/veldt/types"
)

// Registry owns every archetype of one world and the shape -> id map.
type Registry struct {
	components *component.Registry
	storage    *storage.Storage
	arches     []*Archetype
	byMask     map[Mask]types.ArchetypeID
}

func NewRegistry(components *component.Registry, store *storage.Storage) *Registry {
	return &Registry{
		components: components,
		storage:    store,
		byMask:     make(map[Mask]types.ArchetypeID),
	}
}

// Count returns the number of archetypes created so far. Ids below the
// count are stable forever, which is what lets query caches re-scan only
// ids at or above their last seen count.
func (r *Registry) Count() int {
	return len(r.arches)
}

// Archetype returns the archetype with the given id. Unknown ids are an
// internal-consistency violation: ids only come from this registry and
// archetypes are never destroyed.
func (r *Registry) Archetype(id types.ArchetypeID) *Archetype {
	return r.arches[id]
}

// GetOrCreate canonicalizes the component set and returns its archetype,
// creating the archetype, binding its dense table, and pre-caching
// transition edges on first use of the shape.
func (r *Registry) GetOrCreate(ids []types.ComponentID) (*Archetype, error) {
	canonical := canonicalize(ids)
	mask := maskOf(canonical)
	if id, ok := r.byMask[mask]; ok {
		return r.arches[id], nil
	}

	var dense, sparse []types.ComponentID
	for _, id := range canonical {
		meta, ok := r.components.ComponentByID(id)
		if !ok {
			return nil, eris.Wrap(component.ErrComponentNotRegistered, "")
		}
		if meta.Kind() == types.StorageSparse {
			sparse = append(sparse, id)
		} else {
			dense = append(dense, id)
		}
	}

	a := &Archetype{
		id:          types.ArchetypeID(len(r.arches)),
		tableID:     types.NoTable,
		dense:       dense,
		sparse:      sparse,
		mask:        mask,
		addEdges:    make(map[types.ComponentID]types.ArchetypeID),
		removeEdges: make(map[types.ComponentID]types.ArchetypeID),
	}
	if len(dense) > 0 {
		a.tableID = r.storage.NewTable(r.components.Metas(dense)).ID()
	}

	// Link up every archetype one add or remove away so the edge is warm
	// before the first transition ever asks for it.
	for _, other := range r.arches {
		if delta, otherHasMore, ok := singleDelta(a, other); ok {
			if otherHasMore {
				a.addEdges[delta] = other.id
				other.removeEdges[delta] = a.id
			} else {
				a.removeEdges[delta] = other.id
				other.addEdges[delta] = a.id
			}
		}
	}

	r.arches = append(r.arches, a)
	r.byMask[mask] = a.id
	log.Debug().Int("archetype_id", int(a.id)).Int("table_id", int(a.tableID)).Msg("created archetype")
	return a, nil
}

// Transition returns the archetype reached from `from` by adding and/or
// removing one component. Single-component deltas consult the edge cache
// first and record the edge in both directions on a miss, which amortizes
// the dominant case of many entities undergoing the same change.
func (r *Registry) Transition(fromID types.ArchetypeID, add, remove types.ComponentID) (*Archetype, error) {
	from := r.Archetype(fromID)

	if add != types.NoComponent && remove == types.NoComponent {
		if toID, ok := from.addEdges[add]; ok {
			return r.arches[toID], nil
		}
	}
	if remove != types.NoComponent && add == types.NoComponent {
		if toID, ok := from.removeEdges[remove]; ok {
			return r.arches[toID], nil
		}
	}

	target := from.Components()
	if remove != types.NoComponent {
		kept := target[:0]
		for _, id := range target {
			if id != remove {
				kept = append(kept, id)
			}
		}
		target = kept
	}
	if add != types.NoComponent {
		target = append(target, add)
	}

	to, err := r.GetOrCreate(target)
	if err != nil {
		return nil, err
	}
	if add != types.NoComponent && remove == types.NoComponent {
		from.addEdges[add] = to.id
		to.removeEdges[add] = from.id
	}
	if remove != types.NoComponent && add == types.NoComponent {
		from.removeEdges[remove] = to.id
		to.addEdges[remove] = from.id
	}
	return to, nil
}

// Move migrates entity e from its current location into archetype `to`.
//
// Dense columns present in both tables have their row moved; columns only
// in the destination take their value from `added` (never implicit zero
// fill); columns only in the source have their value dropped through the
// column's capability, except `taken`, whose ownership the caller has
// already assumed. The vacated source row is filled by swap-remove; the
// entity that was moved to fill it is reported so the caller can update
// its stored row, which is the one fix-up the whole data model depends on.
//
// Sparse attachments are not touched here: sparse component changes only
// ever go through the maps and never move a dense row.
func (r *Registry) Move(
	e types.Entity,
	loc types.Location,
	to *Archetype,
	added func(types.ComponentID) (reflect.Value, bool),
	taken types.ComponentID,
	tick types.Tick,
) (types.Location, types.MovedEntity, bool) {
	from := r.Archetype(loc.Arch)
	newLoc := types.Location{Arch: to.id, Table: to.tableID, Kind: to.StorageKind()}

	var srcTable *storage.Table
	if from.tableID != types.NoTable {
		srcTable = r.storage.Table(from.tableID)
	}

	if to.tableID != types.NoTable {
		dstTable := r.storage.Table(to.tableID)
		newRow := dstTable.PushRow(e, func(id types.ComponentID) (reflect.Value, bool) {
			if v, ok := added(id); ok {
				return v, true
			}
			if srcTable != nil {
				if col, ok := srcTable.Column(id); ok {
					return col.Value(loc.Row), true
				}
			}
			return reflect.Value{}, false
		}, tick)
		newLoc.Row = newRow
		// A move is not a write: carry the source row's change ticks over.
		if srcTable != nil {
			for _, id := range to.dense {
				srcCol, ok := srcTable.Column(id)
				if !ok {
					continue
				}
				dstCol, _ := dstTable.Column(id)
				dstCol.MarkChanged(newRow, srcCol.ChangedTick(loc.Row))
			}
		}
	} else {
		newLoc.Row = to.PushEntity(e)
	}

	// Vacate the source row.
	var moved types.MovedEntity
	var hasMoved bool
	if srcTable != nil {
		for _, id := range from.dense {
			if to.Contains(id) || id == taken {
				continue
			}
			col, _ := srcTable.Column(id)
			col.DropValue(loc.Row)
		}
		moved, hasMoved = srcTable.SwapRemoveRow(loc.Row, false)
	} else {
		moved, hasMoved = from.SwapRemoveEntity(loc.Row)
	}

	return newLoc, moved, hasMoved
}

// Entities returns the entities of an archetype in row order.
func (r *Registry) Entities(id types.ArchetypeID) []types.Entity {
	a := r.Archetype(id)
	if a.tableID == types.NoTable {
		return a.ListEntities()
	}
	return r.storage.Table(a.tableID).Entities()
}

// SearchFrom returns the ids of archetypes at or above `start` that match
// the filter. Callers track how far they have scanned and pass it back as
// start, so repeated searches only ever visit newly created archetypes.
func (r *Registry) SearchFrom(f filter.ComponentFilter, start int) []types.ArchetypeID {
	var out []types.ArchetypeID
	for i := start; i < len(r.arches); i++ {
		comps := r.components.Metas(r.arches[i].Components())
		if !f.MatchesComponents(types.ConvertComponentMetadatasToComponents(comps)) {
			continue
		}
		out = append(out, types.ArchetypeID(i))
	}
	return out
}

func canonicalize(ids []types.ComponentID) []types.ComponentID {
	out := make([]types.ComponentID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	dedup := out[:0]
	for i, id := range out {
		if i > 0 && id == out[i-1] {
			continue
		}
		dedup = append(dedup, id)
	}
	return dedup
}

// singleDelta reports the one component separating a and b, if exactly one
// does. The second return is true when b is the larger set.
func singleDelta(a, b *Archetype) (types.ComponentID, bool, bool) {
	ac, bc := a.Components(), b.Components()
	sort.Slice(ac, func(i, j int) bool { return ac[i] < ac[j] })
	sort.Slice(bc, func(i, j int) bool { return bc[i] < bc[j] })
	switch {
	case len(bc) == len(ac)+1:
		if id, ok := oneExtra(bc, ac); ok {
			return id, true, true
		}
	case len(ac) == len(bc)+1:
		if id, ok := oneExtra(ac, bc); ok {
			return id, false, true
		}
	}
	return types.NoComponent, false, false
}

// oneExtra returns the single component in `big` that is missing from
// `small`, provided big is exactly small plus that component. Both sets
// are canonical, so one merged walk suffices.
func oneExtra(big, small []types.ComponentID) (types.ComponentID, bool) {
	extra := types.NoComponent
	i, j := 0, 0
	for i < len(big) {
		if j < len(small) && big[i] == small[j] {
			i++
			j++
			continue
		}
		if extra != types.NoComponent {
			return types.NoComponent, false
		}
		extra = big[i]
		i++
	}
	if j != len(small) || extra == types.NoComponent {
		return types.NoComponent, false
	}
	return extra, true
}
