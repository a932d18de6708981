package storage

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/veldt-dev/veldt/types"
)

// Table is the dense columnar storage for one archetype: one column per
// dense component plus a parallel list of the owning entities. All columns
// and the entity list always have equal length; row i across every column
// belongs to entities[i].
type Table struct {
	id       types.TableID
	ids      []types.ComponentID // sorted
	columns  []*Column           // parallel to ids
	entities []types.Entity
}

func newTable(id types.TableID, metas []types.ComponentMetadata, capacity int) *Table {
	t := &Table{
		id:      id,
		ids:     make([]types.ComponentID, len(metas)),
		columns: make([]*Column, len(metas)),
	}
	for i, meta := range metas {
		t.ids[i] = meta.ID()
		t.columns[i] = newColumn(meta, capacity)
	}
	if !sort.SliceIsSorted(t.ids, func(i, j int) bool { return t.ids[i] < t.ids[j] }) {
		panic(fmt.Sprintf("storage: table %d component set is not canonical: %v", id, t.ids))
	}
	return t
}

func (t *Table) ID() types.TableID {
	return t.id
}

func (t *Table) Len() int {
	return len(t.entities)
}

func (t *Table) Components() []types.ComponentID {
	return t.ids
}

// Column returns the column storing the given component, if the table has
// one.
func (t *Table) Column(id types.ComponentID) (*Column, bool) {
	i := sort.Search(len(t.ids), func(i int) bool { return t.ids[i] >= id })
	if i < len(t.ids) && t.ids[i] == id {
		return t.columns[i], true
	}
	return nil, false
}

// Entity returns the owner of row.
func (t *Table) Entity(row types.Row) types.Entity {
	return t.entities[row]
}

// Entities returns the owning entity per row, in row order.
func (t *Table) Entities() []types.Entity {
	return t.entities
}

// PushRow appends one row across all columns and the entity list. values
// must produce a value for every declared column; a missing value is an
// internal-consistency violation, rows are never zero-filled implicitly.
func (t *Table) PushRow(
	e types.Entity,
	values func(types.ComponentID) (reflect.Value, bool),
	tick types.Tick,
) types.Row {
	row := types.Row(len(t.entities))
	for i, id := range t.ids {
		v, ok := values(id)
		if !ok {
			panic(fmt.Sprintf("storage: no value supplied for component %d in table %d", id, t.id))
		}
		if got := t.columns[i].Push(v, tick); got != row {
			panic(fmt.Sprintf("storage: table %d column %d length diverged from entity list", t.id, id))
		}
	}
	t.entities = append(t.entities, e)
	return row
}

// SwapRemoveRow removes row, filling the hole with the table's current
// last row. It reports which entity was moved into the vacated row so the
// caller can update that entity's stored location; there is nothing to
// report when the removed row was already last. When dropVals is false the
// caller has already moved or dropped the row's values.
func (t *Table) SwapRemoveRow(row types.Row, dropVals bool) (types.MovedEntity, bool) {
	last := len(t.entities) - 1
	if int(row) > last {
		panic(fmt.Sprintf("storage: row %d out of range in table %d (len %d)", row, t.id, last+1))
	}
	for _, c := range t.columns {
		c.swapRemove(row, dropVals)
	}
	if int(row) == last {
		t.entities = t.entities[:last]
		return types.MovedEntity{}, false
	}
	moved := t.entities[last]
	t.entities[row] = moved
	t.entities = t.entities[:last]
	return types.MovedEntity{Entity: moved, Row: row}, true
}
