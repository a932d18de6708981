package types

// ComponentID is a dense small integer assigned at component registration.
// It is stable for the lifetime of a registry and is usable as an array or
// bitset index.
type ComponentID int

// NoComponent is the absent value for optional ComponentID parameters.
const NoComponent = ComponentID(-1)

// ResourceID numbers world-scoped singleton resources. It is a separate id
// space from ComponentID.
type ResourceID int

// ArchetypeID identifies one storage shape. Archetype ids are assigned in
// creation order and are never reused or destroyed.
type ArchetypeID int

// TableID identifies the dense table owned by an archetype.
type TableID int

// NoTable marks archetypes whose component set is entirely sparse.
const NoTable = TableID(-1)

// Row is a position within a table, an archetype entity list, or a sparse
// map's dense array, depending on context.
type Row int

// Tick is the world's change-detection clock. It only orders writes
// relative to other writes; it is not wall time.
type Tick uint32

// StorageKind selects where a component's values live: densely in the
// archetype table, or in a standalone sparse map.
type StorageKind uint8

const (
	StorageDense StorageKind = iota
	StorageSparse
)

func (k StorageKind) String() string {
	if k == StorageSparse {
		return "sparse"
	}
	return "dense"
}

// Location records where a live entity's data can be found. Kind is the
// discriminant: for StorageDense entities Table/Row address a table row,
// for sparse-only entities Row is the slot in the archetype entity list
// and Table is NoTable. Exactly one interpretation is valid at a time.
type Location struct {
	Arch  ArchetypeID
	Table TableID
	Row   Row
	Kind  StorageKind
}

// MovedEntity reports the side effect of a swap-remove: Entity now lives
// at Row in the storage the removal happened in. The entity table must be
// updated with this new position or lookups for Entity will corrupt.
type MovedEntity struct {
	Entity Entity
	Row    Row
}
