package storage

import (
	"fmt"
	"sort"

	"github.com/veldt-dev/veldt/types"
)

// DefaultColumnCapacity is the initial per-column allocation for new
// tables and maps.
const DefaultColumnCapacity = 16

// Storage owns every table and sparse map of one world. Tables are bound
// to archetypes at archetype creation and live for the lifetime of the
// storage; maps are created lazily on first use of a sparse component.
type Storage struct {
	tables   []*Table
	maps     map[types.ComponentID]*Map
	capacity int
}

func NewStorage(columnCapacity int) *Storage {
	if columnCapacity <= 0 {
		columnCapacity = DefaultColumnCapacity
	}
	return &Storage{
		maps:     make(map[types.ComponentID]*Map),
		capacity: columnCapacity,
	}
}

// NewTable allocates a table for the given dense component set and
// returns it. metas must be in canonical (sorted by id) order.
func (s *Storage) NewTable(metas []types.ComponentMetadata) *Table {
	t := newTable(types.TableID(len(s.tables)), metas, s.capacity)
	s.tables = append(s.tables, t)
	return t
}

// Table returns the table with the given id. An unknown id is an
// internal-consistency violation: table ids only come from NewTable.
func (s *Storage) Table(id types.TableID) *Table {
	if id < 0 || int(id) >= len(s.tables) {
		panic(fmt.Sprintf("storage: no table with id %d", id))
	}
	return s.tables[id]
}

func (s *Storage) TableCount() int {
	return len(s.tables)
}

// Map returns the sparse map for the given component, creating it on
// first use.
func (s *Storage) Map(meta types.ComponentMetadata) *Map {
	if m, ok := s.maps[meta.ID()]; ok {
		return m
	}
	m := newMap(meta, s.capacity)
	s.maps[meta.ID()] = m
	return m
}

// MapByID returns the sparse map for a component id if one has been
// created.
func (s *Storage) MapByID(id types.ComponentID) (*Map, bool) {
	m, ok := s.maps[id]
	return m, ok
}

// Maps returns every sparse map created so far, in component id order.
func (s *Storage) Maps() []*Map {
	ids := make([]types.ComponentID, 0, len(s.maps))
	for id := range s.maps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*Map, len(ids))
	for i, id := range ids {
		out[i] = s.maps[id]
	}
	return out
}
