package query

import (
	"github.com/rotisserie/eris"

	"github.com/veldt-dev/veldt/archetype"
	"github.com/veldt-dev/veldt/component"
	"github.com/veldt-dev/veldt/filter"
	"github.com/veldt-dev/veldt/storage"
	"github.com/veldt-dev/veldt/types"
)

var ErrNoMatch = eris.New("no entity matches the query")

// Reader is the view of a world a query needs: the registered components,
// the archetypes, the column storage, and the current tick.
type Reader interface {
	Components() *component.Registry
	Archetypes() *archetype.Registry
	Store() *storage.Storage
	CurrentTick() types.Tick
}

// CallbackFn receives a cursor positioned on one matched entity. Return
// false to stop the iteration.
type CallbackFn func(*Iter) bool

type cache struct {
	archetypes []types.ArchetypeID
	seen       int
}

// Query represents a search for entities.
// It is used to filter entities based on their components.
// It contains a cache that is used to avoid re-evaluating the query,
// so it is not recommended to create a new query every time you want
// to filter entities with the same filter.
type Query struct {
	archMatches *cache
	filter      filter.ComponentFilter
	reader      Reader
	lastRun     types.Tick
}

// New creates a new query over the given filter.
func New(reader Reader, f filter.ComponentFilter) *Query {
	return &Query{
		archMatches: &cache{},
		filter:      f,
		reader:      reader,
	}
}

// Each iterates over all entities that match the query, in archetype
// creation order and row order within each archetype. The cursor passed
// to the callback is only valid for that call.
func (q *Query) Each(callback CallbackFn) error {
	defer q.markRun()

	rowFilter, filtersRows := q.filter.(filter.RowFilter)
	it := Iter{query: q}
	for _, archID := range q.evaluateQuery() {
		it.enter(archID)
		for row := 0; row < len(it.entities); row++ {
			it.row = types.Row(row)
			if filtersRows && !rowFilter.MatchesRow(&it) {
				continue
			}
			if !callback(&it) {
				return nil
			}
		}
	}
	return nil
}

// Count returns the number of entities that match the query.
func (q *Query) Count() (int, error) {
	ret := 0
	err := q.Each(func(*Iter) bool {
		ret++
		return true
	})
	return ret, err
}

// First returns the first entity that matches the query.
func (q *Query) First() (types.Entity, error) {
	found := types.Nil
	err := q.Each(func(it *Iter) bool {
		found = it.Entity()
		return false
	})
	if err != nil {
		return types.Nil, err
	}
	if found.IsNil() {
		return types.Nil, eris.Wrap(ErrNoMatch, "")
	}
	return found, nil
}

func (q *Query) MustFirst() types.Entity {
	e, err := q.First()
	if err != nil {
		panic("no entity matches the query")
	}
	return e
}

// Collect returns the ids of all entities that match the query.
func (q *Query) Collect() ([]types.Entity, error) {
	var out []types.Entity
	err := q.Each(func(it *Iter) bool {
		out = append(out, it.Entity())
		return true
	})
	return out, err
}

func (q *Query) evaluateQuery() []types.ArchetypeID {
	cache := q.archMatches
	arches := q.reader.Archetypes()
	cache.archetypes = append(cache.archetypes, arches.SearchFrom(q.filter, cache.seen)...)
	cache.seen = arches.Count()
	return cache.archetypes
}

func (q *Query) markRun() {
	q.lastRun = q.reader.CurrentTick()
}
