package veldt_test

import (
	"testing"

	veldt "github.com/veldt-dev/veldt"
	"github.com/veldt-dev/veldt/assert"
	"github.com/veldt-dev/veldt/filter"
	"github.com/veldt-dev/veldt/query"
	"github.com/veldt-dev/veldt/types"
)

func TestQueryCompleteness(t *testing.T) {
	w := newTestWorld(t)

	onlyPos, err := w.Spawn(Position{X: 1})
	assert.NilError(t, err)
	posAndVel, err := w.Spawn(Position{X: 2}, Velocity{})
	assert.NilError(t, err)
	_, err = w.Spawn(Velocity{DX: 3})
	assert.NilError(t, err)

	q := w.NewQuery(filter.Contains(filter.Component[Position]()))
	got, err := q.Collect()
	assert.NilError(t, err)

	// Archetype-creation order: the {position} archetype precedes
	// {position, velocity}; the velocity-only archetype never shows up.
	assert.DeepEqual(t, []types.Entity{onlyPos, posAndVel}, got)

	n, err := q.Count()
	assert.NilError(t, err)
	assert.Equal(t, 2, n)
}

func TestQuerySeesArchetypesCreatedAfterIt(t *testing.T) {
	w := newTestWorld(t)

	q := w.NewQuery(filter.Contains(filter.Component[Position]()))
	n, err := q.Count()
	assert.NilError(t, err)
	assert.Equal(t, 0, n)

	first, err := w.Spawn(Position{})
	assert.NilError(t, err)
	second, err := w.Spawn(Position{}, Velocity{})
	assert.NilError(t, err)

	got, err := q.Collect()
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.Entity{first, second}, got)
}

func TestQueryFetch(t *testing.T) {
	w := newTestWorld(t)

	_, err := w.Spawn(Position{X: 1}, Velocity{DX: 10})
	assert.NilError(t, err)
	_, err = w.Spawn(Position{X: 2}, Velocity{DX: 20})
	assert.NilError(t, err)

	q := w.NewQuery(filter.Contains(filter.Component[Position](), filter.Component[Velocity]()))
	err = q.Each(func(it *query.Iter) bool {
		pos, ok := query.FetchMut[Position](it)
		assert.True(t, ok)
		vel, ok := query.Fetch[Velocity](it)
		assert.True(t, ok)
		pos.X += vel.DX
		return true
	})
	assert.NilError(t, err)

	total := 0.0
	err = q.Each(func(it *query.Iter) bool {
		pos, _ := query.Fetch[Position](it)
		total += pos.X
		return true
	})
	assert.NilError(t, err)
	assert.Equal(t, 33.0, total)
}

func TestQueryFetchSparseIsOptional(t *testing.T) {
	w := newTestWorld(t)

	poisoned, err := w.Spawn(Position{X: 1}, Poisoned{TicksLeft: 2})
	assert.NilError(t, err)
	_, err = w.Spawn(Position{X: 2}, Poisoned{TicksLeft: 4})
	assert.NilError(t, err)

	// Detaching the sparse component leaves the entity in its archetype;
	// the per-entity fetch reports the momentary absence.
	_, ok := veldt.Remove[Poisoned](w, poisoned)
	assert.True(t, ok)

	q := w.NewQuery(filter.Contains(filter.Component[Position](), filter.Component[Poisoned]()))
	present := 0
	absent := 0
	err = q.Each(func(it *query.Iter) bool {
		if _, ok := query.Fetch[Poisoned](it); ok {
			present++
		} else {
			absent++
		}
		return true
	})
	assert.NilError(t, err)
	assert.Equal(t, 1, present)
	assert.Equal(t, 1, absent)
}

func TestQueryFirst(t *testing.T) {
	w := newTestWorld(t)

	q := w.NewQuery(filter.Contains(filter.Component[Position]()))
	_, err := q.First()
	assert.ErrorIs(t, err, query.ErrNoMatch)

	e, err := w.Spawn(Position{})
	assert.NilError(t, err)
	got, err := q.First()
	assert.NilError(t, err)
	assert.Equal(t, e, got)
	assert.Equal(t, e, q.MustFirst())
}

func TestChangedFilterTracksWrites(t *testing.T) {
	w := newTestWorld(t)

	e, err := w.Spawn(Position{X: 1})
	assert.NilError(t, err)

	q := w.NewQuery(filter.Changed(filter.Component[Position]()))

	// A query's first run sees everything as changed.
	n, err := q.Count()
	assert.NilError(t, err)
	assert.Equal(t, 1, n)

	// Once the query has run past the spawn write, an untouched
	// component stops matching. The run immediately after the flushes
	// still matches: a write at the same tick as the previous run is
	// conservatively treated as unseen.
	assert.NilError(t, w.Flush())
	assert.NilError(t, w.Flush())
	n, err = q.Count()
	assert.NilError(t, err)
	assert.Equal(t, 1, n)
	n, err = q.Count()
	assert.NilError(t, err)
	assert.Equal(t, 0, n)

	// A mutable fetch records a write at the current tick.
	pos, ok := veldt.GetMut[Position](w, e)
	assert.True(t, ok)
	pos.X = 99
	n, err = q.Count()
	assert.NilError(t, err)
	assert.Equal(t, 1, n)
}

func TestParseQuery(t *testing.T) {
	w := newTestWorld(t)

	a, err := w.Spawn(Position{X: 1})
	assert.NilError(t, err)
	_, err = w.Spawn(Position{X: 2}, Velocity{})
	assert.NilError(t, err)

	q, err := w.ParseQuery("CONTAINS(position) & WITHOUT(velocity)")
	assert.NilError(t, err)
	got, err := q.Collect()
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.Entity{a}, got)

	_, err = w.ParseQuery("CONTAINS(nope)")
	assert.Assert(t, err != nil)
}

func TestIterationOrderIsRowOrderWithinArchetype(t *testing.T) {
	w := newTestWorld(t)

	entities, err := w.SpawnMany(5, func(i int) []types.Component {
		return []types.Component{Position{X: float64(i)}}
	})
	assert.NilError(t, err)

	var got []types.Entity
	q := w.NewQuery(filter.Contains(filter.Component[Position]()))
	err = q.Each(func(it *query.Iter) bool {
		got = append(got, it.Entity())
		return true
	})
	assert.NilError(t, err)
	assert.DeepEqual(t, entities, got)
}

func TestEachStopsWhenCallbackReturnsFalse(t *testing.T) {
	w := newTestWorld(t)

	_, err := w.SpawnMany(5, func(int) []types.Component {
		return []types.Component{Position{}}
	})
	assert.NilError(t, err)

	visited := 0
	q := w.NewQuery(filter.Contains(filter.Component[Position]()))
	err = q.Each(func(*query.Iter) bool {
		visited++
		return visited < 2
	})
	assert.NilError(t, err)
	assert.Equal(t, 2, visited)
}

func TestRegisteredQueriesAreSharedByName(t *testing.T) {
	w := newTestWorld(t)

	q := w.NewQuery(filter.Contains(filter.Component[Position]()))
	assert.NilError(t, w.RegisterQuery("positions", q))
	assert.ErrorContains(t, w.RegisterQuery("positions", q), "already registered")

	_, err := w.Spawn(Position{X: 1})
	assert.NilError(t, err)

	byName, err := w.QueryByName("positions")
	assert.NilError(t, err)
	count, err := byName.Count()
	assert.NilError(t, err)
	assert.Equal(t, 1, count)

	_, err = w.QueryByName("velocities")
	assert.ErrorContains(t, err, "not registered")
	assert.DeepEqual(t, []string{"positions"}, w.GetRegisteredQueries())
}
