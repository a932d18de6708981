package cql_test

import (
	"testing"

	"github.com/rotisserie/eris"

	"github.com/veldt-dev/veldt/assert"
	"github.com/veldt-dev/veldt/component"
	"github.com/veldt-dev/veldt/cql"
	"github.com/veldt-dev/veldt/filter"
	"github.com/veldt-dev/veldt/types"
)

type Position struct {
	X, Y float64
}

func (Position) Name() string { return "position" }

type Health struct {
	Current int
}

func (Health) Name() string { return "health" }

func testResolver(t *testing.T) cql.Resolver {
	t.Helper()
	registry := component.NewRegistry()
	for _, register := range []func() (types.ComponentMetadata, error){
		func() (types.ComponentMetadata, error) { return component.NewComponentMetadata[Position]() },
		func() (types.ComponentMetadata, error) { return component.NewComponentMetadata[Health]() },
	} {
		meta, err := register()
		assert.NilError(t, err)
		_, err = registry.RegisterComponent(meta)
		assert.NilError(t, err)
	}
	return func(name string) (types.ComponentMetadata, error) {
		return registry.ComponentByName(name)
	}
}

func TestParseContains(t *testing.T) {
	f, err := cql.Parse("CONTAINS(position)", testResolver(t))
	assert.NilError(t, err)
	assert.True(t, f.MatchesComponents([]types.Component{Position{}, Health{}}))
	assert.False(t, f.MatchesComponents([]types.Component{Health{}}))
}

func TestParseExact(t *testing.T) {
	f, err := cql.Parse("EXACT(position, health)", testResolver(t))
	assert.NilError(t, err)
	assert.True(t, f.MatchesComponents([]types.Component{Position{}, Health{}}))
	assert.False(t, f.MatchesComponents([]types.Component{Position{}}))
}

func TestParseOperatorsAndGrouping(t *testing.T) {
	f, err := cql.Parse("!(CONTAINS(position) & CONTAINS(health)) | EXACT(health)", testResolver(t))
	assert.NilError(t, err)
	// {position, health} fails the negation and is not exactly {health}.
	assert.False(t, f.MatchesComponents([]types.Component{Position{}, Health{}}))
	assert.True(t, f.MatchesComponents([]types.Component{Position{}}))
	assert.True(t, f.MatchesComponents([]types.Component{Health{}}))
}

func TestParseWithout(t *testing.T) {
	f, err := cql.Parse("CONTAINS(position) & WITHOUT(health)", testResolver(t))
	assert.NilError(t, err)
	assert.True(t, f.MatchesComponents([]types.Component{Position{}}))
	assert.False(t, f.MatchesComponents([]types.Component{Position{}, Health{}}))
}

func TestParseChanged(t *testing.T) {
	f, err := cql.Parse("CHANGED(position)", testResolver(t))
	assert.NilError(t, err)
	assert.True(t, f.MatchesComponents([]types.Component{Position{}}))
	assert.False(t, f.MatchesComponents([]types.Component{Health{}}))
	_, isRowFilter := f.(filter.RowFilter)
	assert.True(t, isRowFilter)
}

func TestParseAll(t *testing.T) {
	f, err := cql.Parse("ALL()", testResolver(t))
	assert.NilError(t, err)
	assert.True(t, f.MatchesComponents(nil))
}

func TestParseRejectsUnknownComponent(t *testing.T) {
	_, err := cql.Parse("CONTAINS(mana)", testResolver(t))
	assert.ErrorIs(t, err, component.ErrComponentNotRegistered)
}

func TestParseRejectsBadSyntax(t *testing.T) {
	resolve := testResolver(t)
	for _, text := range []string{
		"",
		"CONTAINS()",
		"CONTAINS(position",
		"CONTAINS(position) &",
		"& CONTAINS(position)",
	} {
		_, err := cql.Parse(text, resolve)
		assert.Assert(t, err != nil, "expected %q to fail", text)
	}
}

func TestParseErrorsAreWrapped(t *testing.T) {
	_, err := cql.Parse("CONTAINS(position", testResolver(t))
	assert.True(t, len(eris.ToString(err, true)) > 0)
}
