package filter

import (
	"github.com/veldt-dev/veldt/types"
)

// ComponentFilter is a filter that filters entities based on their components.
type ComponentFilter interface {
	// MatchesComponents returns true if the entity matches the filter.
	MatchesComponents(components []types.Component) bool
}

// RowProbe reports change information for one entity during iteration.
type RowProbe interface {
	// Components returns the components of the entity's archetype.
	Components() []types.Component
	// LastRun returns the tick of the observing query's previous run.
	LastRun() types.Tick
	// ChangedSince returns true if the entity's copy of the component was
	// written at or after the given tick.
	ChangedSince(component types.Component, since types.Tick) bool
}

// RowFilter is implemented by filters that also narrow results per entity,
// not just per archetype. Filters without row conditions need not
// implement it; iteration treats them as always matching.
type RowFilter interface {
	MatchesRow(probe RowProbe) bool
}

// ComponentWrapper wraps a Component type for filtering purposes.
type ComponentWrapper struct {
	Component types.Component
}

// Component returns a ComponentWrapper for the given component type T.
// This function is intentionally designed to return an unexported type
// as ComponentWrapper should not be used directly.
func Component[T types.Component]() ComponentWrapper {
	var x T
	return ComponentWrapper{
		Component: x,
	}
}

func unwrap(wrapped []ComponentWrapper) []types.Component {
	components := make([]types.Component, 0, len(wrapped))
	for _, w := range wrapped {
		components = append(components, w.Component)
	}
	return components
}

// matchesRow applies the row condition of a sub-filter, treating filters
// without one as a match.
func matchesRow(f ComponentFilter, probe RowProbe) bool {
	rf, ok := f.(RowFilter)
	if !ok {
		return true
	}
	return rf.MatchesRow(probe)
}
