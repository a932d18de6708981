package filter

import (
	"github.com/veldt-dev/veldt/types"
)

type changed struct {
	component types.Component
	since     func() types.Tick
}

// Changed matches entities whose copy of the component was written at or
// after the observing query's previous run. The archetype must also
// contain the component.
func Changed(component ComponentWrapper) ComponentFilter {
	return &changed{component: component.Component}
}

// ChangedSince is Changed with an explicit tick source in place of the
// query's previous run. The callback is read once per entity probed.
func ChangedSince(component ComponentWrapper, since func() types.Tick) ComponentFilter {
	return &changed{component: component.Component, since: since}
}

func (f *changed) MatchesComponents(components []types.Component) bool {
	return MatchComponent(components, f.component)
}

func (f *changed) MatchesRow(probe RowProbe) bool {
	since := probe.LastRun()
	if f.since != nil {
		since = f.since()
	}
	return probe.ChangedSince(f.component, since)
}
