package filter

import (
	"github.com/veldt-dev/veldt/types"
)

func Not(filter ComponentFilter) ComponentFilter {
	return &not{filter: filter}
}

type not struct {
	filter ComponentFilter
}

func (f *not) MatchesComponents(components []types.Component) bool {
	return !f.filter.MatchesComponents(components)
}

func (f *not) MatchesRow(probe RowProbe) bool {
	if _, ok := f.filter.(RowFilter); !ok {
		return true
	}
	return !matchesRow(f.filter, probe)
}
