package filter

import (
	"github.com/veldt-dev/veldt/types"
)

type and struct {
	filters []ComponentFilter
}

func And(filters ...ComponentFilter) ComponentFilter {
	return &and{filters: filters}
}

func (f *and) MatchesComponents(components []types.Component) bool {
	for _, filter := range f.filters {
		if !filter.MatchesComponents(components) {
			return false
		}
	}
	return true
}

func (f *and) MatchesRow(probe RowProbe) bool {
	for _, filter := range f.filters {
		if !matchesRow(filter, probe) {
			return false
		}
	}
	return true
}
