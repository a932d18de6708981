package filter

import (
	"github.com/veldt-dev/veldt/types"
)

type or struct {
	filters []ComponentFilter
}

func Or(filters ...ComponentFilter) ComponentFilter {
	return &or{filters: filters}
}

func (f *or) MatchesComponents(components []types.Component) bool {
	for _, filter := range f.filters {
		if filter.MatchesComponents(components) {
			return true
		}
	}
	return false
}

func (f *or) MatchesRow(probe RowProbe) bool {
	for _, filter := range f.filters {
		if filter.MatchesComponents(probe.Components()) && matchesRow(filter, probe) {
			return true
		}
	}
	return false
}
