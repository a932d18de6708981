package query

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Manager holds queries under stable names so callers can build a query
// once and reuse it by name, keeping its archetype cache warm across
// runs. There can only be one query with a given name.
type Manager struct {
	registered map[string]*Query
}

func NewManager() *Manager {
	return &Manager{
		registered: make(map[string]*Query),
	}
}

func (m *Manager) Register(name string, q *Query) error {
	if _, ok := m.registered[name]; ok {
		return eris.Errorf("query %q is already registered", name)
	}
	m.registered[name] = q
	return nil
}

// ByName returns the query registered under name.
func (m *Manager) ByName(name string) (*Query, error) {
	q, ok := m.registered[name]
	if !ok {
		return nil, eris.Errorf("query %q is not registered", name)
	}
	return q, nil
}

// Names returns the registered query names in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.registered))
	for name := range m.registered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
