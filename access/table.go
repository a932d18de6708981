package access

import (
	"github.com/rotisserie/eris"
)

var ErrDuplicateSystem = eris.New("system already has a registered claim set")

// Table holds the claim set declared by each system at registration. An
// external scheduler queries it to build an execution plan; the table
// itself never schedules anything.
type Table struct {
	claims map[string]*ClaimSet
	order  []string
}

func NewTable() *Table {
	return &Table{claims: make(map[string]*ClaimSet)}
}

// Register records a system's claim set. Each system declares exactly
// once.
func (t *Table) Register(system string, claims *ClaimSet) error {
	if _, ok := t.claims[system]; ok {
		return eris.Wrapf(ErrDuplicateSystem, "system %q", system)
	}
	t.claims[system] = claims
	t.order = append(t.order, system)
	return nil
}

// Claims returns the claim set registered for the system.
func (t *Table) Claims(system string) (*ClaimSet, bool) {
	c, ok := t.claims[system]
	return c, ok
}

// Systems returns the registered system names in registration order.
func (t *Table) Systems() []string {
	return t.order
}

// ConflictsWith returns the registered systems whose claim sets conflict
// with the given one, in registration order.
func (t *Table) ConflictsWith(claims *ClaimSet) []string {
	var out []string
	for _, name := range t.order {
		if Conflicts(claims, t.claims[name]) {
			out = append(out, name)
		}
	}
	return out
}

// ConflictPairs returns every pair of registered systems that may not run
// concurrently. Pair order follows registration order.
func (t *Table) ConflictPairs() [][2]string {
	var out [][2]string
	for i, a := range t.order {
		for _, b := range t.order[i+1:] {
			if Conflicts(t.claims[a], t.claims[b]) {
				out = append(out, [2]string{a, b})
			}
		}
	}
	return out
}
