package access

import (
	"github.com/veldt-dev/veldt/types"
)

// idSet is a growable bitset over dense small-integer ids.
type idSet []uint64

func (s *idSet) set(id int) {
	word := id >> 6
	for word >= len(*s) {
		*s = append(*s, 0)
	}
	(*s)[word] |= 1 << (uint(id) & 63)
}

func (s idSet) has(id int) bool {
	word := id >> 6
	return word < len(s) && s[word]&(1<<(uint(id)&63)) != 0
}

func (s idSet) intersects(other idSet) bool {
	n := len(s)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if s[i]&other[i] != 0 {
			return true
		}
	}
	return false
}

// ClaimSet is the declared data footprint of one system: which component
// and resource ids it reads and writes, plus whether it must run on the
// designated single thread and whether it needs the whole world to
// itself. It carries no data access of its own; an external scheduler
// compares claim sets to decide what may run concurrently.
type ClaimSet struct {
	componentReads  idSet
	componentWrites idSet
	resourceReads   idSet
	resourceWrites  idSet
	mainThread      bool
	exclusive       bool
}

func NewClaimSet() *ClaimSet {
	return &ClaimSet{}
}

func (c *ClaimSet) ReadComponent(id types.ComponentID) *ClaimSet {
	c.componentReads.set(int(id))
	return c
}

func (c *ClaimSet) WriteComponent(id types.ComponentID) *ClaimSet {
	c.componentWrites.set(int(id))
	return c
}

func (c *ClaimSet) ReadResource(id types.ResourceID) *ClaimSet {
	c.resourceReads.set(int(id))
	return c
}

func (c *ClaimSet) WriteResource(id types.ResourceID) *ClaimSet {
	c.resourceWrites.set(int(id))
	return c
}

// RequireMainThread marks the system as only runnable on the designated
// single thread. It does not affect conflict detection.
func (c *ClaimSet) RequireMainThread() *ClaimSet {
	c.mainThread = true
	return c
}

// RequireExclusive marks the system as needing full exclusive access. An
// exclusive claim set conflicts with every other claim set.
func (c *ClaimSet) RequireExclusive() *ClaimSet {
	c.exclusive = true
	return c
}

func (c *ClaimSet) ReadsComponent(id types.ComponentID) bool {
	return c.componentReads.has(int(id))
}

func (c *ClaimSet) WritesComponent(id types.ComponentID) bool {
	return c.componentWrites.has(int(id))
}

func (c *ClaimSet) ReadsResource(id types.ResourceID) bool {
	return c.resourceReads.has(int(id))
}

func (c *ClaimSet) WritesResource(id types.ResourceID) bool {
	return c.resourceWrites.has(int(id))
}

func (c *ClaimSet) MainThread() bool {
	return c.mainThread
}

func (c *ClaimSet) Exclusive() bool {
	return c.exclusive
}

// Mode returns the access mode the claim set requires: FullMut when
// exclusive, DataMut when anything is claimed for writing, ReadOnly
// otherwise.
func (c *ClaimSet) Mode() Mode {
	if c.exclusive {
		return FullMut
	}
	for _, w := range c.componentWrites {
		if w != 0 {
			return DataMut
		}
	}
	for _, w := range c.resourceWrites {
		if w != 0 {
			return DataMut
		}
	}
	return ReadOnly
}

// Conflicts reports whether two claim sets may not be active at the same
// time: some id is claimed Write by one side while the other side claims
// it in either mode, or either side requires exclusive access. Disjoint
// ids and Read/Read overlaps never conflict.
func Conflicts(a, b *ClaimSet) bool {
	if a.exclusive || b.exclusive {
		return true
	}
	if a.componentWrites.intersects(b.componentWrites) ||
		a.componentWrites.intersects(b.componentReads) ||
		b.componentWrites.intersects(a.componentReads) {
		return true
	}
	return a.resourceWrites.intersects(b.resourceWrites) ||
		a.resourceWrites.intersects(b.resourceReads) ||
		b.resourceWrites.intersects(a.resourceReads)
}
