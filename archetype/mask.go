package archetype

import (
	"fmt"

	"github.com/veldt-dev/veldt/types"
)

const (
	bitsPerWord = 64
	maskWords   = 4

	// MaxComponents caps how many component types a registry can carry.
	// The mask is the canonical shape key, so the cap is the mask width.
	MaxComponents = maskWords * bitsPerWord
)

// Mask is a fixed 256-bit component set. It is comparable, so it doubles
// as the shape -> archetype map key.
type Mask [maskWords]uint64

func maskOf(ids []types.ComponentID) Mask {
	var m Mask
	for _, id := range ids {
		m.Set(id)
	}
	return m
}

func (m *Mask) Set(id types.ComponentID) {
	if id < 0 || id >= MaxComponents {
		panic(fmt.Sprintf("archetype: component id %d out of mask range [0, %d)", id, MaxComponents))
	}
	m[id/bitsPerWord] |= 1 << (uint(id) % bitsPerWord)
}

func (m *Mask) Unset(id types.ComponentID) {
	if id < 0 || id >= MaxComponents {
		return
	}
	m[id/bitsPerWord] &^= 1 << (uint(id) % bitsPerWord)
}

func (m Mask) Has(id types.ComponentID) bool {
	if id < 0 || id >= MaxComponents {
		return false
	}
	return m[id/bitsPerWord]&(1<<(uint(id)%bitsPerWord)) != 0
}

// Contains reports whether every bit of sub is set in m.
func (m Mask) Contains(sub Mask) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

// Intersects reports whether m and other share any bit.
func (m Mask) Intersects(other Mask) bool {
	return m[0]&other[0] != 0 ||
		m[1]&other[1] != 0 ||
		m[2]&other[2] != 0 ||
		m[3]&other[3] != 0
}
