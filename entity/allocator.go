// Package entity implements entity identity: index/generation allocation,
// free-list reuse, and lock-free remote reservation.
package entity

import (
	"sync/atomic"

	"github.com/rotisserie/eris"

	"github.com/veldt-dev/veldt/types"
)

var ErrIndexSpaceExhausted = eris.New("entity index space exhausted")

type slot struct {
	loc        types.Location
	generation uint32
	live       bool
}

// Allocator owns the entity table: the current generation and location of
// every index ever issued, plus the free list of recycled indices.
//
// All methods require single-owner access, with one exception: fresh-index
// reservation through Remote is safe from any goroutine. The fresh counter
// is disjoint from the free list, so remote reservation never contends
// with despawn/reuse, which stays confined to the owner.
type Allocator struct {
	slots []slot
	free  []uint32
	// Next never-used index. Kept 64-bit so exhaustion of the 32-bit
	// index space is detected instead of wrapping into live indices.
	fresh atomic.Uint64
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate returns an entity handle that aliases no previously issued
// handle: either a recycled index under a bumped generation, or a fresh
// index. Recycled indices are preferred.
func (a *Allocator) Allocate() (types.Entity, error) {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.live = true
		return types.Entity{Index: idx, Generation: s.generation}, nil
	}

	idx := a.fresh.Add(1) - 1
	if idx >= uint64(types.InvalidIndex) {
		return types.Nil, eris.Wrap(ErrIndexSpaceExhausted, "")
	}
	a.materialize(uint32(idx))
	a.slots[idx].live = true
	return types.Entity{Index: uint32(idx), Generation: a.slots[idx].generation}, nil
}

// Free returns the entity's index to the free list and bumps its
// generation, invalidating every handle issued for the old generation.
// Freeing a dead or stale handle is not an error; it reports false.
func (a *Allocator) Free(e types.Entity) bool {
	if !a.Alive(e) {
		return false
	}
	s := &a.slots[e.Index]
	s.generation++
	s.live = false
	s.loc = types.Location{}
	a.free = append(a.free, e.Index)
	return true
}

// Alive reports whether e refers to a live entity under its stored
// generation.
func (a *Allocator) Alive(e types.Entity) bool {
	if int(e.Index) >= len(a.slots) {
		return false
	}
	s := &a.slots[e.Index]
	return s.live && s.generation == e.Generation
}

// Resolve returns the storage location of a live entity. A mismatched
// generation resolves to nothing; this is the sole defense against a
// recycled index being read through a stale handle.
func (a *Allocator) Resolve(e types.Entity) (types.Location, bool) {
	if !a.Alive(e) {
		return types.Location{}, false
	}
	return a.slots[e.Index].loc, true
}

// SetLocation records where a live entity's data now lives. Calling it for
// a dead or stale handle is an internal-consistency violation.
func (a *Allocator) SetLocation(e types.Entity, loc types.Location) {
	if !a.Alive(e) {
		panic("entity: SetLocation on dead entity " + e.String())
	}
	a.slots[e.Index].loc = loc
}

// CommitReserved makes a remotely reserved entity visible as a live entity
// at the given location. Must be called from the owner at a
// synchronization point; until then the reservation resolves to nothing.
func (a *Allocator) CommitReserved(e types.Entity, loc types.Location) error {
	a.materialize(e.Index)
	s := &a.slots[e.Index]
	if s.live {
		return eris.Errorf("reserved entity %s is already live", e)
	}
	if s.generation != e.Generation {
		return eris.Errorf("reserved entity %s was recycled before commit", e)
	}
	s.live = true
	s.loc = loc
	return nil
}

// Remote returns a handle for reserving entity indices without owner
// access. Reservations draw from the atomic fresh counter only; they never
// touch the free list.
func (a *Allocator) Remote() *RemoteAllocator {
	return &RemoteAllocator{fresh: &a.fresh}
}

// materialize grows the slot table so that idx is addressable. New slots
// start at generation 1 and dead, covering indices reserved remotely but
// not yet committed.
func (a *Allocator) materialize(idx uint32) {
	for int(idx) >= len(a.slots) {
		a.slots = append(a.slots, slot{generation: 1})
	}
}

// RemoteAllocator reserves entity identities from outside the single-owner
// context, e.g. from parallel work that records deferred spawns. It is
// safe for concurrent use.
type RemoteAllocator struct {
	fresh *atomic.Uint64
}

// Reserve returns a fresh, never-before-live entity handle. The entity is
// invisible to queries and lookups until the owner commits it.
func (r *RemoteAllocator) Reserve() (types.Entity, error) {
	idx := r.fresh.Add(1) - 1
	if idx >= uint64(types.InvalidIndex) {
		return types.Nil, eris.Wrap(ErrIndexSpaceExhausted, "")
	}
	return types.Entity{Index: uint32(idx), Generation: 1}, nil
}
