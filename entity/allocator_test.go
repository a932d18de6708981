package entity_test

import (
	"sync"
	"testing"

	"github.com/veldt-dev/veldt/assert"
	"github.com/veldt-dev/veldt/entity"
	"github.com/veldt-dev/veldt/types"
)

func TestAllocatePrefersRecycledIndices(t *testing.T) {
	a := entity.NewAllocator()

	first, err := a.Allocate()
	assert.NilError(t, err)
	second, err := a.Allocate()
	assert.NilError(t, err)
	assert.NotEqual(t, first.Index, second.Index)

	assert.True(t, a.Free(first))
	third, err := a.Allocate()
	assert.NilError(t, err)
	assert.Equal(t, first.Index, third.Index)
	assert.NotEqual(t, first.Generation, third.Generation)
}

func TestStaleHandleNeverResolvesAfterReuse(t *testing.T) {
	a := entity.NewAllocator()

	stale, err := a.Allocate()
	assert.NilError(t, err)
	a.SetLocation(stale, types.Location{Arch: 1, Table: 0, Row: 0, Kind: types.StorageDense})
	assert.True(t, a.Free(stale))

	reused, err := a.Allocate()
	assert.NilError(t, err)
	assert.Equal(t, stale.Index, reused.Index)

	_, ok := a.Resolve(stale)
	assert.False(t, ok)
	assert.False(t, a.Alive(stale))
	_, ok = a.Resolve(reused)
	assert.True(t, ok)
}

func TestFreeIsIdempotent(t *testing.T) {
	a := entity.NewAllocator()

	e, err := a.Allocate()
	assert.NilError(t, err)
	assert.True(t, a.Free(e))
	assert.False(t, a.Free(e))

	assert.False(t, a.Free(types.Entity{Index: 999, Generation: 1}))
}

func TestRemoteReservationIsDisjointFromFreeList(t *testing.T) {
	a := entity.NewAllocator()

	e, err := a.Allocate()
	assert.NilError(t, err)
	assert.True(t, a.Free(e))

	remote := a.Remote()
	reserved, err := remote.Reserve()
	assert.NilError(t, err)
	assert.NotEqual(t, e.Index, reserved.Index)

	// Reserved identities stay invisible until committed.
	assert.False(t, a.Alive(reserved))
	_, ok := a.Resolve(reserved)
	assert.False(t, ok)

	loc := types.Location{Arch: 0, Table: types.NoTable, Row: 0, Kind: types.StorageSparse}
	assert.NilError(t, a.CommitReserved(reserved, loc))
	assert.True(t, a.Alive(reserved))
	got, ok := a.Resolve(reserved)
	assert.True(t, ok)
	assert.Equal(t, loc, got)

	assert.ErrorContains(t, a.CommitReserved(reserved, loc), "already live")
}

func TestConcurrentReservationsAreUnique(t *testing.T) {
	a := entity.NewAllocator()
	remote := a.Remote()

	const workers = 8
	const perWorker = 100
	results := make([][]types.Entity, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				e, err := remote.Reserve()
				if err != nil {
					return
				}
				results[i] = append(results[i], e)
			}
		}(i)
	}
	wg.Wait()

	seen := map[uint32]bool{}
	for _, rs := range results {
		assert.Len(t, rs, perWorker)
		for _, e := range rs {
			assert.False(t, seen[e.Index], "index %d reserved twice", e.Index)
			seen[e.Index] = true
		}
	}
}
