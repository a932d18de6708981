// Package storage implements the two storage engines behind a world:
// dense columnar tables (one per archetype) and sparse per-component maps.
package storage

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/veldt-dev/veldt/types"
)

// Column is a type-erased growable buffer holding one component type for
// every row of a table (or the dense half of a sparse map). The backing
// array is allocated through reflect with the component's real type, so
// values keep their normal GC semantics; the capability pair resolved at
// registration handles drop and clone where the type needs them.
//
// Reads on the hot path go through Ptr, plain pointer arithmetic off the
// column base. Mutation goes through typed reflect assignment, which is
// valid for every component type; a raw byte copy would only be legal for
// bitwise-movable, non-owning types.
type Column struct {
	comp  types.ComponentID
	typ   reflect.Type
	size  uintptr
	caps  types.Capabilities
	data  reflect.Value // slice of typ, len == cap
	base  unsafe.Pointer
	len   int
	ticks []types.Tick // changed tick per row
}

func newColumn(meta types.ComponentMetadata, capacity int) *Column {
	if capacity < 1 {
		capacity = 1
	}
	data := reflect.MakeSlice(reflect.SliceOf(meta.Type()), capacity, capacity)
	return &Column{
		comp: meta.ID(),
		typ:  meta.Type(),
		size: meta.Layout().Size,
		caps: meta.Capabilities(),
		data: data,
		base: data.UnsafePointer(),
	}
}

func (c *Column) Component() types.ComponentID {
	return c.comp
}

func (c *Column) Len() int {
	return c.len
}

// Ptr returns the address of the value at row. The pointer is only valid
// until the next structural change to the column.
func (c *Column) Ptr(row types.Row) unsafe.Pointer {
	return unsafe.Add(c.base, uintptr(row)*c.size)
}

// Value returns the addressable reflect value at row.
func (c *Column) Value(row types.Row) reflect.Value {
	return c.data.Index(int(row))
}

// ChangedTick returns the tick at which row was last written.
func (c *Column) ChangedTick(row types.Row) types.Tick {
	return c.ticks[row]
}

// MarkChanged records a write to row at the given tick.
func (c *Column) MarkChanged(row types.Row, tick types.Tick) {
	c.ticks[row] = tick
}

// Push appends v and returns its row.
func (c *Column) Push(v reflect.Value, tick types.Tick) types.Row {
	if v.Type() != c.typ {
		panic(fmt.Sprintf("storage: column holds %v, cannot push %v", c.typ, v.Type()))
	}
	c.grow(1)
	c.data.Index(c.len).Set(v)
	c.ticks = append(c.ticks, tick)
	c.len++
	return types.Row(c.len - 1)
}

// Set overwrites the value at row, dropping the old value first.
func (c *Column) Set(row types.Row, v reflect.Value, tick types.Tick) {
	if v.Type() != c.typ {
		panic(fmt.Sprintf("storage: column holds %v, cannot set %v", c.typ, v.Type()))
	}
	if c.caps.Drop != nil {
		c.caps.Drop(c.Ptr(row))
	}
	c.data.Index(int(row)).Set(v)
	c.ticks[row] = tick
}

// DropValue invokes the drop capability for the value at row without
// removing the row. Used during migration for columns that exist only in
// the source table; the row itself is reclaimed by the following
// swap-remove.
func (c *Column) DropValue(row types.Row) {
	if c.caps.Drop != nil {
		c.caps.Drop(c.Ptr(row))
	}
}

// swapRemove removes row by moving the current last value into its place.
// When dropVal is false the caller has already moved or dropped the value.
func (c *Column) swapRemove(row types.Row, dropVal bool) {
	last := c.len - 1
	if dropVal {
		c.DropValue(row)
	}
	if int(row) != last {
		c.data.Index(int(row)).Set(c.data.Index(last))
		c.ticks[row] = c.ticks[last]
	}
	// Clear the vacated slot so it holds no stale references.
	c.data.Index(last).SetZero()
	c.ticks = c.ticks[:last]
	c.len--
}

func (c *Column) grow(n int) {
	need := c.len + n
	capacity := c.data.Len()
	if need <= capacity {
		return
	}
	for capacity < need {
		capacity *= 2
	}
	next := reflect.MakeSlice(c.data.Type(), capacity, capacity)
	reflect.Copy(next, c.data)
	c.data = next
	c.base = next.UnsafePointer()
}
