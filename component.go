package veldt

import (
	"reflect"

	"github.com/veldt-dev/veldt/component"
	"github.com/veldt-dev/veldt/types"
)

// RegisterComponent registers T with the world and returns its stable id.
// Registration is idempotent per concrete type; re-registering returns the
// id already assigned. Components default to dense storage, use
// component.WithSparseStorage to opt into the sparse map.
func RegisterComponent[T types.Component](w *World, opts ...component.Option[T]) (types.ComponentID, error) {
	meta, err := component.NewComponentMetadata[T](opts...)
	if err != nil {
		return types.NoComponent, err
	}
	meta, err = w.registry.RegisterComponent(meta)
	if err != nil {
		return types.NoComponent, err
	}
	return meta.ID(), nil
}

// Get returns a pointer to the entity's T. The pointer aliases live
// storage; it is invalidated by any structural change. Absence (dead
// entity, stale generation, component not attached) reports false.
func Get[T types.Component](w *World, e types.Entity) (*T, bool) {
	return fetch[T](w, e, false)
}

// GetMut is Get plus a change record: the component's changed tick is set
// to the current tick before the pointer is returned.
func GetMut[T types.Component](w *World, e types.Entity) (*T, bool) {
	return fetch[T](w, e, true)
}

func fetch[T types.Component](w *World, e types.Entity, markChanged bool) (*T, bool) {
	loc, ok := w.allocator.Resolve(e)
	if !ok {
		return nil, false
	}
	meta, ok := w.registry.ComponentByType(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return nil, false
	}

	if meta.Kind() == types.StorageSparse {
		m, ok := w.store.MapByID(meta.ID())
		if !ok {
			return nil, false
		}
		p, ok := m.Get(e)
		if !ok {
			return nil, false
		}
		if markChanged {
			m.MarkChanged(e, w.tick)
		}
		return (*T)(p), true
	}

	if loc.Kind != types.StorageDense {
		return nil, false
	}
	col, ok := w.store.Table(loc.Table).Column(meta.ID())
	if !ok {
		return nil, false
	}
	if markChanged {
		col.MarkChanged(loc.Row, w.tick)
	}
	return (*T)(col.Ptr(loc.Row)), true
}

// Remove detaches T from the entity and returns the detached value.
// Absence of the entity or the component reports false, not an error.
func Remove[T types.Component](w *World, e types.Entity) (T, bool) {
	var zero T
	meta, ok := w.registry.ComponentByType(reflect.TypeOf(zero))
	if !ok {
		return zero, false
	}
	v, ok := w.removeComponent(e, meta)
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// Has reports whether the entity currently carries T.
func Has[T types.Component](w *World, e types.Entity) bool {
	_, ok := Get[T](w, e)
	return ok
}
