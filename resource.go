package veldt

import (
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/veldt-dev/veldt/component"
	"github.com/veldt-dev/veldt/types"
)

// RegisterResource registers T as a singleton resource type and returns
// its id. Resource ids live in their own space, separate from component
// ids. Registration is idempotent per concrete type.
func RegisterResource[T types.Component](w *World) (types.ResourceID, error) {
	meta, err := component.NewResourceMetadata[T]()
	if err != nil {
		return types.ResourceID(-1), err
	}
	meta, err = w.registry.RegisterResource(meta)
	if err != nil {
		return types.ResourceID(-1), err
	}
	return meta.ID(), nil
}

// SetResource stores the world's single T, replacing any previous value.
func SetResource[T types.Component](w *World, value T) error {
	meta, ok := w.registry.ResourceByType(reflect.TypeOf(value))
	if !ok {
		return eris.Wrap(component.ErrResourceNotRegistered, reflect.TypeOf(value).String())
	}
	w.resources[meta.ID()] = reflect.ValueOf(&value)
	return nil
}

// GetResource returns a pointer to the world's T, or false if none is set.
func GetResource[T types.Component](w *World) (*T, bool) {
	var zero T
	meta, ok := w.registry.ResourceByType(reflect.TypeOf(zero))
	if !ok {
		return nil, false
	}
	v, ok := w.resources[meta.ID()]
	if !ok {
		return nil, false
	}
	return v.Interface().(*T), true
}

// RemoveResource takes the world's T out of the world and returns it.
// Absence reports false, not an error.
func RemoveResource[T types.Component](w *World) (T, bool) {
	var zero T
	meta, ok := w.registry.ResourceByType(reflect.TypeOf(zero))
	if !ok {
		return zero, false
	}
	v, ok := w.resources[meta.ID()]
	if !ok {
		return zero, false
	}
	delete(w.resources, meta.ID())
	return *v.Interface().(*T), true
}
