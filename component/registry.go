package component

import (
	"fmt"
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/veldt-dev/veldt/types"
)

var ErrComponentNotRegistered = eris.New("component not registered")
var ErrResourceNotRegistered = eris.New("resource not registered")

// Registry assigns dense, stable ids to component and resource types.
// Component ids and resource ids are separately numbered spaces, both
// starting from zero so they can index plain slices.
//
// Registration is idempotent per concrete Go type: registering the same
// type twice returns the id assigned the first time. Two different types
// claiming the same Name() is a fail-fast panic, since the name is the
// serialization identity and the layouts would silently diverge.
type Registry struct {
	componentsByName map[string]types.ComponentMetadata
	componentsByType map[reflect.Type]types.ComponentMetadata
	componentsByID   []types.ComponentMetadata

	resourcesByName map[string]types.ResourceMetadata
	resourcesByType map[reflect.Type]types.ResourceMetadata
	resourcesByID   []types.ResourceMetadata
}

func NewRegistry() *Registry {
	return &Registry{
		componentsByName: make(map[string]types.ComponentMetadata),
		componentsByType: make(map[reflect.Type]types.ComponentMetadata),
		resourcesByName:  make(map[string]types.ResourceMetadata),
		resourcesByType:  make(map[reflect.Type]types.ResourceMetadata),
	}
}

// RegisterComponent registers compMetadata and assigns its id. If the same
// concrete type was already registered, the previously stored metadata is
// returned unchanged.
func (r *Registry) RegisterComponent(compMetadata types.ComponentMetadata) (types.ComponentMetadata, error) {
	if existing, ok := r.componentsByType[compMetadata.Type()]; ok {
		return existing, nil
	}
	if existing, ok := r.componentsByName[compMetadata.Name()]; ok {
		panic(fmt.Sprintf(
			"component name %q is registered for type %v, cannot reuse it for type %v",
			compMetadata.Name(), existing.Type(), compMetadata.Type(),
		))
	}

	if err := compMetadata.SetID(types.ComponentID(len(r.componentsByID))); err != nil {
		return nil, err
	}
	r.componentsByID = append(r.componentsByID, compMetadata)
	r.componentsByName[compMetadata.Name()] = compMetadata
	r.componentsByType[compMetadata.Type()] = compMetadata
	return compMetadata, nil
}

// ComponentByID returns the metadata for an assigned component id.
func (r *Registry) ComponentByID(id types.ComponentID) (types.ComponentMetadata, bool) {
	if id < 0 || int(id) >= len(r.componentsByID) {
		return nil, false
	}
	return r.componentsByID[id], true
}

// ComponentByName returns the component metadata for the given component name.
func (r *Registry) ComponentByName(name string) (types.ComponentMetadata, error) {
	c, ok := r.componentsByName[name]
	if !ok {
		return nil, eris.Wrap(ErrComponentNotRegistered, fmt.Sprintf("component %q is not registered", name))
	}
	return c, nil
}

// ComponentByType returns the metadata registered for a concrete Go type.
func (r *Registry) ComponentByType(typ reflect.Type) (types.ComponentMetadata, bool) {
	c, ok := r.componentsByType[typ]
	return c, ok
}

// Components returns all registered components in id order.
func (r *Registry) Components() []types.ComponentMetadata {
	out := make([]types.ComponentMetadata, len(r.componentsByID))
	copy(out, r.componentsByID)
	return out
}

func (r *Registry) ComponentCount() int {
	return len(r.componentsByID)
}

// Metas maps a set of component ids back to their metadata. Unknown ids are
// an internal-consistency violation: ids only come from this registry.
func (r *Registry) Metas(ids []types.ComponentID) []types.ComponentMetadata {
	out := make([]types.ComponentMetadata, len(ids))
	for i, id := range ids {
		meta, ok := r.ComponentByID(id)
		if !ok {
			panic(fmt.Sprintf("component id %d has no registered metadata", id))
		}
		out[i] = meta
	}
	return out
}

// RegisterResource registers resMetadata in the resource id space, with the
// same idempotence rules as RegisterComponent.
func (r *Registry) RegisterResource(resMetadata types.ResourceMetadata) (types.ResourceMetadata, error) {
	if existing, ok := r.resourcesByType[resMetadata.Type()]; ok {
		return existing, nil
	}
	if existing, ok := r.resourcesByName[resMetadata.Name()]; ok {
		panic(fmt.Sprintf(
			"resource name %q is registered for type %v, cannot reuse it for type %v",
			resMetadata.Name(), existing.Type(), resMetadata.Type(),
		))
	}

	if err := resMetadata.SetID(types.ResourceID(len(r.resourcesByID))); err != nil {
		return nil, err
	}
	r.resourcesByID = append(r.resourcesByID, resMetadata)
	r.resourcesByName[resMetadata.Name()] = resMetadata
	r.resourcesByType[resMetadata.Type()] = resMetadata
	return resMetadata, nil
}

func (r *Registry) ResourceByID(id types.ResourceID) (types.ResourceMetadata, bool) {
	if id < 0 || int(id) >= len(r.resourcesByID) {
		return nil, false
	}
	return r.resourcesByID[id], true
}

func (r *Registry) ResourceByName(name string) (types.ResourceMetadata, error) {
	res, ok := r.resourcesByName[name]
	if !ok {
		return nil, eris.Wrap(ErrResourceNotRegistered, fmt.Sprintf("resource %q is not registered", name))
	}
	return res, nil
}

func (r *Registry) ResourceByType(typ reflect.Type) (types.ResourceMetadata, bool) {
	res, ok := r.resourcesByType[typ]
	return res, ok
}

func (r *Registry) ResourceCount() int {
	return len(r.resourcesByID)
}
