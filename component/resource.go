package component

import (
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/veldt-dev/veldt/codec"
	"github.com/veldt-dev/veldt/types"
)

// Interface guard
var _ types.ResourceMetadata = (*resourceMetadata[types.Component])(nil)

// resourceMetadata describes a world-scoped singleton value. Resources
// share the Component naming convention but live in their own id space and
// have no per-entity storage, so there is no layout or capability pair.
type resourceMetadata[T types.Component] struct {
	isIDSet bool
	id      types.ResourceID
	resType reflect.Type
	name    string
}

// NewResourceMetadata creates the descriptor for the resource type T.
func NewResourceMetadata[T types.Component]() (types.ResourceMetadata, error) {
	var t T
	resType := reflect.TypeOf(t)
	if resType == nil || resType.Kind() == reflect.Pointer {
		return nil, eris.New("resource must be a concrete, non-pointer type")
	}
	return &resourceMetadata[T]{
		resType: resType,
		name:    t.Name(),
	}, nil
}

func (r *resourceMetadata[T]) SetID(id types.ResourceID) error {
	if r.isIDSet {
		if id == r.id {
			return nil
		}
		return eris.Errorf("id for resource %q is already set to %v, cannot change to %v", r.name, r.id, id)
	}
	r.id = id
	r.isIDSet = true
	return nil
}

func (r *resourceMetadata[T]) ID() types.ResourceID {
	return r.id
}

func (r *resourceMetadata[T]) Name() string {
	return r.name
}

func (r *resourceMetadata[T]) Type() reflect.Type {
	return r.resType
}

func (r *resourceMetadata[T]) Encode(v any) ([]byte, error) {
	return codec.Encode(v)
}

func (r *resourceMetadata[T]) Decode(bz []byte) (any, error) {
	return codec.Decode[T](bz)
}
