package component

import (
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"

	"github.com/veldt-dev/veldt/codec"
	"github.com/veldt-dev/veldt/types"
)

// Interface guard
var _ types.ComponentMetadata = (*componentMetadata[types.Component])(nil)

var ErrComponentSchemaMismatch = eris.New("component schema does not match target schema")

// Option is a type that can be passed to NewComponentMetadata to augment the
// creation of the component type.
type Option[T types.Component] func(c *componentMetadata[T])

// componentMetadata represents a type of component. It is used to identify
// a component when getting or setting the component of an entity.
type componentMetadata[T types.Component] struct {
	isIDSet    bool
	id         types.ComponentID
	compType   reflect.Type
	name       string
	kind       types.StorageKind
	layout     types.Layout
	caps       types.Capabilities
	schema     []byte
	defaultVal types.Component
}

// NewComponentMetadata creates a new component type. The memory layout and
// the drop/clone capability pair are resolved here, once, from the concrete
// type; every raw buffer that later stores values of this type carries them.
func NewComponentMetadata[T types.Component](opts ...Option[T]) (
	types.ComponentMetadata, error,
) {
	var t T
	compType := reflect.TypeOf(t)
	if compType == nil || compType.Kind() == reflect.Pointer {
		return nil, eris.New("component must be a concrete, non-pointer type")
	}

	schema, err := jsonschema.ReflectFromType(compType).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}

	compMetadata := &componentMetadata[T]{
		compType: compType,
		name:     t.Name(),
		kind:     types.StorageDense,
		layout: types.Layout{
			Size:  compType.Size(),
			Align: uintptr(compType.Align()),
		},
		caps:   deriveCapabilities(compType),
		schema: schema,
	}
	for _, opt := range opts {
		opt(compMetadata)
	}

	return compMetadata, nil
}

func (c *componentMetadata[T]) GetSchema() []byte {
	return c.schema
}

// SetID sets this component's ID. It must be unique across the world object.
func (c *componentMetadata[T]) SetID(id types.ComponentID) error {
	if c.isIDSet {
		// Components are usually initialized one time (on startup). In tests
		// it's often useful to use the same component in multiple worlds, so
		// re-initialization is allowed as long as the ID doesn't change.
		if id == c.id {
			return nil
		}
		return eris.Errorf("id for component %v is already set to %v, cannot change to %v", c, c.id, id)
	}
	c.id = id
	c.isIDSet = true
	return nil
}

// String returns the component type name.
func (c *componentMetadata[T]) String() string {
	return c.name
}

// Name returns the component type name.
func (c *componentMetadata[T]) Name() string {
	return c.name
}

// ID returns the component type id.
func (c *componentMetadata[T]) ID() types.ComponentID {
	return c.id
}

func (c *componentMetadata[T]) Kind() types.StorageKind {
	return c.kind
}

func (c *componentMetadata[T]) Layout() types.Layout {
	return c.layout
}

func (c *componentMetadata[T]) Capabilities() types.Capabilities {
	return c.caps
}

func (c *componentMetadata[T]) Type() reflect.Type {
	return c.compType
}

func (c *componentMetadata[T]) New() ([]byte, error) {
	if c.defaultVal != nil {
		return codec.Encode(c.defaultVal)
	}
	var t T
	return codec.Encode(t)
}

func (c *componentMetadata[T]) Encode(v any) ([]byte, error) {
	return codec.Encode(v)
}

func (c *componentMetadata[T]) Decode(bz []byte) (any, error) {
	return codec.Decode[T](bz)
}

func (c *componentMetadata[T]) ValidateAgainstSchema(targetSchema []byte) error {
	diff, err := jsondiff.CompareJSON(c.schema, targetSchema)
	if err != nil {
		return eris.Wrap(err, "failed to compare component schema")
	}

	if diff.String() != "" {
		return eris.Wrap(ErrComponentSchemaMismatch, diff.String())
	}

	return nil
}

func (c *componentMetadata[T]) validateDefaultVal() {
	if !reflect.TypeOf(c.defaultVal).AssignableTo(c.compType) {
		panic(fmt.Sprintf("default value is not assignable to component type: %s", c.name))
	}
}

// WithDefault updates the created componentMetadata with a default value.
func WithDefault[T types.Component](defaultVal T) Option[T] {
	return func(c *componentMetadata[T]) {
		c.defaultVal = defaultVal
		c.validateDefaultVal()
	}
}

// WithSparseStorage stores the component in a per-component sparse map
// instead of the archetype's dense table. Use it for components whose
// presence on an entity is volatile; adding or removing a sparse component
// never moves the entity's dense row.
func WithSparseStorage[T types.Component]() Option[T] {
	return func(c *componentMetadata[T]) {
		c.kind = types.StorageSparse
	}
}
