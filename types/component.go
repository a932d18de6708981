package types

import (
	"reflect"
	"unsafe"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// Component is the interface that the user needs to implement to create a
// new component type.
type Component interface {
	// Name returns the name of the component.
	Name() string
}

// Layout describes the raw memory shape of one registered type. Columns
// and sparse maps size their buffers from it.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// Capabilities is the dispatch table resolved once at registration and
// carried alongside every type-erased buffer of that type. A nil Drop
// means the type is trivially destructible. A nil Clone means the type is
// move-only: its values can be relocated but never duplicated.
type Capabilities struct {
	Drop  func(p unsafe.Pointer)
	Clone func(dst, src unsafe.Pointer)
}

// ComponentMetadata wraps the user-defined Component struct and provides
// the functionality the engine needs internally: a stable id, the memory
// layout, the storage kind, the capability pair, and a JSON codec surface
// for the serialization subsystem.
type ComponentMetadata interface { //revive:disable-line:exported
	// SetID sets the ComponentID of this component. It must only be set once.
	SetID(ComponentID) error
	// ID returns the ComponentID of the component.
	ID() ComponentID
	// Kind reports whether values are stored densely or in a sparse map.
	Kind() StorageKind
	Layout() Layout
	Capabilities() Capabilities
	// Type returns the concrete Go type registered for this component.
	Type() reflect.Type
	// New returns the marshaled bytes of the default value for the component struct.
	New() ([]byte, error)
	Encode(any) ([]byte, error)
	Decode([]byte) (any, error)
	GetSchema() []byte

	Component
}

// ResourceMetadata is the descriptor for a world-scoped singleton value.
// Resources are addressed by id alone; there is no per-entity storage.
type ResourceMetadata interface {
	SetID(ResourceID) error
	ID() ResourceID
	Type() reflect.Type
	Encode(any) ([]byte, error)
	Decode([]byte) (any, error)

	Component
}

func SerializeComponentSchema(component Component) ([]byte, error) {
	componentSchema := jsonschema.Reflect(component)
	schema, err := componentSchema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

func IsComponentValid(component Component, jsonSchemaBytes []byte) (bool, error) {
	componentSchema := jsonschema.Reflect(component)
	componentSchemaBytes, err := componentSchema.MarshalJSON()
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return IsSchemaValid(componentSchemaBytes, jsonSchemaBytes)
}

func IsSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}

// ConvertComponentMetadatasToComponents casts an array of ComponentMetadata
// into an array of Component.
func ConvertComponentMetadatasToComponents(comps []ComponentMetadata) []Component {
	ret := make([]Component, len(comps))
	for i, comp := range comps {
		ret[i] = comp
	}
	return ret
}
