package component

import (
	"reflect"
	"unsafe"

	"github.com/veldt-dev/veldt/types"
)

// Dropper is implemented (on the pointer receiver) by component types that
// need teardown when a value is discarded, e.g. returning a buffer to a
// pool. Types without it are treated as trivially destructible.
type Dropper interface {
	DropComponent()
}

// Cloner is implemented by component types that need a deep copy when a
// value is duplicated. Pointer-free types clone bitwise automatically;
// pointer-bearing types without a Cloner are move-only.
type Cloner interface {
	CloneComponent() any
}

var (
	dropperType = reflect.TypeOf((*Dropper)(nil)).Elem()
	clonerType  = reflect.TypeOf((*Cloner)(nil)).Elem()
)

// deriveCapabilities resolves the drop/clone dispatch pair for a concrete
// type. This runs once per registration; the resulting record is carried
// alongside every type-erased buffer holding values of this type.
func deriveCapabilities(typ reflect.Type) types.Capabilities {
	var caps types.Capabilities
	ptrType := reflect.PointerTo(typ)

	if ptrType.Implements(dropperType) {
		caps.Drop = func(p unsafe.Pointer) {
			reflect.NewAt(typ, p).Interface().(Dropper).DropComponent()
		}
	}

	switch {
	case ptrType.Implements(clonerType):
		caps.Clone = func(dst, src unsafe.Pointer) {
			v := reflect.NewAt(typ, src).Interface().(Cloner).CloneComponent()
			reflect.NewAt(typ, dst).Elem().Set(reflect.ValueOf(v))
		}
	case !typeHasPointers(typ):
		// Bitwise copy is only valid for types that own no references.
		caps.Clone = func(dst, src unsafe.Pointer) {
			reflect.NewAt(typ, dst).Elem().Set(reflect.NewAt(typ, src).Elem())
		}
	}

	return caps
}

// typeHasPointers reports whether values of typ contain any reference,
// directly or through nested fields.
func typeHasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typeHasPointers(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if typeHasPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// Pointers, maps, slices, strings, channels, funcs, interfaces.
		return true
	}
}
