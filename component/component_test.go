package component_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/veldt-dev/veldt/assert"
	"github.com/veldt-dev/veldt/component"
	"github.com/veldt-dev/veldt/types"
)

type Health struct {
	Current int
	Max     int
}

func (Health) Name() string { return "health" }

type Inventory struct {
	Items []string
}

func (Inventory) Name() string { return "inventory" }

var handleDrops int

type Handle struct {
	FD int
}

func (Handle) Name() string { return "handle" }

func (h *Handle) DropComponent() { handleDrops++ }

type Snapshot struct {
	Data []byte
}

func (Snapshot) Name() string { return "snapshot" }

func (s *Snapshot) CloneComponent() any {
	out := Snapshot{Data: make([]byte, len(s.Data))}
	copy(out.Data, s.Data)
	return out
}

func TestRegistrationIsIdempotentPerType(t *testing.T) {
	registry := component.NewRegistry()

	meta, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)
	first, err := registry.RegisterComponent(meta)
	assert.NilError(t, err)

	again, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)
	second, err := registry.RegisterComponent(again)
	assert.NilError(t, err)

	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, 1, registry.ComponentCount())
}

func TestIDsAreDenseFromZero(t *testing.T) {
	registry := component.NewRegistry()

	for i, register := range []func() (types.ComponentMetadata, error){
		func() (types.ComponentMetadata, error) { return component.NewComponentMetadata[Health]() },
		func() (types.ComponentMetadata, error) { return component.NewComponentMetadata[Inventory]() },
		func() (types.ComponentMetadata, error) { return component.NewComponentMetadata[Handle]() },
	} {
		meta, err := register()
		assert.NilError(t, err)
		meta, err = registry.RegisterComponent(meta)
		assert.NilError(t, err)
		assert.Equal(t, types.ComponentID(i), meta.ID())
	}
}

func TestLayoutMatchesTheGoType(t *testing.T) {
	meta, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)

	typ := reflect.TypeOf(Health{})
	assert.Equal(t, typ.Size(), meta.Layout().Size)
	assert.Equal(t, uintptr(typ.Align()), meta.Layout().Align)
	assert.Equal(t, types.StorageDense, meta.Kind())
}

func TestDropCapabilityComesFromDropper(t *testing.T) {
	meta, err := component.NewComponentMetadata[Handle]()
	assert.NilError(t, err)
	caps := meta.Capabilities()
	assert.NotNil(t, caps.Drop)

	handleDrops = 0
	h := Handle{FD: 3}
	caps.Drop(unsafe.Pointer(&h))
	assert.Equal(t, 1, handleDrops)
}

func TestCloneCapability(t *testing.T) {
	// A pointer-free type is bitwise clonable.
	plain, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)
	assert.NotNil(t, plain.Capabilities().Clone)

	src := Health{Current: 7, Max: 10}
	var dst Health
	plain.Capabilities().Clone(unsafe.Pointer(&dst), unsafe.Pointer(&src))
	assert.Equal(t, src, dst)

	// A type with interior pointers needs an explicit Cloner.
	deep, err := component.NewComponentMetadata[Snapshot]()
	assert.NilError(t, err)
	assert.NotNil(t, deep.Capabilities().Clone)

	srcSnap := Snapshot{Data: []byte{1, 2, 3}}
	var dstSnap Snapshot
	deep.Capabilities().Clone(unsafe.Pointer(&dstSnap), unsafe.Pointer(&srcSnap))
	assert.DeepEqual(t, srcSnap.Data, dstSnap.Data)
	dstSnap.Data[0] = 99
	assert.Equal(t, byte(1), srcSnap.Data[0], "clone must not share backing storage")

	// A pointer-carrying type without a Cloner is move-only.
	moveOnly, err := component.NewComponentMetadata[Inventory]()
	assert.NilError(t, err)
	assert.True(t, moveOnly.Capabilities().Clone == nil)
}

func TestSparseStorageOption(t *testing.T) {
	meta, err := component.NewComponentMetadata[Health](component.WithSparseStorage[Health]())
	assert.NilError(t, err)
	assert.Equal(t, types.StorageSparse, meta.Kind())
}

func TestSetIDRejectsReassignment(t *testing.T) {
	meta, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)
	assert.NilError(t, meta.SetID(4))
	assert.NilError(t, meta.SetID(4))
	assert.ErrorContains(t, meta.SetID(5), "id")
}

func TestComponentByNameAndType(t *testing.T) {
	registry := component.NewRegistry()
	meta, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)
	meta, err = registry.RegisterComponent(meta)
	assert.NilError(t, err)

	byName, err := registry.ComponentByName("health")
	assert.NilError(t, err)
	assert.Equal(t, meta.ID(), byName.ID())

	byType, ok := registry.ComponentByType(reflect.TypeOf(Health{}))
	assert.True(t, ok)
	assert.Equal(t, meta.ID(), byType.ID())

	_, err = registry.ComponentByName("missing")
	assert.ErrorIs(t, err, component.ErrComponentNotRegistered)
}

func TestResourceIDsAreSeparateFromComponentIDs(t *testing.T) {
	registry := component.NewRegistry()

	compMeta, err := component.NewComponentMetadata[Health]()
	assert.NilError(t, err)
	compMeta, err = registry.RegisterComponent(compMeta)
	assert.NilError(t, err)

	resMeta, err := component.NewResourceMetadata[Health]()
	assert.NilError(t, err)
	resMeta, err = registry.RegisterResource(resMeta)
	assert.NilError(t, err)

	assert.Equal(t, types.ComponentID(0), compMeta.ID())
	assert.Equal(t, types.ResourceID(0), resMeta.ID())
	assert.Equal(t, 1, registry.ResourceCount())
}
