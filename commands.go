package veldt

import (
	"reflect"
	"sync"

	"github.com/veldt-dev/veldt/entity"
	"github.com/veldt-dev/veldt/types"
)

type commandKind uint8

const (
	cmdSpawn commandKind = iota
	cmdDespawn
	cmdAdd
	cmdRemove
)

type command struct {
	kind       commandKind
	entity     types.Entity
	components []types.Component
	compType   reflect.Type
}

// CommandBuffer records structural changes from contexts that may not
// perform them directly, e.g. parallel work holding a non-exclusive access
// window. Recording is safe from any goroutine. Nothing a buffer records
// is visible to lookups or queries until the owner calls World.Flush.
//
// Spawn hands out real entity handles immediately by reserving identities
// through the lock-free remote allocator, so parallel work can wire up
// relationships between entities it has not yet materialized.
type CommandBuffer struct {
	remote *entity.RemoteAllocator

	mu       sync.Mutex
	commands []command
}

func newCommandBuffer(remote *entity.RemoteAllocator) *CommandBuffer {
	return &CommandBuffer{remote: remote}
}

// Spawn reserves an entity handle and defers its creation with the given
// component values to the next flush.
func (b *CommandBuffer) Spawn(components ...types.Component) (types.Entity, error) {
	e, err := b.remote.Reserve()
	if err != nil {
		return types.Nil, err
	}
	b.record(command{kind: cmdSpawn, entity: e, components: components})
	return e, nil
}

// Despawn defers destruction of the entity to the next flush. Despawning
// an entity that is dead by flush time is a no-op.
func (b *CommandBuffer) Despawn(e types.Entity) {
	b.record(command{kind: cmdDespawn, entity: e})
}

// Add defers attaching the component value to the entity. If the entity is
// dead by flush time the command is dropped.
func (b *CommandBuffer) Add(e types.Entity, value types.Component) {
	b.record(command{kind: cmdAdd, entity: e, components: []types.Component{value}})
}

// Remove defers detaching the component type of the given value from the
// entity. Only the value's type is used. The detached value is discarded;
// use World.Remove directly when the value is needed.
func (b *CommandBuffer) Remove(e types.Entity, prototype types.Component) {
	b.record(command{kind: cmdRemove, entity: e, compType: reflect.TypeOf(prototype)})
}

// Len returns the number of pending commands.
func (b *CommandBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.commands)
}

func (b *CommandBuffer) record(cmd command) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands = append(b.commands, cmd)
}

// drain takes all pending commands in recording order.
func (b *CommandBuffer) drain() []command {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.commands
	b.commands = nil
	return out
}
