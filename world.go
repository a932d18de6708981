package veldt

import (
	"os"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/veldt-dev/veldt/access"
	"github.com/veldt-dev/veldt/archetype"
	"github.com/veldt-dev/veldt/component"
	"github.com/veldt-dev/veldt/cql"
	"github.com/veldt-dev/veldt/entity"
	"github.com/veldt-dev/veldt/filter"
	"github.com/veldt-dev/veldt/log"
	"github.com/veldt-dev/veldt/query"
	"github.com/veldt-dev/veldt/statsd"
	"github.com/veldt-dev/veldt/storage"
	"github.com/veldt-dev/veldt/types"
)

var (
	ErrEntityNotFound       = eris.New("entity does not exist")
	ErrComponentNotOnEntity = eris.New("component not on entity")
	ErrDuplicateComponent   = eris.New("duplicate component in spawn set")
)

// World owns the entity table, the component and resource registries, the
// archetype registry and all storage, and exposes the public surface over
// them. All World methods require single-owner access unless stated
// otherwise; concurrent use goes through access windows and the deferred
// command buffer.
type World struct {
	id        string
	namespace string
	cfg       EngineConfig
	Logger    *zerolog.Logger

	registry   *component.Registry
	allocator  *entity.Allocator
	store      *storage.Storage
	archetypes *archetype.Registry
	claims     *access.Table
	commands   *CommandBuffer
	queries    *query.Manager

	resources map[types.ResourceID]reflect.Value
	tick      types.Tick
	liveCount int64

	windows windowState
}

// NewWorld creates a World configured from the environment and the given
// options.
func NewWorld(opts ...WorldOption) (*World, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if opt.configOption != nil {
			opt.configOption(&cfg)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	worldID := uuid.New().String()
	logger := zerolog.New(os.Stderr).Level(level).With().
		Timestamp().
		Str("world_id", worldID).
		Str("namespace", cfg.Namespace).
		Logger()

	if cfg.StatsdAddress != "" {
		if err := statsd.Init(cfg.StatsdAddress, []string{"namespace:" + cfg.Namespace}); err != nil {
			return nil, err
		}
	}

	registry := component.NewRegistry()
	store := storage.NewStorage(cfg.ColumnCapacity)
	allocator := entity.NewAllocator()
	w := &World{
		id:         worldID,
		namespace:  cfg.Namespace,
		cfg:        cfg,
		Logger:     &logger,
		registry:   registry,
		allocator:  allocator,
		store:      store,
		archetypes: archetype.NewRegistry(registry, store),
		claims:     access.NewTable(),
		queries:    query.NewManager(),
		resources:  make(map[types.ResourceID]reflect.Value),
		tick:       1,
	}
	w.commands = newCommandBuffer(allocator.Remote())

	for _, opt := range opts {
		if opt.worldOption != nil {
			opt.worldOption(w)
		}
	}
	w.Logger.Info().Str("log_level", cfg.LogLevel).Msg("world created")
	return w, nil
}

func (w *World) Namespace() string { return w.namespace }

func (w *World) ID() string { return w.id }

// CurrentTick returns the world's change-detection tick. The tick advances
// at every Flush.
func (w *World) CurrentTick() types.Tick { return w.tick }

// Components exposes the component and resource registry. Part of the
// query.Reader surface.
func (w *World) Components() *component.Registry { return w.registry }

// Archetypes exposes the archetype registry. Part of the query.Reader
// surface.
func (w *World) Archetypes() *archetype.Registry { return w.archetypes }

// Store exposes the column storage. Part of the query.Reader surface.
func (w *World) Store() *storage.Storage { return w.store }

// Claims exposes the per-system access claim table consumed by an external
// scheduler.
func (w *World) Claims() *access.Table { return w.claims }

// GetRegisteredComponents makes World log.Loggable.
func (w *World) GetRegisteredComponents() []types.ComponentMetadata {
	return w.registry.Components()
}

// GetRegisteredSystems makes World log.Loggable.
func (w *World) GetRegisteredSystems() []string {
	return w.claims.Systems()
}

// EntityCount returns the number of live entities. Reserved but
// uncommitted entities are not counted.
func (w *World) EntityCount() int64 { return w.liveCount }

// Spawn creates a live entity carrying the given component values and
// returns its handle. Every component value's type must be registered.
func (w *World) Spawn(components ...types.Component) (types.Entity, error) {
	e, err := w.allocator.Allocate()
	if err != nil {
		return types.Nil, err
	}
	loc, err := w.place(e, components)
	if err != nil {
		w.allocator.Free(e)
		return types.Nil, err
	}
	w.allocator.SetLocation(e, loc)
	w.liveCount++
	if w.Logger.GetLevel() <= zerolog.DebugLevel {
		metas, _ := w.metasFor(components)
		log.Entity(w.Logger, zerolog.DebugLevel, e, loc.Arch, metas)
	}
	return e, nil
}

// SpawnMany creates n entities of the same shape. The values callback
// supplies the component values for each entity in turn; all calls must
// yield the same component types.
func (w *World) SpawnMany(n int, values func(i int) []types.Component) ([]types.Entity, error) {
	out := make([]types.Entity, 0, n)
	for i := 0; i < n; i++ {
		e, err := w.Spawn(values(i)...)
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Despawn destroys the entity and drops all of its component values. It
// reports false if the entity is already dead; destroying a dead entity is
// not an error.
func (w *World) Despawn(e types.Entity) bool {
	loc, ok := w.allocator.Resolve(e)
	if !ok {
		return false
	}
	for _, m := range w.store.Maps() {
		m.RemoveAndDrop(e)
	}
	if loc.Kind == types.StorageDense {
		moved, hasMoved := w.store.Table(loc.Table).SwapRemoveRow(loc.Row, true)
		if hasMoved {
			w.fixMovedLocation(moved)
		}
	} else {
		moved, hasMoved := w.archetypes.Archetype(loc.Arch).SwapRemoveEntity(loc.Row)
		if hasMoved {
			w.fixMovedLocation(moved)
		}
	}
	w.allocator.Free(e)
	w.liveCount--
	w.Logger.Debug().
		Uint32("entity_index", e.Index).
		Uint32("entity_generation", e.Generation).
		Msg("entity despawned")
	return true
}

// Alive reports whether e refers to a live entity.
func (w *World) Alive(e types.Entity) bool {
	return w.allocator.Alive(e)
}

// AddComponent attaches a component value to a live entity. Attaching a
// component the entity already carries overwrites the value in place. A
// dense component triggers an archetype transition; a sparse component
// only touches its map and never moves the entity's dense row.
func (w *World) AddComponent(e types.Entity, value types.Component) error {
	loc, ok := w.allocator.Resolve(e)
	if !ok {
		return eris.Wrap(ErrEntityNotFound, e.String())
	}
	meta, ok := w.registry.ComponentByType(reflect.TypeOf(value))
	if !ok {
		return eris.Wrap(component.ErrComponentNotRegistered, reflect.TypeOf(value).String())
	}

	if meta.Kind() == types.StorageSparse {
		w.store.Map(meta).Insert(e, reflect.ValueOf(value), w.tick)
		return nil
	}

	arch := w.archetypes.Archetype(loc.Arch)
	if arch.Contains(meta.ID()) {
		col, _ := w.store.Table(loc.Table).Column(meta.ID())
		col.Set(loc.Row, reflect.ValueOf(value), w.tick)
		return nil
	}

	to, err := w.archetypes.Transition(loc.Arch, meta.ID(), types.NoComponent)
	if err != nil {
		return err
	}
	added := func(id types.ComponentID) (reflect.Value, bool) {
		if id == meta.ID() {
			return reflect.ValueOf(value), true
		}
		return reflect.Value{}, false
	}
	newLoc, moved, hasMoved := w.archetypes.Move(e, loc, to, added, types.NoComponent, w.tick)
	w.allocator.SetLocation(e, newLoc)
	if hasMoved {
		w.fixMovedLocation(moved)
	}
	return nil
}

// removeComponent detaches the component behind meta from e and returns
// its value. Absence of the entity or the component is an expected
// negative case, reported through the bool.
func (w *World) removeComponent(e types.Entity, meta types.ComponentMetadata) (any, bool) {
	loc, ok := w.allocator.Resolve(e)
	if !ok {
		return nil, false
	}

	if meta.Kind() == types.StorageSparse {
		m, ok := w.store.MapByID(meta.ID())
		if !ok {
			return nil, false
		}
		return m.Remove(e)
	}

	arch := w.archetypes.Archetype(loc.Arch)
	if !arch.Contains(meta.ID()) {
		return nil, false
	}
	col, _ := w.store.Table(loc.Table).Column(meta.ID())
	value := col.Value(loc.Row).Interface()

	to, err := w.archetypes.Transition(loc.Arch, types.NoComponent, meta.ID())
	if err != nil {
		return nil, false
	}
	noAdds := func(types.ComponentID) (reflect.Value, bool) { return reflect.Value{}, false }
	newLoc, moved, hasMoved := w.archetypes.Move(e, loc, to, noAdds, meta.ID(), w.tick)
	w.allocator.SetLocation(e, newLoc)
	if hasMoved {
		w.fixMovedLocation(moved)
	}
	return value, true
}

// NewQuery creates a query over the given filter. Queries cache their
// matching archetypes, so reuse one query instead of rebuilding it per
// iteration.
func (w *World) NewQuery(f filter.ComponentFilter) *query.Query {
	return query.New(w, f)
}

// ParseQuery compiles query-language text, e.g.
// "CONTAINS(position) & !CHANGED(health)", into a query. Component names
// resolve against the world's registry.
func (w *World) ParseQuery(cqlText string) (*query.Query, error) {
	f, err := cql.Parse(cqlText, func(name string) (types.ComponentMetadata, error) {
		return w.registry.ComponentByName(name)
	})
	if err != nil {
		return nil, err
	}
	return query.New(w, f), nil
}

// RegisterQuery stores a query under a stable name so it can be reused
// across systems without rebuilding its archetype cache. Registering a
// second query under the same name is an error.
func (w *World) RegisterQuery(name string, q *query.Query) error {
	return w.queries.Register(name, q)
}

// QueryByName returns the query registered under name.
func (w *World) QueryByName(name string) (*query.Query, error) {
	return w.queries.ByName(name)
}

// GetRegisteredQueries makes World log.Loggable.
func (w *World) GetRegisteredQueries() []string {
	return w.queries.Names()
}

// Commands returns the world's deferred command buffer. It is safe to
// record commands from any goroutine; recorded commands apply at the next
// Flush.
func (w *World) Commands() *CommandBuffer {
	return w.commands
}

// Flush applies all deferred commands and advances the change-detection
// tick. It must be called from the single-owner context with no access
// window active; query caches are revalidated automatically on next use.
func (w *World) Flush() error {
	start := time.Now()
	cmds := w.commands.drain()
	for _, cmd := range cmds {
		if err := w.apply(cmd); err != nil {
			return err
		}
	}
	w.tick++
	statsd.EmitFlushStat(start, "flush")
	statsd.EmitEntityCount("live", w.liveCount)
	return nil
}

func (w *World) apply(cmd command) error {
	switch cmd.kind {
	case cmdSpawn:
		loc, err := w.place(cmd.entity, cmd.components)
		if err != nil {
			return err
		}
		if err := w.allocator.CommitReserved(cmd.entity, loc); err != nil {
			return err
		}
		w.liveCount++
	case cmdDespawn:
		w.Despawn(cmd.entity)
	case cmdAdd:
		if err := w.AddComponent(cmd.entity, cmd.components[0]); err != nil &&
			!eris.Is(err, ErrEntityNotFound) {
			return err
		}
	case cmdRemove:
		if meta, ok := w.registry.ComponentByType(cmd.compType); ok {
			w.removeComponent(cmd.entity, meta)
		}
	}
	return nil
}

// place stores the component values of a new entity and returns its
// location. The caller owns making the entity resolvable at that location.
func (w *World) place(e types.Entity, components []types.Component) (types.Location, error) {
	metas, err := w.metasFor(components)
	if err != nil {
		return types.Location{}, err
	}
	ids := make([]types.ComponentID, len(metas))
	byID := make(map[types.ComponentID]reflect.Value, len(metas))
	for i, meta := range metas {
		ids[i] = meta.ID()
		if _, dup := byID[meta.ID()]; dup {
			return types.Location{}, eris.Wrap(ErrDuplicateComponent, meta.Name())
		}
		byID[meta.ID()] = reflect.ValueOf(components[i])
	}

	arch, err := w.archetypes.GetOrCreate(ids)
	if err != nil {
		return types.Location{}, err
	}
	for _, meta := range metas {
		if meta.Kind() == types.StorageSparse {
			w.store.Map(meta).Insert(e, byID[meta.ID()], w.tick)
		}
	}

	loc := types.Location{Arch: arch.ID(), Table: arch.TableID(), Kind: arch.StorageKind()}
	if arch.TableID() != types.NoTable {
		loc.Row = w.store.Table(arch.TableID()).PushRow(e, func(id types.ComponentID) (reflect.Value, bool) {
			v, ok := byID[id]
			return v, ok
		}, w.tick)
	} else {
		loc.Row = arch.PushEntity(e)
	}
	return loc, nil
}

func (w *World) metasFor(components []types.Component) ([]types.ComponentMetadata, error) {
	metas := make([]types.ComponentMetadata, len(components))
	for i, c := range components {
		meta, ok := w.registry.ComponentByType(reflect.TypeOf(c))
		if !ok {
			return nil, eris.Wrap(component.ErrComponentNotRegistered, reflect.TypeOf(c).String())
		}
		metas[i] = meta
	}
	return metas, nil
}

// fixMovedLocation rewrites the stored row of the entity that a
// swap-remove relocated. Every despawn and migration that vacates a
// non-last row depends on this fix-up.
func (w *World) fixMovedLocation(moved types.MovedEntity) {
	loc, ok := w.allocator.Resolve(moved.Entity)
	if !ok {
		panic("veldt: swap-remove moved a dead entity " + moved.Entity.String())
	}
	loc.Row = moved.Row
	w.allocator.SetLocation(moved.Entity, loc)
}
