package ecs

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/l1jgo/ecskit/internal/core/alloc"
	"github.com/l1jgo/ecskit/internal/core/handle"
)

// Registry owns the entity pool and every archetype table. It is not safe
// for concurrent use; one goroutine mutates it at a time.
type Registry struct {
	entities   *handle.Pool[entityKind, struct{}]
	locations  *handle.DependentPool[entityKind, location]
	components componentRegistry

	tables []*Table
	byMask map[bitmask256]*Table
	empty  *Table

	maxViewTables int
	alloc         alloc.Allocator
	log           *zap.Logger
}

// NewRegistry creates a registry that can hold up to capacity live
// entities.
func NewRegistry(capacity int, opts ...Option) (*Registry, error) {
	o := options{maxViewTables: DefaultMaxViewTables}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	entities, err := handle.NewPool[entityKind, struct{}](capacity,
		handle.WithAllocator(o.alloc), handle.WithExpiryPolicy(o.policy))
	if err != nil {
		return nil, fmt.Errorf("entity pool: %w", err)
	}
	locations, err := handle.NewDependentPool[entityKind](entities, nowhere, o.alloc)
	if err != nil {
		entities.Close()
		return nil, fmt.Errorf("location index: %w", err)
	}

	r := &Registry{
		entities:      entities,
		locations:     locations,
		components:    newComponentRegistry(),
		byMask:        make(map[bitmask256]*Table),
		maxViewTables: o.maxViewTables,
		alloc:         o.alloc,
		log:           o.log,
	}
	r.empty = r.tableFor(bitmask256{})
	return r, nil
}

// CreateEntity mints a new entity with no components. It lives in the
// empty table until a component is attached.
func (r *Registry) CreateEntity() (Entity, error) {
	e, err := r.entities.Acquire()
	if err != nil {
		return 0, err
	}
	row, err := r.empty.AddRow(e, nil)
	if err != nil {
		_ = r.entities.Release(e)
		return 0, fmt.Errorf("create entity: %w", err)
	}
	r.locations.SetUnsafe(e, location{table: r.empty, row: row})
	return e, nil
}

// DestroyEntity removes e's row and releases its handle.
func (r *Registry) DestroyEntity(e Entity) error {
	loc, err := r.locations.Get(e)
	if err != nil {
		return err
	}
	if moved, ok := loc.table.RemoveRow(loc.row); ok {
		r.locations.SetUnsafe(moved, loc)
	}
	r.locations.SetUnsafe(e, nowhere)
	return r.entities.Release(e)
}

func (r *Registry) IsValid(e Entity) bool { return r.entities.IsValid(e) }

// Len returns the number of live entities.
func (r *Registry) Len() int { return r.entities.Len() }

// Cap returns the entity capacity.
func (r *Registry) Cap() int { return r.entities.Cap() }

// Tables returns every archetype table in creation order. The empty table
// is always first.
func (r *Registry) Tables() []*Table { return r.tables }

// AddComponents attaches values to e. Each value's dynamic type must be
// registered. Values whose type e already holds overwrite the old value.
func (r *Registry) AddComponents(e Entity, values ...any) error {
	ids := make([]TypeID, len(values))
	for i, v := range values {
		id, ok := r.components.lookup(reflect.TypeOf(v))
		if !ok {
			return fmt.Errorf("add %T: %w", v, ErrUnregisteredComponent)
		}
		ids[i] = id
	}
	return r.add(e, ids, values)
}

func (r *Registry) add(e Entity, ids []TypeID, values []any) error {
	loc, err := r.locations.Get(e)
	if err != nil {
		return err
	}
	mask := loc.table.mask
	for _, id := range ids {
		mask.set(id)
	}
	if mask == loc.table.mask {
		for i, id := range ids {
			if err := loc.table.Column(id).Set(loc.row, values[i]); err != nil {
				return err
			}
		}
		return nil
	}

	dst := r.tableFor(mask)
	err = r.migrate(e, loc, dst, func(id TypeID, c Column) error {
		// Later values win when a type is given twice.
		for i := len(ids) - 1; i >= 0; i-- {
			if ids[i] == id {
				return c.AppendValue(values[i])
			}
		}
		return c.AppendZero()
	})
	if err != nil {
		return err
	}
	// Types e already had were copied across; overwrite them now.
	now, _ := r.locations.Get(e)
	for i, id := range ids {
		if loc.table.Has(id) {
			if err := dst.Column(id).Set(now.row, values[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// RemoveComponents detaches ids from e. Types e does not hold are ignored.
// Removing every component moves e to the empty table.
func (r *Registry) RemoveComponents(e Entity, ids ...TypeID) error {
	loc, err := r.locations.Get(e)
	if err != nil {
		return err
	}
	mask := loc.table.mask
	for _, id := range ids {
		mask.unset(id)
	}
	if mask == loc.table.mask {
		return nil
	}
	return r.migrate(e, loc, r.tableFor(mask), nil)
}

func (r *Registry) migrate(e Entity, from location, dst *Table, init Initializer) error {
	row, moved, ok, err := MigrateRow(from.table, from.row, dst, init)
	if err != nil {
		return fmt.Errorf("migrate %v: %w", e, err)
	}
	if ok {
		r.locations.SetUnsafe(moved, from)
	}
	r.locations.SetUnsafe(e, location{table: dst, row: row})
	return nil
}

// Location returns the table and row currently holding e.
func (r *Registry) Location(e Entity) (*Table, int, error) {
	loc, err := r.locations.Get(e)
	if err != nil {
		return nil, -1, err
	}
	return loc.table, loc.row, nil
}

// Close releases every table and pool back to the allocator. The registry
// must not be used afterwards.
func (r *Registry) Close() {
	for _, t := range r.tables {
		t.release()
	}
	r.tables = nil
	clear(r.byMask)
	r.locations.Close()
	r.entities.Close()
}

func (r *Registry) tableFor(mask bitmask256) *Table {
	if t, ok := r.byMask[mask]; ok {
		return t
	}
	t := newTable(len(r.tables), mask, &r.components, r.alloc)
	r.tables = append(r.tables, t)
	r.byMask[mask] = t
	r.log.Debug("archetype table created",
		zap.Int("table", t.id),
		zap.Int("components", len(t.ids)),
		zap.Stringers("types", r.typeNames(t.ids)))
	return t
}

func (r *Registry) typeNames(ids []TypeID) []reflect.Type {
	out := make([]reflect.Type, len(ids))
	for i, id := range ids {
		out[i] = r.components.info(id).typ
	}
	return out
}

// ── Generic helpers ─────────────────────────────────────────────

// Add attaches a to e, registering A if needed.
func Add[A any](r *Registry, e Entity, a A) error {
	ia, err := Register[A](r)
	if err != nil {
		return err
	}
	return r.add(e, []TypeID{ia}, []any{a})
}

func Add2[A, B any](r *Registry, e Entity, a A, b B) error {
	ia, err := Register[A](r)
	if err != nil {
		return err
	}
	ib, err := Register[B](r)
	if err != nil {
		return err
	}
	return r.add(e, []TypeID{ia, ib}, []any{a, b})
}

func Add3[A, B, C any](r *Registry, e Entity, a A, b B, c C) error {
	ia, err := Register[A](r)
	if err != nil {
		return err
	}
	ib, err := Register[B](r)
	if err != nil {
		return err
	}
	ic, err := Register[C](r)
	if err != nil {
		return err
	}
	return r.add(e, []TypeID{ia, ib, ic}, []any{a, b, c})
}

// Remove detaches A from e. It is a no-op if A was never registered.
func Remove[A any](r *Registry, e Entity) error {
	return r.RemoveComponents(e, registeredIDs(r, reflect.TypeFor[A]())...)
}

func Remove2[A, B any](r *Registry, e Entity) error {
	return r.RemoveComponents(e, registeredIDs(r, reflect.TypeFor[A](), reflect.TypeFor[B]())...)
}

func Remove3[A, B, C any](r *Registry, e Entity) error {
	return r.RemoveComponents(e,
		registeredIDs(r, reflect.TypeFor[A](), reflect.TypeFor[B](), reflect.TypeFor[C]())...)
}

func registeredIDs(r *Registry, types ...reflect.Type) []TypeID {
	ids := make([]TypeID, 0, len(types))
	for _, t := range types {
		if id, ok := r.components.lookup(t); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Get returns a pointer to e's T component, or nil if e does not hold T.
// The pointer is invalidated by any structural change to e's table.
func Get[T any](r *Registry, e Entity) (*T, error) {
	loc, err := r.locations.Get(e)
	if err != nil {
		return nil, err
	}
	id, ok := ID[T](r)
	if !ok || !loc.table.Has(id) {
		return nil, nil
	}
	return &UnsafeValues[T](loc.table.Column(id))[loc.row], nil
}

// Has reports whether e is valid and holds T.
func Has[T any](r *Registry, e Entity) bool {
	loc, err := r.locations.Get(e)
	if err != nil {
		return false
	}
	id, ok := ID[T](r)
	return ok && loc.table.Has(id)
}
