package ecs

import (
	"fmt"
	"reflect"

	"github.com/l1jgo/ecskit/internal/core/alloc"
)

// TypeID is a Registry-local component type tag.
type TypeID uint8

type componentInfo struct {
	typ       reflect.Type
	newColumn func(alloc.Allocator) Column
}

// componentRegistry assigns TypeIDs and remembers how to build a column for
// each registered type. Each Registry owns one.
type componentRegistry struct {
	byType map[reflect.Type]TypeID
	infos  []componentInfo
}

func newComponentRegistry() componentRegistry {
	return componentRegistry{
		byType: make(map[reflect.Type]TypeID, 16),
		infos:  make([]componentInfo, 0, 16),
	}
}

func (c *componentRegistry) lookup(t reflect.Type) (TypeID, bool) {
	id, ok := c.byType[t]
	return id, ok
}

func (c *componentRegistry) info(id TypeID) componentInfo {
	return c.infos[id]
}

// Register assigns a TypeID to T in r, or returns the existing one.
func Register[T any](r *Registry) (TypeID, error) {
	t := reflect.TypeFor[T]()
	if id, ok := r.components.lookup(t); ok {
		return id, nil
	}
	if len(r.components.infos) >= MaxComponentTypes {
		return 0, fmt.Errorf("register %s: %w", t, ErrTooManyComponents)
	}
	id := TypeID(len(r.components.infos))
	r.components.infos = append(r.components.infos, componentInfo{
		typ:       t,
		newColumn: func(a alloc.Allocator) Column { return NewColumn[T](a) },
	})
	r.components.byType[t] = id
	return id, nil
}

// ID returns T's TypeID in r without registering it.
func ID[T any](r *Registry) (TypeID, bool) {
	return r.components.lookup(reflect.TypeFor[T]())
}

// TypeOf returns the Go type registered under id.
func (r *Registry) TypeOf(id TypeID) (reflect.Type, bool) {
	if int(id) >= len(r.components.infos) {
		return nil, false
	}
	return r.components.infos[id].typ, true
}
