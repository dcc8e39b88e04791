package ecs

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/l1jgo/ecskit/internal/core/alloc"
)

// Column is a dense array of one component type behind a type-erased
// interface, so a Table can hold columns of different element types.
// Rows are removed by swap-remove; the caller keeps any row→entity mapping
// in step.
type Column interface {
	Type() reflect.Type
	Len() int
	// AppendZero appends the element type's zero value.
	AppendZero() error
	// AppendValue appends v, which must have the column's element type.
	AppendValue(v any) error
	// AppendFrom appends a copy of row of src. src must have the same
	// element type.
	AppendFrom(src Column, row int) error
	Get(row int) any
	Set(row int, v any) error
	// SwapRemove overwrites row with the last element and shrinks by one.
	SwapRemove(row int)
	// Truncate shrinks the column to n rows.
	Truncate(n int)
	// NewEmpty returns an empty column of the same element type.
	NewEmpty() Column
	// Release returns the column's storage to its allocator.
	Release()

	raw() unsafe.Pointer
}

type column[T any] struct {
	items []T
	typ   reflect.Type
	alloc alloc.Allocator
}

// NewColumn returns an empty column of T whose storage comes from a.
func NewColumn[T any](a alloc.Allocator) Column {
	return &column[T]{typ: reflect.TypeFor[T](), alloc: a}
}

func (c *column[T]) Type() reflect.Type { return c.typ }
func (c *column[T]) Len() int           { return len(c.items) }

func (c *column[T]) AppendZero() error {
	var zero T
	return c.append(zero)
}

func (c *column[T]) AppendValue(v any) error {
	tv, ok := v.(T)
	if !ok {
		return fmt.Errorf("append %T to column of %s: %w", v, c.typ, ErrComponentType)
	}
	return c.append(tv)
}

func (c *column[T]) AppendFrom(src Column, row int) error {
	s, ok := src.(*column[T])
	if !ok {
		return fmt.Errorf("move %s into column of %s: %w", src.Type(), c.typ, ErrComponentType)
	}
	return c.append(s.items[row])
}

func (c *column[T]) append(v T) error {
	items, err := alloc.Grow(c.alloc, c.items, 1)
	if err != nil {
		return fmt.Errorf("grow column of %s: %w", c.typ, err)
	}
	items[len(items)-1] = v
	c.items = items
	return nil
}

func (c *column[T]) Get(row int) any { return c.items[row] }

func (c *column[T]) Set(row int, v any) error {
	tv, ok := v.(T)
	if !ok {
		return fmt.Errorf("set %T in column of %s: %w", v, c.typ, ErrComponentType)
	}
	c.items[row] = tv
	return nil
}

func (c *column[T]) SwapRemove(row int) {
	last := len(c.items) - 1
	if row != last {
		c.items[row] = c.items[last]
	}
	var zero T
	c.items[last] = zero
	c.items = c.items[:last]
}

func (c *column[T]) Truncate(n int) {
	if n >= len(c.items) {
		return
	}
	clear(c.items[n:])
	c.items = c.items[:n]
}

func (c *column[T]) NewEmpty() Column {
	return &column[T]{typ: c.typ, alloc: c.alloc}
}

func (c *column[T]) Release() {
	alloc.Free(c.alloc, c.items)
	c.items = nil
}

func (c *column[T]) raw() unsafe.Pointer { return unsafe.Pointer(c) }

// Values returns the column's backing slice as []T. It panics with
// ErrComponentType if the column does not hold T. The slice is invalidated
// by any append or removal.
func Values[T any](c Column) []T {
	tc, ok := c.(*column[T])
	if !ok {
		panic(fmt.Errorf("values of %s as %s: %w", c.Type(), reflect.TypeFor[T](), ErrComponentType))
	}
	return tc.items
}

// UnsafeValues is Values without the type check. The caller must know the
// column holds T; a mismatch is undefined behaviour. Builds tagged ecsdebug
// verify the element type and panic on mismatch.
func UnsafeValues[T any](c Column) []T {
	if typeChecks && c.Type() != reflect.TypeFor[T]() {
		panic(fmt.Errorf("unsafe values of %s as %s: %w", c.Type(), reflect.TypeFor[T](), ErrComponentType))
	}
	return (*column[T])(c.raw()).items
}
