// Package alloc provides the typed allocation capability consumed by every
// owning container in internal/core. Allocators are injected at
// construction; there is no process-wide default.
package alloc

import (
	"errors"
	"reflect"
)

// ErrOutOfMemory is returned when an allocator cannot satisfy a request.
var ErrOutOfMemory = errors.New("alloc: out of memory")

// Allocator hands out backing arrays for a given element type.
//
// Allocate returns a []T (boxed in any) of length and capacity n, where T is
// typ. Deallocate gives a block previously returned by Allocate back to the
// allocator. Owns reports whether the block was produced by this allocator
// and has not been deallocated yet.
type Allocator interface {
	Allocate(typ reflect.Type, n int) (any, error)
	Deallocate(block any)
	Owns(block any) bool
}

// Make allocates a []T of length n through a. A nil allocator behaves as
// Heap. Zero-length requests never reach the allocator.
func Make[T any](a Allocator, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if a == nil {
		return make([]T, n), nil
	}
	block, err := a.Allocate(reflect.TypeFor[T](), n)
	if err != nil {
		return nil, err
	}
	return block.([]T), nil
}

// Free returns the backing array of s to a.
func Free[T any](a Allocator, s []T) {
	if a == nil || cap(s) == 0 {
		return
	}
	a.Deallocate(s[:cap(s)])
}

// Grow extends s by n elements. When the capacity is insufficient a new
// block of at least double the capacity is allocated through a, the
// contents are copied over and the old block is released.
// On error s is returned unchanged.
func Grow[T any](a Allocator, s []T, n int) ([]T, error) {
	newLen := len(s) + n
	if cap(s) >= newLen {
		return s[:newLen], nil
	}
	newCap := max(2*cap(s), newLen, 4)
	ns, err := Make[T](a, newCap)
	if err != nil {
		return s, err
	}
	copy(ns, s)
	Free(a, s)
	return ns[:newLen], nil
}

// sizeOf reports the byte size of a block of n elements of typ.
func sizeOf(typ reflect.Type, n int) int64 {
	return int64(typ.Size()) * int64(n)
}

// blockInfo extracts the base address and byte size of a []T boxed in any.
func blockInfo(block any) (uintptr, int64, bool) {
	v := reflect.ValueOf(block)
	if v.Kind() != reflect.Slice || v.Cap() == 0 {
		return 0, 0, false
	}
	return v.Pointer(), sizeOf(v.Type().Elem(), v.Cap()), true
}
