package alloc

import (
	"errors"
	"reflect"
)

// Heap allocates straight from the Go heap. It keeps no bookkeeping, so
// Owns accepts any non-empty slice.
type Heap struct{}

func (Heap) Allocate(typ reflect.Type, n int) (any, error) {
	return reflect.MakeSlice(reflect.SliceOf(typ), n, n).Interface(), nil
}

func (Heap) Deallocate(any) {}

func (Heap) Owns(block any) bool {
	_, _, ok := blockInfo(block)
	return ok
}

// ── Counting ─────────────────────────────────────────────────────

// Stats is a snapshot of a Counting allocator's bookkeeping.
type Stats struct {
	Allocations   int
	Deallocations int
	LiveBlocks    int
	LiveBytes     int64
	PeakBytes     int64
}

// Counting wraps another allocator and tracks live blocks by base address.
// Blocks of zero-sized element types share one address, so the live set is
// reference counted.
type Counting struct {
	inner Allocator
	live  map[uintptr]int
	stats Stats
}

func NewCounting(inner Allocator) *Counting {
	if inner == nil {
		inner = Heap{}
	}
	return &Counting{inner: inner, live: make(map[uintptr]int)}
}

func (c *Counting) Allocate(typ reflect.Type, n int) (any, error) {
	block, err := c.inner.Allocate(typ, n)
	if err != nil {
		return nil, err
	}
	ptr, size, ok := blockInfo(block)
	if !ok {
		return block, nil
	}
	c.live[ptr]++
	c.stats.Allocations++
	c.stats.LiveBlocks++
	c.stats.LiveBytes += size
	c.stats.PeakBytes = max(c.stats.PeakBytes, c.stats.LiveBytes)
	return block, nil
}

func (c *Counting) Deallocate(block any) {
	ptr, size, ok := blockInfo(block)
	if !ok || c.live[ptr] == 0 {
		return
	}
	if c.live[ptr]--; c.live[ptr] == 0 {
		delete(c.live, ptr)
	}
	c.stats.Deallocations++
	c.stats.LiveBlocks--
	c.stats.LiveBytes -= size
	c.inner.Deallocate(block)
}

func (c *Counting) Owns(block any) bool {
	ptr, _, ok := blockInfo(block)
	return ok && c.live[ptr] > 0
}

func (c *Counting) Stats() Stats { return c.stats }

// ── Budget ───────────────────────────────────────────────────────

// Budget serves allocations from the heap until a fixed byte budget is
// spent, then fails with ErrOutOfMemory. Deallocated blocks return their
// bytes to the budget.
type Budget struct {
	limit int64
	used  int64
	live  map[uintptr]int
}

func NewBudget(limit int64) *Budget {
	return &Budget{limit: limit, live: make(map[uintptr]int)}
}

func (b *Budget) Allocate(typ reflect.Type, n int) (any, error) {
	size := sizeOf(typ, n)
	if b.used+size > b.limit {
		return nil, ErrOutOfMemory
	}
	block := reflect.MakeSlice(reflect.SliceOf(typ), n, n).Interface()
	if ptr, _, ok := blockInfo(block); ok {
		b.live[ptr]++
	}
	b.used += size
	return block, nil
}

func (b *Budget) Deallocate(block any) {
	ptr, size, ok := blockInfo(block)
	if !ok || b.live[ptr] == 0 {
		return
	}
	if b.live[ptr]--; b.live[ptr] == 0 {
		delete(b.live, ptr)
	}
	b.used -= size
}

func (b *Budget) Owns(block any) bool {
	ptr, _, ok := blockInfo(block)
	return ok && b.live[ptr] > 0
}

// Used returns the bytes currently charged against the budget.
func (b *Budget) Used() int64 { return b.used }

// Limit returns the configured budget in bytes.
func (b *Budget) Limit() int64 { return b.limit }

// ── Fallback ─────────────────────────────────────────────────────

// Fallback tries Primary first and switches to Secondary only when the
// primary reports ErrOutOfMemory. Deallocation is routed to whichever
// allocator owns the block.
type Fallback struct {
	Primary   Allocator
	Secondary Allocator
}

func (f Fallback) Allocate(typ reflect.Type, n int) (any, error) {
	block, err := f.Primary.Allocate(typ, n)
	if errors.Is(err, ErrOutOfMemory) {
		return f.Secondary.Allocate(typ, n)
	}
	return block, err
}

func (f Fallback) Deallocate(block any) {
	if f.Primary.Owns(block) {
		f.Primary.Deallocate(block)
		return
	}
	f.Secondary.Deallocate(block)
}

func (f Fallback) Owns(block any) bool {
	return f.Primary.Owns(block) || f.Secondary.Owns(block)
}
