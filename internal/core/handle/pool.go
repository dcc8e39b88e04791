package handle

import (
	"errors"
	"fmt"

	"github.com/l1jgo/ecskit/internal/core/alloc"
)

var (
	// ErrInvalidHandle is returned when a handle is stale, released or out
	// of range for the pool it is presented to.
	ErrInvalidHandle = errors.New("handle: invalid handle")
	// ErrPoolExhausted is returned by Acquire when every slot is occupied.
	ErrPoolExhausted = errors.New("handle: pool exhausted")
	// ErrInvalidCapacity is returned by constructors given an unusable capacity.
	ErrInvalidCapacity = errors.New("handle: invalid capacity")
)

// ExpiryPolicy decides what happens to a slot whose generation reaches
// MaxGeneration.
type ExpiryPolicy uint8

const (
	// Recycle reuses a slot as soon as it is freed. A generation that
	// overflows wraps back to 1; a handle held across 2^32-1 reuses of the
	// same slot would then alias a newer one.
	Recycle ExpiryPolicy = iota
	// Discard retires a slot whose generation reaches MaxGeneration. The slot
	// is never handed out again until ResetExpired.
	Discard
)

func (p ExpiryPolicy) String() string {
	switch p {
	case Recycle:
		return "recycle"
	case Discard:
		return "discard"
	default:
		return fmt.Sprintf("ExpiryPolicy(%d)", uint8(p))
	}
}

// ParseExpiryPolicy maps a config string to a policy.
func ParseExpiryPolicy(s string) (ExpiryPolicy, error) {
	switch s {
	case "", "recycle":
		return Recycle, nil
	case "discard":
		return Discard, nil
	default:
		return Recycle, fmt.Errorf("unknown expiry policy %q", s)
	}
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
	retired    bool
}

// Validator is the part of a pool a DependentPool needs: handle validity
// and the size of the index space.
type Validator[K any] interface {
	IsValid(h Handle[K]) bool
	Cap() int
}

// PoolOption configures a Pool.
type PoolOption func(*poolOptions)

type poolOptions struct {
	policy ExpiryPolicy
	alloc  alloc.Allocator
}

// WithExpiryPolicy selects the generation overflow policy. Default Recycle.
func WithExpiryPolicy(p ExpiryPolicy) PoolOption {
	return func(o *poolOptions) { o.policy = p }
}

// WithAllocator sets the allocator for the slot array and free list.
func WithAllocator(a alloc.Allocator) PoolOption {
	return func(o *poolOptions) { o.alloc = a }
}

// Pool owns a fixed-capacity array of slots and hands out handles to them.
// Released slots go on a free list and are reused LIFO.
// Not safe for concurrent use.
type Pool[K, T any] struct {
	slots  []slot[T] // len = slots ever used, cap = capacity
	free   []uint32  // free slot indices, cap = capacity
	live   int
	policy ExpiryPolicy
	alloc  alloc.Allocator
}

// NewPool creates a pool with room for capacity simultaneously live handles.
// The slot storage is allocated up front and never grows.
func NewPool[K, T any](capacity int, opts ...PoolOption) (*Pool[K, T], error) {
	if capacity <= 0 || uint64(capacity) > uint64(MaxIndex) {
		return nil, fmt.Errorf("pool capacity %d: %w", capacity, ErrInvalidCapacity)
	}
	var o poolOptions
	for _, opt := range opts {
		opt(&o)
	}
	slots, err := alloc.Make[slot[T]](o.alloc, capacity)
	if err != nil {
		return nil, fmt.Errorf("allocate pool slots: %w", err)
	}
	free, err := alloc.Make[uint32](o.alloc, capacity)
	if err != nil {
		alloc.Free(o.alloc, slots)
		return nil, fmt.Errorf("allocate pool free list: %w", err)
	}
	return &Pool[K, T]{
		slots:  slots[:0],
		free:   free[:0],
		policy: o.policy,
		alloc:  o.alloc,
	}, nil
}

// Acquire marks a slot occupied and returns a handle to it. A free slot is
// reused when available; otherwise a fresh slot is taken while under
// capacity.
func (p *Pool[K, T]) Acquire() (Handle[K], error) {
	var idx uint32
	switch {
	case len(p.free) > 0:
		last := len(p.free) - 1
		idx = p.free[last]
		p.free = p.free[:last]
	case len(p.slots) < cap(p.slots):
		idx = uint32(len(p.slots))
		p.slots = p.slots[:idx+1]
		p.slots[idx] = slot[T]{generation: firstGeneration}
	default:
		return 0, ErrPoolExhausted
	}
	s := &p.slots[idx]
	s.occupied = true
	p.live++
	return Make[K](idx, s.generation), nil
}

// Release frees the slot h names and bumps its generation, invalidating h
// and every copy of it. The slot's value is reset to the zero value.
func (p *Pool[K, T]) Release(h Handle[K]) error {
	s, err := p.lookup(h)
	if err != nil {
		return fmt.Errorf("release %v: %w", h, err)
	}
	var zero T
	s.value = zero
	s.occupied = false
	p.live--

	switch {
	case s.generation < MaxGeneration-1:
		s.generation++
	case p.policy == Discard:
		s.generation = MaxGeneration
		s.retired = true
		return nil
	case s.generation == MaxGeneration-1:
		s.generation = MaxGeneration
	default:
		s.generation = firstGeneration
	}
	p.free = append(p.free, h.Index())
	return nil
}

// IsValid reports whether h names an occupied slot of the same generation.
func (p *Pool[K, T]) IsValid(h Handle[K]) bool {
	_, err := p.lookup(h)
	return err == nil
}

// Get returns the value stored under h.
func (p *Pool[K, T]) Get(h Handle[K]) (T, error) {
	s, err := p.lookup(h)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %v: %w", h, err)
	}
	return s.value, nil
}

// Ptr returns a pointer to the value stored under h. The pointer stays
// valid until h is released.
func (p *Pool[K, T]) Ptr(h Handle[K]) (*T, error) {
	s, err := p.lookup(h)
	if err != nil {
		return nil, fmt.Errorf("get %v: %w", h, err)
	}
	return &s.value, nil
}

// Set stores v under h.
func (p *Pool[K, T]) Set(h Handle[K], v T) error {
	s, err := p.lookup(h)
	if err != nil {
		return fmt.Errorf("set %v: %w", h, err)
	}
	s.value = v
	return nil
}

// Each calls fn for every occupied slot in index order.
func (p *Pool[K, T]) Each(fn func(Handle[K], *T)) {
	for i := range p.slots {
		s := &p.slots[i]
		if s.occupied {
			fn(Make[K](uint32(i), s.generation), &s.value)
		}
	}
}

// Len returns the number of live handles.
func (p *Pool[K, T]) Len() int { return p.live }

// Cap returns the fixed capacity.
func (p *Pool[K, T]) Cap() int { return cap(p.slots) }

// Policy returns the pool's expiry policy.
func (p *Pool[K, T]) Policy() ExpiryPolicy { return p.policy }

// Reset frees every slot and restores the initial generations. Handles
// minted before Reset become invalid, except that the first handles minted
// afterwards are equal to the first handles minted by a fresh pool.
func (p *Pool[K, T]) Reset() {
	clear(p.slots)
	p.slots = p.slots[:0]
	p.free = p.free[:0]
	p.live = 0
}

// ResetExpired returns slots retired under the Discard policy to the free
// list with their generation restarted. It reports how many were revived.
func (p *Pool[K, T]) ResetExpired() int {
	n := 0
	for i := range p.slots {
		s := &p.slots[i]
		if !s.retired {
			continue
		}
		s.retired = false
		s.generation = firstGeneration
		p.free = append(p.free, uint32(i))
		n++
	}
	return n
}

// Close returns the pool's storage to its allocator. The pool must not be
// used afterwards.
func (p *Pool[K, T]) Close() {
	alloc.Free(p.alloc, p.slots)
	alloc.Free(p.alloc, p.free)
	p.slots, p.free = nil, nil
	p.live = 0
}

func (p *Pool[K, T]) lookup(h Handle[K]) (*slot[T], error) {
	idx := int(h.Index())
	if idx >= len(p.slots) {
		return nil, ErrInvalidHandle
	}
	s := &p.slots[idx]
	if !s.occupied || s.generation != h.Generation() {
		return nil, ErrInvalidHandle
	}
	return s, nil
}
