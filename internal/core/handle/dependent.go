package handle

import (
	"fmt"

	"github.com/l1jgo/ecskit/internal/core/alloc"
)

// DependentPool is a value array indexed by handles minted by a primary
// pool it does not own. Row validity is delegated entirely to the primary;
// the dependent pool keeps no generations of its own.
type DependentPool[K, T any] struct {
	primary Validator[K]
	rows    []T
	def     T
	alloc   alloc.Allocator
}

// NewDependentPool sizes the row array to the primary's capacity and fills
// it with def.
func NewDependentPool[K, T any](primary Validator[K], def T, a alloc.Allocator) (*DependentPool[K, T], error) {
	n := primary.Cap()
	if n <= 0 {
		return nil, fmt.Errorf("dependent pool capacity %d: %w", n, ErrInvalidCapacity)
	}
	rows, err := alloc.Make[T](a, n)
	if err != nil {
		return nil, fmt.Errorf("allocate dependent rows: %w", err)
	}
	d := &DependentPool[K, T]{primary: primary, rows: rows, def: def, alloc: a}
	d.ResetAll()
	return d, nil
}

// IsValid defers to the primary pool.
func (d *DependentPool[K, T]) IsValid(h Handle[K]) bool {
	return d.primary.IsValid(h)
}

func (d *DependentPool[K, T]) Get(h Handle[K]) (T, error) {
	if !d.primary.IsValid(h) {
		var zero T
		return zero, fmt.Errorf("get %v: %w", h, ErrInvalidHandle)
	}
	return d.rows[h.Index()], nil
}

// Ptr returns a pointer into the row for h.
func (d *DependentPool[K, T]) Ptr(h Handle[K]) (*T, error) {
	if !d.primary.IsValid(h) {
		return nil, fmt.Errorf("get %v: %w", h, ErrInvalidHandle)
	}
	return &d.rows[h.Index()], nil
}

func (d *DependentPool[K, T]) Set(h Handle[K], v T) error {
	if !d.primary.IsValid(h) {
		return fmt.Errorf("set %v: %w", h, ErrInvalidHandle)
	}
	d.rows[h.Index()] = v
	return nil
}

// SetUnsafe writes the row for h without consulting the primary pool. The
// caller must already know h is valid; an out-of-range index panics.
func (d *DependentPool[K, T]) SetUnsafe(h Handle[K], v T) {
	d.rows[h.Index()] = v
}

// Reset restores the row for h to the default value.
func (d *DependentPool[K, T]) Reset(h Handle[K]) error {
	if !d.primary.IsValid(h) {
		return fmt.Errorf("reset %v: %w", h, ErrInvalidHandle)
	}
	d.rows[h.Index()] = d.def
	return nil
}

// ResetAll restores every row to the default value. The primary pool is
// not touched.
func (d *DependentPool[K, T]) ResetAll() {
	for i := range d.rows {
		d.rows[i] = d.def
	}
}

// Default returns the value rows are reset to.
func (d *DependentPool[K, T]) Default() T { return d.def }

// Close returns the row storage to its allocator.
func (d *DependentPool[K, T]) Close() {
	alloc.Free(d.alloc, d.rows)
	d.rows = nil
}
