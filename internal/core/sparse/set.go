// Package sparse implements a deduplicating set backed by a dense array and
// a hash-keyed sparse index.
package sparse

import (
	"errors"
	"iter"

	"github.com/l1jgo/ecskit/internal/core/alloc"
	"github.com/l1jgo/ecskit/internal/core/hash"
)

// ErrNotFound is returned by Remove when the value is absent.
var ErrNotFound = errors.New("sparse: value not found")

// Set keeps its values contiguous in a dense array. The sparse index maps a
// value's hash to the dense positions holding values with that hash; equality
// decides membership, the hash only narrows the candidates.
//
// Invariant: for every dense position i, i appears in index[Hash(dense[i])]
// exactly once, and nowhere else.
type Set[V any] struct {
	dense  []V
	index  map[uint64][]int32
	hasher hash.Hasher[V]
	alloc  alloc.Allocator
}

// New creates an empty set using h for hashing and equality.
func New[V any](h hash.Hasher[V], a alloc.Allocator) *Set[V] {
	return &Set[V]{
		index:  make(map[uint64][]int32),
		hasher: h,
		alloc:  a,
	}
}

// NewComparable is New with a seeded hasher for comparable types.
func NewComparable[V comparable](a alloc.Allocator) *Set[V] {
	return New[V](hash.NewComparable[V](), a)
}

// Insert adds v unless an equal value is already present. It reports
// whether v was added. An error is returned only when the dense array
// cannot grow.
func (s *Set[V]) Insert(v V) (bool, error) {
	h := s.hasher.Hash(v)
	if s.find(h, v) >= 0 {
		return false, nil
	}
	dense, err := alloc.Grow(s.alloc, s.dense, 1)
	if err != nil {
		return false, err
	}
	pos := len(dense) - 1
	dense[pos] = v
	s.dense = dense
	s.index[h] = append(s.index[h], int32(pos))
	return true, nil
}

// Remove deletes v by swapping the last dense value into its position.
func (s *Set[V]) Remove(v V) error {
	h := s.hasher.Hash(v)
	bucket := s.index[h]
	at := -1
	for i, pos := range bucket {
		if s.hasher.Equal(s.dense[pos], v) {
			at = i
			break
		}
	}
	if at < 0 {
		return ErrNotFound
	}
	pos := bucket[at]
	bucket[at] = bucket[len(bucket)-1]
	if bucket = bucket[:len(bucket)-1]; len(bucket) == 0 {
		delete(s.index, h)
	} else {
		s.index[h] = bucket
	}

	last := int32(len(s.dense) - 1)
	if pos != last {
		moved := s.dense[last]
		s.dense[pos] = moved
		mb := s.index[s.hasher.Hash(moved)]
		for i := range mb {
			if mb[i] == last {
				mb[i] = pos
				break
			}
		}
	}
	var zero V
	s.dense[last] = zero
	s.dense = s.dense[:last]
	return nil
}

// Contains reports whether a value equal to v is present.
func (s *Set[V]) Contains(v V) bool {
	return s.find(s.hasher.Hash(v), v) >= 0
}

// IndexOf returns v's dense position, or -1.
func (s *Set[V]) IndexOf(v V) int {
	return s.find(s.hasher.Hash(v), v)
}

func (s *Set[V]) Len() int { return len(s.dense) }

// Values returns the dense array. It is owned by the set and only valid
// until the next Insert or Remove.
func (s *Set[V]) Values() []V { return s.dense }

// All iterates the dense array in storage order.
func (s *Set[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range s.dense {
			if !yield(v) {
				return
			}
		}
	}
}

// Clear removes every value, keeping the dense array's capacity.
func (s *Set[V]) Clear() {
	clear(s.dense)
	s.dense = s.dense[:0]
	clear(s.index)
}

// Close returns the dense array to the allocator.
func (s *Set[V]) Close() {
	alloc.Free(s.alloc, s.dense)
	s.dense = nil
	clear(s.index)
}

func (s *Set[V]) find(h uint64, v V) int {
	for _, pos := range s.index[h] {
		if s.hasher.Equal(s.dense[pos], v) {
			return int(pos)
		}
	}
	return -1
}
