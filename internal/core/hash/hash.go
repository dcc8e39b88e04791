// Package hash defines the hashing capability used by sparse sets and other
// hash-keyed containers. A Hasher must be consistent with its own equality:
// values that compare Equal must produce the same Hash.
package hash

import (
	"bytes"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Hasher hashes and compares values of type V.
type Hasher[V any] interface {
	Hash(v V) uint64
	Equal(a, b V) bool
}

// Comparable hashes any comparable type with a per-instance random seed.
// Hash values are not stable across processes.
type Comparable[V comparable] struct {
	seed maphash.Seed
}

func NewComparable[V comparable]() Comparable[V] {
	return Comparable[V]{seed: maphash.MakeSeed()}
}

func (h Comparable[V]) Hash(v V) uint64 {
	return maphash.Comparable(h.seed, v)
}

func (Comparable[V]) Equal(a, b V) bool { return a == b }

// String hashes strings with xxhash64. Results are deterministic across runs.
type String struct{}

func (String) Hash(s string) uint64 { return xxhash.Sum64String(s) }
func (String) Equal(a, b string) bool { return a == b }

// Bytes hashes byte slices by content with xxhash64.
type Bytes struct{}

func (Bytes) Hash(b []byte) uint64 { return xxhash.Sum64(b) }
func (Bytes) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

// Func adapts a pair of functions to Hasher, for types that are neither
// comparable nor byte-like.
type Func[V any] struct {
	HashFn  func(V) uint64
	EqualFn func(a, b V) bool
}

func (f Func[V]) Hash(v V) uint64 { return f.HashFn(v) }
func (f Func[V]) Equal(a, b V) bool { return f.EqualFn(a, b) }
