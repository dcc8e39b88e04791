// Package handle implements generational handles and the pools that mint
// them. A handle pairs a slot index with the slot's generation; releasing a
// slot bumps its generation, so every handle minted before the release is
// detected as stale even after the index is reused.
package handle

import (
	"cmp"
	"fmt"
	"math"
)

const (
	// MaxIndex is the largest slot index a handle can address.
	MaxIndex = math.MaxUint32
	// MaxGeneration is the largest generation a slot can reach.
	MaxGeneration = math.MaxUint32
	// firstGeneration is the generation of a never-released slot. Starting
	// at 1 keeps the zero Handle permanently invalid.
	firstGeneration = 1
)

// Handle encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. K tags the kind of object the handle refers to and is
// never instantiated.
//
// Two handles are equal only when index and generation both match. Ordering
// compares the raw encoding, so once generations diverge it no longer
// follows index order.
type Handle[K any] uint64

// Make builds a handle from its parts.
func Make[K any](index, generation uint32) Handle[K] {
	return Handle[K](uint64(generation)<<32 | uint64(index))
}

func (h Handle[K]) Index() uint32      { return uint32(h) }
func (h Handle[K]) Generation() uint32 { return uint32(h >> 32) }
func (h Handle[K]) Raw() uint64        { return uint64(h) }

// IsNull reports whether h is the zero handle, which no pool ever mints.
func (h Handle[K]) IsNull() bool { return h == 0 }

func (h Handle[K]) String() string {
	if h.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%d#%d", h.Index(), h.Generation())
}

// Compare orders handles by raw encoding.
func Compare[K any](a, b Handle[K]) int {
	return cmp.Compare(a, b)
}

// Cast re-tags a handle with another kind, keeping index and generation.
func Cast[To, From any](h Handle[From]) Handle[To] {
	return Handle[To](h)
}
