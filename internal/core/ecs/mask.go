package ecs

import "math/bits"

// MaxComponentTypes is the number of distinct component types one Registry
// can hold.
const MaxComponentTypes = 256

// bitmask256 is a set of component type IDs. It identifies an archetype.
type bitmask256 [4]uint64

func (m *bitmask256) set(id TypeID) {
	m[id>>6] |= uint64(1) << (id & 63)
}

func (m *bitmask256) unset(id TypeID) {
	m[id>>6] &^= uint64(1) << (id & 63)
}

func (m bitmask256) has(id TypeID) bool {
	return m[id>>6]&(uint64(1)<<(id&63)) != 0
}

// contains reports whether every bit of sub is also set in m.
func (m bitmask256) contains(sub bitmask256) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

func (m bitmask256) count() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) + bits.OnesCount64(m[3])
}

// ids lists the set bits in ascending order.
func (m bitmask256) ids() []TypeID {
	out := make([]TypeID, 0, m.count())
	for w, word := range m {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			out = append(out, TypeID(w*64+b))
			word &= word - 1
		}
	}
	return out
}

func maskOf(ids ...TypeID) bitmask256 {
	var m bitmask256
	for _, id := range ids {
		m.set(id)
	}
	return m
}
