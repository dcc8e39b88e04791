package hash

import "testing"

type point struct{ X, Y int }

func TestComparableConsistentWithEquality(t *testing.T) {
	h := NewComparable[point]()
	a, b := point{1, 2}, point{1, 2}
	if !h.Equal(a, b) {
		t.Fatal("equal points should compare equal")
	}
	if h.Hash(a) != h.Hash(b) {
		t.Error("equal values must hash equally")
	}
	if h.Equal(a, point{2, 1}) {
		t.Error("different points should not compare equal")
	}
}

func TestStringIsDeterministic(t *testing.T) {
	var h String
	// xxhash64 of the empty string with seed 0.
	if got := h.Hash(""); got != 0xef46db3751d8e999 {
		t.Errorf("unexpected xxhash64 of empty string: %#x", got)
	}
	if h.Hash("entity") != h.Hash("entity") {
		t.Error("hash must be stable")
	}
}

func TestBytesMatchesString(t *testing.T) {
	var hs String
	var hb Bytes
	if hs.Hash("archetype") != hb.Hash([]byte("archetype")) {
		t.Error("string and byte hashers should agree on the same content")
	}
	if !hb.Equal([]byte("a"), []byte("a")) || hb.Equal([]byte("a"), []byte("b")) {
		t.Error("byte equality is wrong")
	}
}

func TestFunc(t *testing.T) {
	h := Func[[]int]{
		HashFn: func(v []int) uint64 { return uint64(len(v)) },
		EqualFn: func(a, b []int) bool {
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
	}
	if h.Hash([]int{1, 2}) != 2 || !h.Equal([]int{1, 2}, []int{1, 2}) {
		t.Error("Func adapter did not forward calls")
	}
}
